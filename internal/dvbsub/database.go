package dvbsub

import (
	"github.com/google/uuid"

	"github.com/snapetech/subtitlecore/internal/metrics"
	"github.com/snapetech/subtitlecore/internal/pixmap"
	"github.com/snapetech/subtitlecore/internal/timing"
)

// Database holds one epoch's worth of decode state: the region and CLUT
// pools, the shared object-instance pool, the single page the PCS/RCS/ODS
// handlers mutate, and the current/previous rendering-state pair the
// renderer diffs against. Grounded on Database_test.cpp, since no
// Database.hpp/.cpp source was retrieved for this pack.
type Database struct {
	epochID uuid.UUID
	arena   *pixmap.Arena
	metrics metrics.Registry

	regions []*Region
	cluts   []*CLUT

	objects    [maxObjectInstances]ObjectInstance
	objectUsed [maxObjectInstances]bool
	objectOf   [maxObjectInstances]uint8 // region ID owning objects[i], valid iff objectUsed[i]

	page    *Page
	lastPts timing.StcTime

	display Display

	renderCurrent  *RenderingState
	renderPrevious *RenderingState
}

// NewDatabase builds an empty database over arena, which supplies every
// region's pixmap storage.
func NewDatabase(arena *pixmap.Arena, reg metrics.Registry) *Database {
	if reg == nil {
		reg = metrics.Noop{}
	}
	return &Database{
		epochID: uuid.New(),
		arena:   arena,
		metrics: reg,
		page:    newPage(),
		display: defaultDisplay(),

		renderCurrent:  &RenderingState{},
		renderPrevious: &RenderingState{},
	}
}

// EpochID identifies this Database instance for diagnostics/metrics
// correlation across a multi-instance host; it plays no part in decode
// logic or equality.
func (d *Database) EpochID() uuid.UUID { return d.epochID }

// Page returns the database's single active page.
func (d *Database) Page() *Page { return d.page }

// Display returns the current Display Definition Segment state.
func (d *Database) Display() Display { return d.display }

// LastPts returns the STC time stamped on the most recently admitted PES
// packet, recorded by the segment dispatcher before handing each segment to
// its handler.
func (d *Database) LastPts() timing.StcTime { return d.lastPts }

// SetLastPts records the STC time of the PES packet currently being
// dispatched.
func (d *Database) SetLastPts(pts timing.StcTime) { d.lastPts = pts }

// CommitPage finishes the page currently being composed and swaps it into
// the current rendering state, called once an End of Display Set segment
// closes out the page.
func (d *Database) CommitPage() {
	d.page.FinishParsing()
	d.SwapRenderingStates()
	*d.renderCurrent = RenderingState{Display: d.display, Regions: append([]RegionRef(nil), d.page.Regions...)}
}

// SetDisplay installs a new Display Definition Segment state.
func (d *Database) SetDisplay(display Display) { d.display = display }

// EpochReset discards every region, CLUT and object instance, rewinds the
// pixmap arena, and resets the page and display to their pre-epoch
// defaults. It does not touch the rendering-state pair.
func (d *Database) EpochReset() {
	d.regions = d.regions[:0]
	d.cluts = d.cluts[:0]
	for i := range d.objectUsed {
		d.objectUsed[i] = false
	}
	d.arena.Reset()
	d.page = newPage()
	d.display = defaultDisplay()
}

// RegionCount reports how many regions the current epoch holds.
func (d *Database) RegionCount() int { return len(d.regions) }

// GetRegionByIndex returns the i-th region added this epoch, or nil if i is
// out of range.
func (d *Database) GetRegionByIndex(i int) *Region {
	if i < 0 || i >= len(d.regions) {
		return nil
	}
	return d.regions[i]
}

// GetRegionByID returns the region with the given id, or nil.
func (d *Database) GetRegionByID(id uint8) *Region {
	for _, r := range d.regions {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// GetClutByID returns the CLUT with the given id, or nil.
func (d *Database) GetClutByID(id uint8) *CLUT {
	for _, c := range d.cluts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CanAddRegion reports whether the pool has room for another region and the
// page is currently accepting new regions (state INCOMPLETE).
func (d *Database) CanAddRegion() bool {
	return d.page.State == PageIncomplete && len(d.regions) < MaxSupportedRegions
}

// AddRegionAndClut creates a region of the given geometry and depth,
// binding it to a CLUT with clutID (sharing an existing one of the same id
// if already present this epoch, otherwise creating it with ETSI default
// values). It fails without side effects if the page is not accepting
// regions, the pool is full, id is already taken, the geometry is
// degenerate, or the pixmap arena cannot satisfy the allocation.
func (d *Database) AddRegionAndClut(id uint8, width, height int, depth, compat RegionDepth, clutID uint8) bool {
	if !d.CanAddRegion() {
		return false
	}
	if width <= 0 || height <= 0 {
		return false
	}
	if d.GetRegionByID(id) != nil {
		return false
	}

	buf := d.arena.Allocate(width * height)
	if buf == nil {
		d.metrics.IncDVBArenaAllocFailure()
		return false
	}
	d.metrics.SetDVBArenaBytesInUse(d.arena.BytesInUse())

	clut := d.GetClutByID(clutID)
	if clut == nil {
		clut = newDefaultCLUT(clutID)
		d.cluts = append(d.cluts, clut)
	}

	region := &Region{
		ID:                 id,
		Width:              width,
		Height:             height,
		Depth:              depth,
		CompatibilityLevel: compat,
		ClutID:             clutID,
		Clut:               clut,
		Version:            versionInvalid,
		Pixmap:             &Pixmap{Width: width, Height: height, Buffer: buf},
	}
	d.regions = append(d.regions, region)
	return true
}

// AddRegionObject binds a new object instance to region at (x,y), drawing
// from the database-wide object-instance pool shared by every region this
// epoch. It fails once the pool is exhausted.
func (d *Database) AddRegionObject(region *Region, objectID uint16, x, y int) bool {
	for i := range d.objectUsed {
		if d.objectUsed[i] {
			continue
		}
		d.objectUsed[i] = true
		d.objectOf[i] = region.ID
		d.objects[i] = ObjectInstance{ObjectID: objectID, PositionX: x, PositionY: y}
		region.Objects = append(region.Objects, d.objects[i])
		return true
	}
	return false
}

// RemoveRegionObjects releases every pool slot owned by region back to the
// shared pool and clears the region's own object list.
func (d *Database) RemoveRegionObjects(region *Region) {
	for i := range d.objectUsed {
		if d.objectUsed[i] && d.objectOf[i] == region.ID {
			d.objectUsed[i] = false
		}
	}
	region.Objects = nil
}

// CurrentRenderingState returns the rendering state the renderer should
// paint from.
func (d *Database) CurrentRenderingState() *RenderingState { return d.renderCurrent }

// PreviousRenderingState returns the rendering state displayed before the
// last swap.
func (d *Database) PreviousRenderingState() *RenderingState { return d.renderPrevious }

// SwapRenderingStates exchanges current and previous, called once a page
// has finished parsing and its regions are ready to display.
func (d *Database) SwapRenderingStates() {
	d.renderCurrent, d.renderPrevious = d.renderPrevious, d.renderCurrent
}
