// Package dvbsub implements the ETSI EN 300 743 DVB subtitle decode
// pipeline: the per-epoch data model (pages, regions, CLUTs, objects), the
// run-length pixel decoder, and the segment-level state machine that drives
// them from PES payloads admitted by the timing gate.
package dvbsub

import "github.com/snapetech/subtitlecore/internal/timing"

// Fixed pool sizes. The original decoder sizes these as compile-time
// constants tuned for a set-top box's worst-case broadcast; this module
// keeps the same shape with package-level constants rather than a runtime
// configuration knob, matching the source's fixed-memory posture.
const (
	MaxSupportedRegions       = 8
	MaxSupportedCluts         = 4
	maxObjectInstances        = 64
	defaultDisplayWidth       = 720
	defaultDisplayHeight      = 576
	maxDisplayWidth           = 1920
	maxDisplayHeight          = 1080
	versionInvalid      uint8 = 0xFF
)

// Rectangle is a half-open {x1,y1,x2,y2} region with x1<=x2 and y1<=y2.
type Rectangle struct {
	X1, Y1, X2, Y2 int
}

// Width reports x2-x1.
func (r Rectangle) Width() int { return r.X2 - r.X1 }

// Height reports y2-y1.
func (r Rectangle) Height() int { return r.Y2 - r.Y1 }

// Contains reports whether other is fully inside r.
func (r Rectangle) Contains(other Rectangle) bool {
	return other.X1 >= r.X1 && other.Y1 >= r.Y1 && other.X2 <= r.X2 && other.Y2 <= r.Y2
}

// Display holds the current Display Definition Segment state. Version
// versionInvalid means no DDS has been applied yet, in which case the
// default SD 720x576 bounds apply.
type Display struct {
	Version       uint8
	DisplayBounds Rectangle
	WindowBounds  Rectangle
}

func defaultDisplay() Display {
	bounds := Rectangle{0, 0, defaultDisplayWidth, defaultDisplayHeight}
	return Display{Version: versionInvalid, DisplayBounds: bounds, WindowBounds: bounds}
}

// Valid reports whether a DDS has been parsed this epoch.
func (d Display) Valid() bool { return d.Version != versionInvalid }

// CLUT holds three parallel ARGB lookup arrays, one per addressable depth.
// It is shared across every region that declares the same ClutID within one
// epoch.
type CLUT struct {
	ID      uint8
	Array2  [4]uint32
	Array4  [16]uint32
	Array8  [256]uint32
}

func newDefaultCLUT(id uint8) *CLUT {
	c := &CLUT{ID: id}
	// ETSI EN 300 743 Annex C default CLUT: entry 0 is always fully
	// transparent black, entry 1 is opaque black, entry 2 opaque white,
	// entry 3 opaque grey; the rest of the wider tables default to
	// opaque black until a CDS overrides them.
	c.Array2[0] = 0x00000000
	c.Array2[1] = 0xFF000000
	c.Array2[2] = 0xFFFFFFFF
	c.Array2[3] = 0xFF808080
	for i := range c.Array4 {
		c.Array4[i] = 0xFF000000
	}
	c.Array4[0] = 0x00000000
	for i := range c.Array8 {
		c.Array8[i] = 0xFF000000
	}
	c.Array8[0] = 0x00000000
	return c
}

// Pixmap is always stored 8 bits per pixel regardless of the owning
// region's declared depth; narrower depths are widened through a CLUT map
// table at write time. Buffer is backed by the pixmap arena.
type Pixmap struct {
	Width, Height int
	Buffer        []byte
}

// Clear fills the whole pixmap with value.
func (p *Pixmap) Clear(value byte) {
	for i := range p.Buffer {
		p.Buffer[i] = value
	}
}

// RegionDepth is the 3-bit wire code ETSI EN 300 743 uses for
// region_depth/region_level_of_compatibility, not the bit width itself —
// use Bits() to get 2, 4 or 8.
type RegionDepth uint8

const (
	Depth2Bit RegionDepth = 1
	Depth4Bit RegionDepth = 2
	Depth8Bit RegionDepth = 3
)

func validRegionDepth(d RegionDepth) bool {
	return d == Depth2Bit || d == Depth4Bit || d == Depth8Bit
}

// Bits returns the pixel width this depth code declares: 2, 4 or 8.
func (d RegionDepth) Bits() uint8 {
	switch d {
	case Depth2Bit:
		return 2
	case Depth4Bit:
		return 4
	case Depth8Bit:
		return 8
	default:
		return 0
	}
}

// ObjectInstance binds an object id to the position within a region's
// pixmap its decoded pixels are written to.
type ObjectInstance struct {
	ObjectID    uint16
	PositionX   int
	PositionY   int
}

// Region is the DVB composition hierarchy's middle layer: a rectangular
// pixmap with a depth, a shared CLUT, and a list of object instances whose
// decoded pixels are painted into it.
type Region struct {
	ID                 uint8
	Width, Height      int
	Depth              RegionDepth
	CompatibilityLevel RegionDepth
	ClutID             uint8
	Clut               *CLUT
	BackgroundIndex    uint8
	Version            uint8
	Pixmap             *Pixmap
	Objects            []ObjectInstance
}

// SetVersion overrides the region's declared version, used by tests and by
// the RCS handler's update path.
func (r *Region) SetVersion(v uint8) { r.Version = v }

// PageState names the lifecycle of the page currently being composed.
type PageState int

const (
	PageInvalid PageState = iota
	PageIncomplete
	PageComplete
	PageTimedOut
)

func (s PageState) String() string {
	switch s {
	case PageIncomplete:
		return "INCOMPLETE"
	case PageComplete:
		return "COMPLETE"
	case PageTimedOut:
		return "TIMEDOUT"
	default:
		return "INVALID"
	}
}

// RegionRef is one entry of a PCS region list: the placement of a region on
// the composed page, distinct from the region's own pixmap origin.
type RegionRef struct {
	RegionID  uint8
	PositionX int
	PositionY int
}

// Page is the per-epoch page state machine: INVALID -> INCOMPLETE ->
// {COMPLETE, TIMEDOUT}.
type Page struct {
	State          PageState
	TimeoutSeconds uint8
	PTS            timing.StcTime
	Version        uint8
	Regions        []RegionRef
}

func newPage() *Page {
	return &Page{State: PageInvalid, Version: versionInvalid}
}

// StartParsing transitions the page to INCOMPLETE and records the PCS
// timeout/pts/version that began this display set. Called after a PCS with
// page state MODE_CHANGE or ACQUISITION_POINT.
func (p *Page) StartParsing(timeoutSeconds uint8, pts timing.StcTime, version uint8) {
	p.State = PageIncomplete
	p.TimeoutSeconds = timeoutSeconds
	p.PTS = pts
	p.Version = version
	p.Regions = p.Regions[:0]
}

// FinishParsing transitions INCOMPLETE -> COMPLETE; a no-op otherwise.
func (p *Page) FinishParsing() {
	if p.State == PageIncomplete {
		p.State = PageComplete
	}
}

// SetTimedOut forces the page into the TIMEDOUT state.
func (p *Page) SetTimedOut() { p.State = PageTimedOut }

// RegionByID returns the page's RegionRef for regionID, or false.
func (p *Page) RegionByID(regionID uint8) (RegionRef, bool) {
	for _, r := range p.Regions {
		if r.RegionID == regionID {
			return r, true
		}
	}
	return RegionRef{}, false
}

// RenderingState is a snapshot of what the renderer should paint: the set
// of regions composed on the page and the display/window bounds active
// when it was captured. Database keeps a current/previous pair so the host
// can diff for incremental repaint.
type RenderingState struct {
	Display Display
	Regions []RegionRef
}
