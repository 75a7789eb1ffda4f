package dvbsub

import (
	"fmt"

	"github.com/snapetech/subtitlecore/internal/bitio"
)

// Region composition object type/provider wire codes, ETSI EN 300 743
// table 7/8. Only the basic bitmap object defined directly in the
// subtitling stream is supported; every other combination is rejected.
const (
	regionObjectTypeBasicBitmap    = 0
	regionObjectProviderSubtitling = 0
)

// parseRCS decodes a Region Composition Segment, creating or updating one
// region and its object list. It is a no-op while no page is being
// composed.
func parseRCS(db *Database, r *bitio.Reader) error {
	page := db.Page()
	if page.State != PageIncomplete {
		return nil
	}

	regionID, err := r.ReadUint8()
	if err != nil {
		return err
	}
	versionByte, err := r.ReadUint8()
	if err != nil {
		return err
	}
	version := (versionByte >> 4) & 0x0F
	fillFlag := versionByte&0x08 != 0

	width, err := r.ReadUint16BE()
	if err != nil {
		return err
	}
	height, err := r.ReadUint16BE()
	if err != nil {
		return err
	}
	depthByte, err := r.ReadUint8()
	if err != nil {
		return err
	}
	compat := RegionDepth((depthByte >> 5) & 0x07)
	depth := RegionDepth((depthByte >> 2) & 0x07)

	clutID, err := r.ReadUint8()
	if err != nil {
		return err
	}
	backgroundIndex, err := r.ReadUint8()
	if err != nil {
		return err
	}
	if _, err := r.ReadUint8(); err != nil { // other-depth backgrounds, unused
		return err
	}

	existing := db.GetRegionByID(regionID)
	if existing == nil {
		if !validRegionDepth(depth) || !validRegionDepth(compat) {
			return fmt.Errorf("%w: invalid region depth", ErrInvalidSegmentField)
		}
		objects, err := parseRegionObjects(r)
		if err != nil {
			return err
		}
		if !db.AddRegionAndClut(regionID, int(width), int(height), depth, compat, clutID) {
			return fmt.Errorf("%w: region pool or pixmap arena exhausted", ErrResourceExhausted)
		}
		region := db.GetRegionByID(regionID)
		region.SetVersion(version)
		region.BackgroundIndex = backgroundIndex
		if fillFlag {
			region.Pixmap.Clear(backgroundIndex)
		}
		for _, o := range objects {
			db.AddRegionObject(region, o.ObjectID, o.PositionX, o.PositionY)
		}
		return nil
	}

	if existing.Version == version {
		return nil
	}
	if existing.ClutID != clutID {
		return fmt.Errorf("%w: region clut id changed on update", ErrInvalidSegmentField)
	}

	objects, err := parseRegionObjects(r)
	if err != nil {
		return err
	}

	existing.Width = int(width)
	existing.Height = int(height)
	existing.Depth = depth
	existing.CompatibilityLevel = compat
	existing.BackgroundIndex = backgroundIndex
	existing.SetVersion(version)
	if fillFlag {
		existing.Pixmap.Clear(backgroundIndex)
	}
	db.RemoveRegionObjects(existing)
	for _, o := range objects {
		db.AddRegionObject(existing, o.ObjectID, o.PositionX, o.PositionY)
	}
	return nil
}

// parseRegionObjects reads the region's object list, which runs to the end
// of the segment; each entry is 6 bytes wide.
func parseRegionObjects(r *bitio.Reader) ([]ObjectInstance, error) {
	var objects []ObjectInstance
	for r.BytesLeft() > 0 {
		objectID, err := r.ReadUint16BE()
		if err != nil {
			return nil, err
		}
		typeProvider, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		objectType := (typeProvider >> 6) & 0x03
		objectProvider := (typeProvider >> 4) & 0x03
		if objectType != regionObjectTypeBasicBitmap {
			return nil, fmt.Errorf("%w: unsupported region object type %d", ErrInvalidSegmentField, objectType)
		}
		if objectProvider != regionObjectProviderSubtitling {
			return nil, fmt.Errorf("%w: unsupported region object provider %d", ErrInvalidSegmentField, objectProvider)
		}

		lowByte, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		horizontal := (uint16(typeProvider&0x0F) << 8) | uint16(lowByte)

		next16, err := r.ReadUint16BE()
		if err != nil {
			return nil, err
		}
		vertical := next16 & 0x0FFF

		objects = append(objects, ObjectInstance{
			ObjectID:  objectID,
			PositionX: int(horizontal),
			PositionY: int(vertical),
		})
	}
	return objects, nil
}
