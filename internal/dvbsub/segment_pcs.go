package dvbsub

import (
	"fmt"

	"github.com/snapetech/subtitlecore/internal/bitio"
)

// Page composition states, ETSI EN 300 743 table 4.
const (
	pageStateNormalCase        = 0
	pageStateAcquisitionPoint  = 1
	pageStateModeChange        = 2
	pageStateReserved          = 3
)

// parsePCS decodes a Page Composition Segment. ACQUISITION_POINT is treated
// as MODE_CHANGE: real-world streams have been observed using it as the
// sole page-start trigger, so this decoder starts a new page on either
// rather than waiting for a MODE_CHANGE that never arrives.
func parsePCS(db *Database, r *bitio.Reader) error {
	timeout, err := r.ReadUint8()
	if err != nil {
		return err
	}
	versionFlags, err := r.ReadUint8()
	if err != nil {
		return err
	}
	version := (versionFlags >> 4) & 0x0F
	state := (versionFlags >> 2) & 0x03

	if state == pageStateReserved {
		return fmt.Errorf("%w: reserved page state", ErrInvalidSegmentField)
	}

	page := db.Page()
	if page.Version == version {
		return nil
	}

	regions := make([]RegionRef, 0, MaxSupportedRegions)
	for r.BytesLeft() > 0 {
		regionID, err := r.ReadUint8()
		if err != nil {
			return err
		}
		if _, err := r.ReadUint8(); err != nil { // reserved
			return err
		}
		x, err := r.ReadUint16BE()
		if err != nil {
			return err
		}
		y, err := r.ReadUint16BE()
		if err != nil {
			return err
		}
		if len(regions) >= MaxSupportedRegions {
			return fmt.Errorf("%w: more than %d regions in a page composition segment", ErrInvalidSegmentField, MaxSupportedRegions)
		}
		regions = append(regions, RegionRef{RegionID: regionID, PositionX: int(x), PositionY: int(y)})
	}

	if state == pageStateModeChange || state == pageStateAcquisitionPoint {
		page.StartParsing(timeout, db.LastPts(), version)
	}
	page.Regions = regions
	return nil
}
