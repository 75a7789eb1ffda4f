package dvbsub

import (
	"fmt"

	"github.com/snapetech/subtitlecore/internal/bitio"
)

const (
	ddsMaxWidth  = 1919
	ddsMaxHeight = 1079
)

// parseDDS decodes a Display Definition Segment. Same-version segments are
// a no-op. An oversized display first falls back to the window rectangle's
// own size before failing outright, reproducing a quirk of the reference
// decoder's recovery path.
func parseDDS(db *Database, r *bitio.Reader) error {
	versionFlags, err := r.ReadUint8()
	if err != nil {
		return err
	}
	version := (versionFlags >> 4) & 0x0F
	windowFlag := versionFlags&0x08 != 0

	display := db.Display()
	if display.Version == version {
		return nil
	}

	displayWidth, err := r.ReadUint16BE()
	if err != nil {
		return err
	}
	displayHeight, err := r.ReadUint16BE()
	if err != nil {
		return err
	}

	windowMinX, windowMaxX := uint16(0), displayWidth
	windowMinY, windowMaxY := uint16(0), displayHeight
	if windowFlag {
		if windowMinX, err = r.ReadUint16BE(); err != nil {
			return err
		}
		if windowMaxX, err = r.ReadUint16BE(); err != nil {
			return err
		}
		if windowMinY, err = r.ReadUint16BE(); err != nil {
			return err
		}
		if windowMaxY, err = r.ReadUint16BE(); err != nil {
			return err
		}
	}

	if displayWidth > ddsMaxWidth || displayHeight > ddsMaxHeight {
		displayWidth = windowMaxX - windowMinX
		displayHeight = windowMaxY - windowMinY
	}
	if displayWidth > ddsMaxWidth || displayHeight > ddsMaxHeight {
		return fmt.Errorf("%w: maximum display size exceeded", ErrInvalidSegmentField)
	}
	if windowMinX > windowMaxX || windowMinY > windowMaxY {
		return fmt.Errorf("%w: invalid window definition", ErrInvalidSegmentField)
	}
	if windowMinX > displayWidth || windowMaxX > displayWidth ||
		windowMinY > displayHeight || windowMaxY > displayHeight {
		return fmt.Errorf("%w: window outside display", ErrInvalidSegmentField)
	}

	db.SetDisplay(Display{
		Version:       version,
		DisplayBounds: Rectangle{0, 0, int(displayWidth) + 1, int(displayHeight) + 1},
		WindowBounds:  Rectangle{int(windowMinX), int(windowMinY), int(windowMaxX) + 1, int(windowMaxY) + 1},
	})
	return nil
}
