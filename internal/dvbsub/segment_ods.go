package dvbsub

import (
	"fmt"

	"github.com/snapetech/subtitlecore/internal/bitio"
)

const objectCodingMethodPixels = 0

// parseODS decodes an Object Data Segment, matching the object id against
// every object instance any region currently references and painting its
// pixel data into each match's region pixmap. A segment using any coding
// method other than direct pixel coding is skipped; this decoder does not
// support character-coded objects.
func parseODS(db *Database, r *bitio.Reader) error {
	if db.Page().State != PageIncomplete {
		return nil
	}

	objectID, err := r.ReadUint16BE()
	if err != nil {
		return err
	}
	versionFlags, err := r.ReadUint8()
	if err != nil {
		return err
	}
	codingMethod := (versionFlags >> 2) & 0x03
	nonModifying := versionFlags&0x02 != 0

	if codingMethod != objectCodingMethodPixels {
		return nil
	}

	topLength, err := r.ReadUint16BE()
	if err != nil {
		return err
	}
	bottomLength, err := r.ReadUint16BE()
	if err != nil {
		return err
	}

	topBytes, err := readBytes(r, int(topLength))
	if err != nil {
		return err
	}
	var bottomBytes []byte
	if bottomLength > 0 {
		if bottomBytes, err = readBytes(r, int(bottomLength)); err != nil {
			return err
		}
	} else {
		bottomBytes = append([]byte(nil), topBytes...)
	}

	for _, region := range db.regions {
		for _, object := range region.Objects {
			if object.ObjectID != objectID {
				continue
			}
			if !validRegionDepth(region.Depth) {
				return fmt.Errorf("%w: unsupported region depth", ErrInvalidSegmentField)
			}

			topWriter := newPixelWriter(nonModifying, region.Depth, region.Pixmap, object.PositionX, object.PositionY)
			bottomWriter := newPixelWriter(nonModifying, region.Depth, region.Pixmap, object.PositionX, object.PositionY+1)

			topParser := newObjectParser(bitio.NewReader(topBytes), topWriter)
			if err := topParser.parse(); err != nil {
				return err
			}
			bottomParser := newObjectParser(bitio.NewReader(bottomBytes), bottomWriter)
			if err := bottomParser.parse(); err != nil {
				return err
			}
		}
	}
	return nil
}

func readBytes(r *bitio.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}
