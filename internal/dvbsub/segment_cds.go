package dvbsub

import "github.com/snapetech/subtitlecore/internal/bitio"

// CLUT entry target-depth flags, ETSI EN 300 743 table 10.
const (
	clutFlagFullRange = 0x01
	clutFlagDepth2Bit = 0x80
	clutFlagDepth4Bit = 0x40
	clutFlagDepth8Bit = 0x20
)

// parseCDS decodes a CLUT Definition Segment, overwriting entries of a CLUT
// already referenced by some region this epoch. A CDS naming a clut_id no
// region has created yet is a no-op, and so is any CDS received outside an
// in-progress page.
func parseCDS(db *Database, r *bitio.Reader) error {
	if db.Page().State != PageIncomplete {
		return nil
	}

	clutID, err := r.ReadUint8()
	if err != nil {
		return err
	}
	if _, err := r.ReadUint8(); err != nil { // version + reserved, CLUTs are not versioned here
		return err
	}

	clut := db.GetClutByID(clutID)
	if clut == nil {
		return nil
	}

	for r.BytesLeft() > 0 {
		entryID, err := r.ReadUint8()
		if err != nil {
			return err
		}
		flags, err := r.ReadUint8()
		if err != nil {
			return err
		}

		var y, cr, cb, t uint8
		if flags&clutFlagFullRange != 0 {
			if y, err = r.ReadUint8(); err != nil {
				return err
			}
			if cr, err = r.ReadUint8(); err != nil {
				return err
			}
			if cb, err = r.ReadUint8(); err != nil {
				return err
			}
			if t, err = r.ReadUint8(); err != nil {
				return err
			}
		} else {
			packed, err := r.ReadUint16BE()
			if err != nil {
				return err
			}
			y = uint8((packed>>10)&0x3F) << 2
			cr = uint8((packed>>6)&0x0F) << 4
			cb = uint8((packed>>2)&0x0F) << 4
			t = uint8(packed&0x03) << 6
		}

		argb := ycbcrToARGB(y, cr, cb, t)
		if flags&clutFlagDepth2Bit != 0 && int(entryID) < len(clut.Array2) {
			clut.Array2[entryID] = argb
		}
		if flags&clutFlagDepth4Bit != 0 && int(entryID) < len(clut.Array4) {
			clut.Array4[entryID] = argb
		}
		if flags&clutFlagDepth8Bit != 0 {
			clut.Array8[entryID] = argb
		}
	}
	return nil
}
