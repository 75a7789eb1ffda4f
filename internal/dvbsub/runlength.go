package dvbsub

import (
	"fmt"

	"github.com/snapetech/subtitlecore/internal/bitio"
)

// Object data-type bytes, ETSI EN 300 743 table 14.
const (
	dataType2BitPixelCodeString  = 0x10
	dataType4BitPixelCodeString  = 0x11
	dataType8BitPixelCodeString  = 0x12
	dataType2to4BitMapTable      = 0x20
	dataType2to8BitMapTable      = 0x21
	dataType4to8BitMapTable      = 0x22
	dataTypeEndOfObjectLineCode  = 0xF0
)

// mapSlot names which of the three CLUT map-table buffers is currently
// selected for widening a pixel code, replacing the original decoder's
// m_currentMap raw pointer with an enum + owning-bank lookup (spec §4.3 /
// DESIGN NOTES: "represent as an optional index into the owning map-bank,
// never as a raw pointer").
type mapSlot int

const (
	mapNone mapSlot = iota
	map2to4
	map2to8
	map4to8
)

// objectParser decodes one field (top or bottom) of one object's run-length
// pixel code string into a pixelWriter, consuming data-type bytes from the
// reader until it is exhausted. Grounded on ObjectParser.cpp.
type objectParser struct {
	r      *bitio.Reader
	w      *pixelWriter
	maps2to4 [4]uint8
	maps2to8 [4]uint8
	maps4to8 [16]uint8
	active mapSlot
}

func newObjectParser(r *bitio.Reader, w *pixelWriter) *objectParser {
	p := &objectParser{r: r, w: w}
	p.maps2to4 = [4]uint8{0x00, 0x07, 0x08, 0x0F}
	p.maps2to8 = [4]uint8{0x00, 0x77, 0x88, 0xFF}
	for i := range p.maps4to8 {
		p.maps4to8[i] = uint8(i<<4) | uint8(i)
	}
	return p
}

func (p *objectParser) parse() error {
	for p.r.BytesLeft() > 0 {
		dataType, err := p.r.ReadUint8()
		if err != nil {
			return err
		}
		switch dataType {
		case dataType2BitPixelCodeString:
			if err := p.parse2Bit(); err != nil {
				return err
			}
		case dataType4BitPixelCodeString:
			if err := p.parse4Bit(); err != nil {
				return err
			}
		case dataType8BitPixelCodeString:
			if err := p.parse8Bit(); err != nil {
				return err
			}
		case dataType2to4BitMapTable:
			if err := p.parseMap2to4(); err != nil {
				return err
			}
		case dataType2to8BitMapTable:
			if err := p.parseMap2to8(); err != nil {
				return err
			}
		case dataType4to8BitMapTable:
			if err := p.parseMap4to8(); err != nil {
				return err
			}
		case dataTypeEndOfObjectLineCode:
			p.w.endLine()
		default:
			return fmt.Errorf("%w: invalid object data type %#02x", ErrInvalidSegmentField, dataType)
		}
	}
	return nil
}

func (p *objectParser) setPixels(code uint8, count uint32) {
	switch p.active {
	case map2to4:
		code = p.maps2to4[code]
	case map2to8:
		code = p.maps2to8[code]
	case map4to8:
		code = p.maps4to8[code]
	}
	p.w.setPixels(code, count)
}

func (p *objectParser) parse2Bit() error {
	switch p.w.getDepth() {
	case 2:
		p.active = mapNone
	case 4:
		p.active = map2to4
	case 8:
		p.active = map2to8
	default:
		return fmt.Errorf("%w: invalid pixel writer depth", ErrInvalidSegmentField)
	}

	bits := bitio.NewBitReader(p.r)
	for {
		next, err := bits.Read(2)
		if err != nil {
			return err
		}
		if next != 0 {
			p.setPixels(next, 1)
			continue
		}
		switch1, err := bits.Read(1)
		if err != nil {
			return err
		}
		if switch1 == 1 {
			runLength, err := bits.Read(3)
			if err != nil {
				return err
			}
			code, err := bits.Read(2)
			if err != nil {
				return err
			}
			p.setPixels(code, uint32(runLength)+3)
			continue
		}
		switch2, err := bits.Read(1)
		if err != nil {
			return err
		}
		if switch2 == 1 {
			p.setPixels(0, 1)
			continue
		}
		switch3, err := bits.Read(2)
		if err != nil {
			return err
		}
		switch switch3 {
		case 0:
			return nil
		case 1:
			p.setPixels(0, 2)
		case 2:
			runLength, err := bits.Read(4)
			if err != nil {
				return err
			}
			code, err := bits.Read(2)
			if err != nil {
				return err
			}
			p.setPixels(code, uint32(runLength)+12)
		default:
			runLength, err := bits.Read(8)
			if err != nil {
				return err
			}
			code, err := bits.Read(2)
			if err != nil {
				return err
			}
			p.setPixels(code, uint32(runLength)+29)
		}
	}
}

func (p *objectParser) parse4Bit() error {
	switch p.w.getDepth() {
	case 2:
		return fmt.Errorf("%w: object of depth 4, region of depth 2", ErrInvalidSegmentField)
	case 4:
		p.active = mapNone
	case 8:
		p.active = map4to8
	default:
		return fmt.Errorf("%w: invalid pixel writer depth", ErrInvalidSegmentField)
	}

	bits := bitio.NewBitReader(p.r)
	for {
		first, err := bits.Read(4)
		if err != nil {
			return err
		}
		if first != 0 {
			p.setPixels(first, 1)
			continue
		}
		switch1, err := bits.Read(1)
		if err != nil {
			return err
		}
		if switch1 == 0 {
			runLength, err := bits.Read(3)
			if err != nil {
				return err
			}
			if runLength == 0 {
				return nil
			}
			p.setPixels(0, uint32(runLength)+2)
			continue
		}
		switch2, err := bits.Read(1)
		if err != nil {
			return err
		}
		if switch2 == 0 {
			runLength, err := bits.Read(2)
			if err != nil {
				return err
			}
			code, err := bits.Read(4)
			if err != nil {
				return err
			}
			p.setPixels(code, uint32(runLength)+4)
			continue
		}
		switch3, err := bits.Read(2)
		if err != nil {
			return err
		}
		switch switch3 {
		case 0:
			p.setPixels(0, 1)
		case 1:
			p.setPixels(0, 2)
		case 2:
			runLength, err := bits.Read(4)
			if err != nil {
				return err
			}
			code, err := bits.Read(4)
			if err != nil {
				return err
			}
			p.setPixels(code, uint32(runLength)+9)
		default:
			runLength, err := bits.Read(8)
			if err != nil {
				return err
			}
			code, err := bits.Read(4)
			if err != nil {
				return err
			}
			p.setPixels(code, uint32(runLength)+25)
		}
	}
}

func (p *objectParser) parse8Bit() error {
	switch p.w.getDepth() {
	case 2:
		return fmt.Errorf("%w: object of depth 8, region of depth 2", ErrInvalidSegmentField)
	case 4:
		return fmt.Errorf("%w: object of depth 8, region of depth 4", ErrInvalidSegmentField)
	case 8:
		p.active = mapNone
	default:
		return fmt.Errorf("%w: invalid pixel writer depth", ErrInvalidSegmentField)
	}

	bits := bitio.NewBitReader(p.r)
	for {
		first, err := bits.Read(8)
		if err != nil {
			return err
		}
		if first != 0 {
			p.setPixels(first, 1)
			continue
		}
		switch1, err := bits.Read(1)
		if err != nil {
			return err
		}
		if switch1 == 0 {
			runLength, err := bits.Read(7)
			if err != nil {
				return err
			}
			if runLength == 0 {
				return nil
			}
			p.setPixels(0, uint32(runLength))
			continue
		}
		runLength, err := bits.Read(7)
		if err != nil {
			return err
		}
		code, err := bits.Read(8)
		if err != nil {
			return err
		}
		p.setPixels(code, uint32(runLength))
	}
}

func (p *objectParser) parseMap2to4() error {
	bits := bitio.NewBitReader(p.r)
	for i := range p.maps2to4 {
		v, err := bits.Read(4)
		if err != nil {
			return err
		}
		p.maps2to4[i] = v
	}
	return nil
}

func (p *objectParser) parseMap2to8() error {
	bits := bitio.NewBitReader(p.r)
	for i := range p.maps2to8 {
		v, err := bits.Read(8)
		if err != nil {
			return err
		}
		p.maps2to8[i] = v
	}
	return nil
}

func (p *objectParser) parseMap4to8() error {
	bits := bitio.NewBitReader(p.r)
	for i := range p.maps4to8 {
		v, err := bits.Read(8)
		if err != nil {
			return err
		}
		p.maps4to8[i] = v
	}
	return nil
}
