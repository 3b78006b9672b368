package tga

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the size of the fixed TGA header in bytes.
const HeaderSize = 18

// MaxDimension is the largest width or height a header can describe.
const MaxDimension = 0xFFFF

// Data type codes.
const (
	TypeNoImage       = 0
	TypeColorMapped   = 1
	TypeTrueColor     = 2
	TypeGrayscale     = 3
	TypeTrueColorRLE  = 10
	TypeGrayscaleRLE  = 11
	descriptorTopLeft = 0x20
)

// Header is the 18-byte TGA file header. Multi-byte fields are little-endian
// on disk.
type Header struct {
	IDLength        uint8
	ColorMapType    uint8
	DataTypeCode    uint8
	ColorMapOrigin  uint16
	ColorMapLength  uint16
	ColorMapDepth   uint8
	XOrigin         uint16
	YOrigin         uint16
	Width           uint16
	Height          uint16
	BitsPerPixel    uint8
	ImageDescriptor uint8
}

// MarshalBinary encodes the header field by field.
func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	b[0] = h.IDLength
	b[1] = h.ColorMapType
	b[2] = h.DataTypeCode
	binary.LittleEndian.PutUint16(b[3:], h.ColorMapOrigin)
	binary.LittleEndian.PutUint16(b[5:], h.ColorMapLength)
	b[7] = h.ColorMapDepth
	binary.LittleEndian.PutUint16(b[8:], h.XOrigin)
	binary.LittleEndian.PutUint16(b[10:], h.YOrigin)
	binary.LittleEndian.PutUint16(b[12:], h.Width)
	binary.LittleEndian.PutUint16(b[14:], h.Height)
	b[16] = h.BitsPerPixel
	b[17] = h.ImageDescriptor
	return b, nil
}

// UnmarshalBinary decodes an 18-byte header.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: header is %d bytes, want %d", ErrFormat, len(b), HeaderSize)
	}
	*h = Header{
		IDLength:        b[0],
		ColorMapType:    b[1],
		DataTypeCode:    b[2],
		ColorMapOrigin:  binary.LittleEndian.Uint16(b[3:]),
		ColorMapLength:  binary.LittleEndian.Uint16(b[5:]),
		ColorMapDepth:   b[7],
		XOrigin:         binary.LittleEndian.Uint16(b[8:]),
		YOrigin:         binary.LittleEndian.Uint16(b[10:]),
		Width:           binary.LittleEndian.Uint16(b[12:]),
		Height:          binary.LittleEndian.Uint16(b[14:]),
		BitsPerPixel:    b[16],
		ImageDescriptor: b[17],
	}
	return nil
}

// RLE reports whether the pixel stream is run-length encoded.
func (h Header) RLE() bool {
	return h.DataTypeCode == TypeTrueColorRLE || h.DataTypeCode == TypeGrayscaleRLE
}

// TopLeft reports whether the image origin is the top-left corner.
func (h Header) TopLeft() bool {
	return h.ImageDescriptor&descriptorTopLeft != 0
}

// format validates the header and returns the pixel format it describes.
func (h Header) format() (Format, error) {
	switch h.DataTypeCode {
	case TypeTrueColor, TypeTrueColorRLE, TypeGrayscale, TypeGrayscaleRLE:
	default:
		return 0, fmt.Errorf("%w: data type code %d", ErrUnsupportedFormat, h.DataTypeCode)
	}
	if h.ColorMapType != 0 {
		return 0, fmt.Errorf("%w: color-mapped image", ErrUnsupportedFormat)
	}
	if h.BitsPerPixel%8 != 0 {
		return 0, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, h.BitsPerPixel)
	}
	f, err := FormatFromBpp(int(h.BitsPerPixel >> 3))
	if err != nil {
		return 0, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, h.BitsPerPixel)
	}
	grayCode := h.DataTypeCode == TypeGrayscale || h.DataTypeCode == TypeGrayscaleRLE
	if grayCode && f != Grayscale {
		return 0, fmt.Errorf("%w: grayscale image with %d bits per pixel", ErrUnsupportedFormat, h.BitsPerPixel)
	}
	return f, nil
}

// dataTypeCode picks the code to write for an image of format f.
func dataTypeCode(f Format, rle bool) uint8 {
	switch {
	case f == Grayscale && rle:
		return TypeGrayscaleRLE
	case f == Grayscale:
		return TypeGrayscale
	case rle:
		return TypeTrueColorRLE
	}
	return TypeTrueColor
}
