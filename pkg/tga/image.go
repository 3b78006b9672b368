// Package tga implements an in-memory pixel buffer and the Truevision TGA
// file codec (raw and run-length encoded true-color and grayscale images).
package tga

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned for a bytes-per-pixel value other than 1, 3 or 4.
	ErrInvalidFormat = errors.New("tga: invalid pixel format")
	// ErrUnsupportedFormat is returned when decoding a header this codec does not handle.
	ErrUnsupportedFormat = errors.New("tga: unsupported format")
	// ErrFormat is returned when the pixel stream is inconsistent with the header.
	ErrFormat = errors.New("tga: malformed data")
	// ErrOutOfBounds is returned when writing a pixel outside the image.
	ErrOutOfBounds = errors.New("tga: coordinates out of bounds")
	// ErrIO wraps read and write failures.
	ErrIO = errors.New("tga: i/o error")
)

// Format is the number of bytes stored per pixel.
type Format int

const (
	Grayscale Format = 1
	RGB24     Format = 3
	RGBA32    Format = 4
)

// FormatFromBpp validates a bytes-per-pixel value.
func FormatFromBpp(bpp int) (Format, error) {
	switch Format(bpp) {
	case Grayscale, RGB24, RGBA32:
		return Format(bpp), nil
	}
	return 0, fmt.Errorf("%w: %d bytes per pixel", ErrInvalidFormat, bpp)
}

func (f Format) String() string {
	switch f {
	case Grayscale:
		return "grayscale"
	case RGB24:
		return "rgb"
	case RGBA32:
		return "rgba"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Image is a fixed-size pixel buffer. Pixels are stored row-major, bpp bytes
// each, in the channel order of Color.
type Image struct {
	width  int
	height int
	bpp    int
	data   []byte
}

// New allocates a zero-filled image.
func New(width, height int, format Format) (*Image, error) {
	if _, err := FormatFromBpp(int(format)); err != nil {
		return nil, err
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrInvalidFormat, width, height)
	}
	return &Image{
		width:  width,
		height: height,
		bpp:    int(format),
		data:   make([]byte, width*height*int(format)),
	}, nil
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// Bpp returns the number of bytes per pixel.
func (img *Image) Bpp() int { return img.bpp }

// Format returns the pixel format.
func (img *Image) Format() Format { return Format(img.bpp) }

// Pix returns the underlying pixel bytes. The slice aliases the image.
func (img *Image) Pix() []byte { return img.data }

func (img *Image) offset(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= img.width || y >= img.height {
		return 0, false
	}
	idx := (x + y*img.width) * img.bpp
	if idx+img.bpp > len(img.data) {
		return 0, false
	}
	return idx, true
}

// Set writes the first Bpp channels of c into pixel (x, y).
func (img *Image) Set(x, y int, c Color) error {
	idx, ok := img.offset(x, y)
	if !ok {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, img.width, img.height)
	}
	copy(img.data[idx:idx+img.bpp], c.BGRA[:img.bpp])
	return nil
}

// Get returns the color at (x, y). Channels beyond Bpp are zero. The boolean
// is false when the coordinates fall outside the image or the image is empty.
func (img *Image) Get(x, y int) (Color, bool) {
	idx, ok := img.offset(x, y)
	if !ok {
		return Color{}, false
	}
	c := Color{Bpp: img.bpp}
	copy(c.BGRA[:], img.data[idx:idx+img.bpp])
	return c, true
}

// Clear fills every pixel with c.
func (img *Image) Clear(c Color) {
	n := len(img.data)
	if n == 0 {
		return
	}
	copy(img.data, c.BGRA[:img.bpp])
	for i := img.bpp; i < n; i *= 2 {
		copy(img.data[i:], img.data[:i])
	}
}

// FlipVertically reverses the row order in place.
func (img *Image) FlipVertically() {
	stride := img.width * img.bpp
	tmp := make([]byte, stride)
	for top, bot := 0, img.height-1; top < bot; top, bot = top+1, bot-1 {
		a := img.data[top*stride : (top+1)*stride]
		b := img.data[bot*stride : (bot+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// FlipHorizontally reverses the pixel order of every row in place.
func (img *Image) FlipHorizontally() {
	tmp := make([]byte, img.bpp)
	for y := range img.height {
		row := img.data[y*img.width*img.bpp : (y+1)*img.width*img.bpp]
		for l, r := 0, img.width-1; l < r; l, r = l+1, r-1 {
			a := row[l*img.bpp : (l+1)*img.bpp]
			b := row[r*img.bpp : (r+1)*img.bpp]
			copy(tmp, a)
			copy(a, b)
			copy(b, tmp)
		}
	}
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	c := *img
	c.data = append([]byte(nil), img.data...)
	return &c
}
