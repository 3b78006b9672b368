package render

import (
	"math"

	"github.com/taigrr/tinyraster/pkg/tga"
)

// Empty is the depth of a pixel nothing has been drawn to.
const Empty = -math.MaxFloat64

// DepthBuffer records the nearest depth drawn at each pixel. Larger values
// are nearer the viewer.
type DepthBuffer struct {
	width  int
	height int
	z      []float64
}

// NewDepthBuffer allocates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		width:  max(width, 0),
		height: max(height, 0),
	}
	d.z = make([]float64, d.width*d.height)
	d.Reset()
	return d
}

// Reset marks every pixel as empty.
func (d *DepthBuffer) Reset() {
	n := len(d.z)
	if n == 0 {
		return
	}
	d.z[0] = Empty
	for i := 1; i < n; i *= 2 {
		copy(d.z[i:], d.z[:i])
	}
}

// Width returns the buffer width.
func (d *DepthBuffer) Width() int { return d.width }

// Height returns the buffer height.
func (d *DepthBuffer) Height() int { return d.height }

// At returns the stored depth at (x, y).
func (d *DepthBuffer) At(x, y int) (float64, bool) {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return Empty, false
	}
	return d.z[x+y*d.width], true
}

// TestAndSet stores z at (x, y) if it is strictly greater than the current
// value and reports whether it did. Ties keep the earlier value.
func (d *DepthBuffer) TestAndSet(x, y int, z float64) bool {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return false
	}
	idx := x + y*d.width
	if z <= d.z[idx] {
		return false
	}
	d.z[idx] = z
	return true
}

// Image renders the buffer as a grayscale image scaled between the nearest
// and farthest drawn depths. Empty pixels stay black.
func (d *DepthBuffer) Image() *tga.Image {
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, z := range d.z {
		if z == Empty {
			continue
		}
		lo = min(lo, z)
		hi = max(hi, z)
	}
	img, _ := tga.New(d.width, d.height, tga.Grayscale)
	out := img.Pix()
	if lo > hi {
		return img
	}
	span := hi - lo
	for i, z := range d.z {
		switch {
		case z == Empty:
		case span == 0:
			out[i] = 255
		default:
			out[i] = uint8(1 + 254*(z-lo)/span)
		}
	}
	return img
}
