package tga

import "fmt"

// Color is a pixel value stored in blue-green-red-alpha order. Bpp records
// how many leading channels are meaningful (1, 3 or 4).
type Color struct {
	BGRA [4]uint8
	Bpp  int
}

// RGBA creates a four channel color.
func RGBA(r, g, b, a uint8) Color {
	return Color{BGRA: [4]uint8{b, g, r, a}, Bpp: 4}
}

// RGB creates an opaque four channel color.
func RGB(r, g, b uint8) Color {
	return RGBA(r, g, b, 255)
}

// Hex creates an opaque color from 0xRRGGBB.
func Hex(hex uint32) Color {
	return RGB(uint8(hex>>16), uint8(hex>>8), uint8(hex))
}

// Gray creates a single channel color.
func Gray(v uint8) Color {
	return Color{BGRA: [4]uint8{v}, Bpp: 1}
}

// ZeroColor returns the all-zero color of the given depth.
func ZeroColor(bpp int) Color {
	return Color{Bpp: bpp}
}

func (c Color) B() uint8 { return c.BGRA[0] }
func (c Color) G() uint8 { return c.BGRA[1] }
func (c Color) R() uint8 { return c.BGRA[2] }
func (c Color) A() uint8 { return c.BGRA[3] }

// Scale multiplies the color channels by intensity, truncating to 8 bits.
// Intensity is clamped to [0,1]. Alpha is left as is.
func (c Color) Scale(intensity float64) Color {
	intensity = max(0, min(1, intensity))
	n := min(c.Bpp, 3)
	if c.Bpp == 0 {
		n = 3
	}
	out := c
	for i := range n {
		out.BGRA[i] = uint8(float64(c.BGRA[i]) * intensity)
	}
	return out
}

// Convert returns c re-expressed at depth bpp. Gray expands to equal B, G
// and R; color collapses to gray by luma. Alpha defaults to opaque when the
// source has none.
func (c Color) Convert(bpp int) Color {
	if c.Bpp == bpp {
		return c
	}
	switch {
	case bpp == 1:
		y := 0.299*float64(c.R()) + 0.587*float64(c.G()) + 0.114*float64(c.B())
		return Gray(uint8(y + 0.5))
	case c.Bpp == 1:
		v := c.BGRA[0]
		return Color{BGRA: [4]uint8{v, v, v, 255}, Bpp: bpp}
	case c.Bpp == 3:
		out := c
		out.BGRA[3] = 255
		out.Bpp = bpp
		return out
	default:
		out := c
		out.Bpp = bpp
		return out
	}
}

func (c Color) String() string {
	switch c.Bpp {
	case 1:
		return fmt.Sprintf("gray(%d)", c.BGRA[0])
	case 3:
		return fmt.Sprintf("bgr(%d,%d,%d)", c.B(), c.G(), c.R())
	}
	return fmt.Sprintf("bgra(%d,%d,%d,%d)", c.B(), c.G(), c.R(), c.A())
}
