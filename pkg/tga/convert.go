package tga

import (
	"image"
	"image/color"
)

var _ image.Image = (*Image)(nil)

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model {
	if img.bpp == 1 {
		return color.GrayModel
	}
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.width, img.height)
}

// At implements image.Image. Images without alpha report opaque pixels.
func (img *Image) At(x, y int) color.Color {
	c, ok := img.Get(x, y)
	if !ok {
		return color.NRGBA{}
	}
	switch img.bpp {
	case 1:
		return color.Gray{Y: c.BGRA[0]}
	case 3:
		return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: 255}
	}
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// FromImage copies any image.Image into a new buffer of the given format.
func FromImage(src image.Image, format Format) (*Image, error) {
	bounds := src.Bounds()
	img, err := New(bounds.Dx(), bounds.Dy(), format)
	if err != nil {
		return nil, err
	}

	for y := range img.height {
		for x := range img.width {
			c := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			_ = img.Set(x, y, RGBA(c.R, c.G, c.B, c.A).Convert(img.bpp))
		}
	}
	return img, nil
}
