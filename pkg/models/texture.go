package models

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/taigrr/tinyraster/pkg/tga"
)

// LoadImage reads a texture file. TGA is decoded natively; PNG, JPEG, BMP,
// TIFF and WebP go through image.Decode. The result is stored bottom row
// first so that v=0 addresses the bottom of the picture.
func LoadImage(path string) (*tga.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		return decodeTGATexture(data)
	}
	return DecodeImage(data)
}

func decodeTGATexture(data []byte) (*tga.Image, error) {
	h, err := tga.ReadHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	img, err := tga.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if h.TopLeft() {
		img.FlipVertically()
	}
	return img, nil
}

// DecodeImage decodes an encoded image in any registered format into a
// bottom-up texture.
func DecodeImage(data []byte) (*tga.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}

	format := tga.RGB24
	switch src.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		format = tga.Grayscale
	}
	img, err := tga.FromImage(src, format)
	if err != nil {
		return nil, err
	}
	img.FlipVertically()
	return img, nil
}

// BindTexture loads path as the diffuse texture. On failure the previous
// binding is kept, a warning is logged and the error is returned; callers
// may ignore it and render untextured. Binding the same file twice leaves
// the model in the same state.
func (m *Model) BindTexture(path string) error {
	img, err := LoadImage(path)
	if err != nil {
		Logger().Warn("texture not bound", "model", m.Name, "path", path, "error", err)
		return fmt.Errorf("bind texture %s: %w", path, err)
	}
	m.diffuse = img
	Logger().Debug("texture bound", "model", m.Name, "path", path,
		"width", img.Width(), "height", img.Height(), "bpp", img.Bpp())
	return nil
}

// BindTextureImage sets an already decoded texture. nil unbinds.
func (m *Model) BindTextureImage(img *tga.Image) {
	m.diffuse = img
}
