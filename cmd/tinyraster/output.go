package main

import (
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/taigrr/tinyraster/pkg/models"
	"github.com/taigrr/tinyraster/pkg/tga"
)

var errOutputFormat = errors.New("unsupported output format")

// writeImage saves img by the extension of path. bottomUp marks buffers
// whose row 0 is the bottom of the picture; TGA records that in the header,
// other formats get their rows reordered.
func writeImage(path string, img *tga.Image, bottomUp, rle bool) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tga" || ext == "" {
		return img.WriteFile(path, bottomUp, rle)
	}

	out := img
	if bottomUp {
		out = img.Clone()
		out.FlipVertically()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch ext {
	case ".png":
		err = png.Encode(f, out)
	case ".bmp":
		err = bmp.Encode(f, out)
	case ".tif", ".tiff":
		err = tiff.Encode(f, out, &tiff.Options{Compression: tiff.Deflate})
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, out, &jpeg.Options{Quality: 92})
	default:
		err = fmt.Errorf("%w: %s", errOutputFormat, ext)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// framePath numbers output files when a job writes more than one frame:
// "out.tga" becomes "out_007.tga".
func framePath(path string, frame, frames int) string {
	if frames <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	width := len(fmt.Sprint(frames - 1))
	return fmt.Sprintf("%s_%0*d%s", strings.TrimSuffix(path, ext), max(width, 3), frame, ext)
}

// loadModel reads a model and binds its diffuse texture. A texture that
// fails to load is logged by the models package and rendering goes on
// without it.
func loadModel(path, texture string, fit, triangulate bool) (*models.Model, error) {
	m, err := models.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if texture == "" && !m.HasTexture() {
		texture = models.DefaultTexturePath(path)
	}
	if texture != "" {
		_ = m.BindTexture(texture)
	}
	if triangulate {
		m = m.Triangulate()
	}
	if fit {
		m = m.Fit()
	}
	return m, nil
}
