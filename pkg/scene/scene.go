// Package scene loads render settings from YAML files. A scene replaces the
// fixed light, camera and viewport constants with one explicit value.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/tinyraster/pkg/math3d"
	"github.com/taigrr/tinyraster/pkg/models"
	"github.com/taigrr/tinyraster/pkg/render"
	"github.com/taigrr/tinyraster/pkg/tga"
)

// ErrInvalid is returned for scenes whose values cannot be rendered.
var ErrInvalid = errors.New("scene: invalid value")

// maxSceneSize bounds the scene files Load accepts.
const maxSceneSize = 1 << 20

// Vec3 is a point or direction written as a three element YAML sequence.
type Vec3 [3]float64

// Vec converts v for the math3d package.
func (v Vec3) Vec() math3d.Vec3f {
	return math3d.V3(v[0], v[1], v[2])
}

// Camera places the viewer.
type Camera struct {
	Eye    Vec3 `yaml:"eye"`
	Center Vec3 `yaml:"center"`
	Up     Vec3 `yaml:"up"`
}

// Scene describes one render job.
type Scene struct {
	Model   string `yaml:"model"`
	Texture string `yaml:"texture,omitempty"` // defaults to <model>_diffuse.tga
	Output  string `yaml:"output"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Light      Vec3   `yaml:"light"`
	Camera     Camera `yaml:"camera"`
	Projection string `yaml:"projection"`
	Strategy   string `yaml:"strategy"`
	Filter     string `yaml:"filter"`
	Textured   bool   `yaml:"textured"`
	Fit        bool   `yaml:"fit"`

	RLE   bool `yaml:"rle"`
	VFlip bool `yaml:"vflip"`

	Workers int `yaml:"workers"`
	// Frames renders a turntable of this many images when above 1.
	Frames int `yaml:"frames"`
}

// Default returns the scene used when no file is given: an 800x800
// perspective render written to output.tga, flipped and run-length encoded.
func Default() Scene {
	cam := render.NewCamera()
	return Scene{
		Output:     "output.tga",
		Width:      800,
		Height:     800,
		Light:      Vec3{0, 0, -1},
		Camera:     Camera{Eye: vec3(cam.Eye), Center: vec3(cam.Center), Up: vec3(cam.Up)},
		Projection: render.ProjectionPerspective.String(),
		Strategy:   render.StrategyScanline.String(),
		Filter:     render.FilterNearest.String(),
		Textured:   true,
		RLE:        true,
		VFlip:      true,
		Workers:    1,
		Frames:     1,
	}
}

func vec3(v math3d.Vec3f) Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Parse decodes a scene from r on top of Default. Unknown keys are errors.
func Parse(r io.Reader) (Scene, error) {
	s := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Scene{}, fmt.Errorf("decode scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

// Load reads a scene file. Relative model, texture and output paths are
// resolved against the file's directory.
func Load(path string) (Scene, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Scene{}, fmt.Errorf("open scene: %w", err)
	}
	if info.Size() > maxSceneSize {
		return Scene{}, fmt.Errorf("%w: %s is %d bytes", ErrInvalid, path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("open scene: %w", err)
	}
	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&s.Model, &s.Texture, &s.Output} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return s, nil
}

// Validate checks sizes, counts and option names.
func (s Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, s.Width, s.Height)
	}
	if s.Width > tga.MaxDimension || s.Height > tga.MaxDimension {
		return fmt.Errorf("%w: size %dx%d exceeds %d", ErrInvalid, s.Width, s.Height, tga.MaxDimension)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, s.Workers)
	}
	if s.Frames < 0 {
		return fmt.Errorf("%w: frames %d", ErrInvalid, s.Frames)
	}
	if s.Light.Vec().Norm() == 0 {
		return fmt.Errorf("%w: zero light direction", ErrInvalid)
	}
	if _, err := s.RenderConfig(); err != nil {
		return err
	}
	return nil
}

// TexturePath returns the texture to bind: the explicit one, or the
// conventional diffuse map next to the model.
func (s Scene) TexturePath() string {
	if s.Texture != "" {
		return s.Texture
	}
	if s.Model == "" {
		return ""
	}
	return models.DefaultTexturePath(s.Model)
}

// RenderConfig converts the scene into rasterizer settings.
func (s Scene) RenderConfig() (render.Config, error) {
	cfg := render.DefaultConfig()
	var err error
	if cfg.Projection, err = render.ParseProjection(s.Projection); err != nil {
		return render.Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if cfg.Strategy, err = render.ParseStrategy(s.Strategy); err != nil {
		return render.Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if cfg.Filter, err = render.ParseFilter(s.Filter); err != nil {
		return render.Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cfg.Light = s.Light.Vec()
	cfg.Camera = render.Camera{
		Eye:    s.Camera.Eye.Vec(),
		Center: s.Camera.Center.Vec(),
		Up:     s.Camera.Up.Vec(),
	}
	cfg.Textured = s.Textured
	cfg.Workers = s.Workers
	return cfg, nil
}
