package scene

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/tinyraster/pkg/math3d"
	"github.com/taigrr/tinyraster/pkg/render"
)

func TestDefault(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("default scene invalid: %v", err)
	}
	cfg, err := s.RenderConfig()
	if err != nil {
		t.Fatal(err)
	}
	want := render.DefaultConfig()
	if cfg.Light != want.Light || cfg.Camera != want.Camera ||
		cfg.Projection != want.Projection || cfg.Strategy != want.Strategy ||
		cfg.Textured != want.Textured || cfg.Workers != want.Workers {
		t.Errorf("default render config = %+v, want %+v", cfg, want)
	}
	if !s.RLE || !s.VFlip || s.Output != "output.tga" {
		t.Errorf("default output settings = %q rle=%v vflip=%v", s.Output, s.RLE, s.VFlip)
	}
}

func TestParse(t *testing.T) {
	src := `
model: head.obj
width: 320
height: 240
light: [0, -1, -1]
camera:
  eye: [0, 0, 5]
  center: [0, 0, 0]
  up: [0, 1, 0]
projection: flat
strategy: barycentric
filter: bilinear
textured: false
rle: false
workers: 4
`
	s, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if s.Model != "head.obj" || s.Width != 320 || s.Height != 240 {
		t.Errorf("parsed %+v", s)
	}
	// Keys left out keep their defaults.
	if !s.VFlip || s.Output != "output.tga" || s.Frames != 1 {
		t.Errorf("defaults lost: vflip=%v output=%q frames=%d", s.VFlip, s.Output, s.Frames)
	}

	cfg, err := s.RenderConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Projection != render.ProjectionFlat || cfg.Strategy != render.StrategyBarycentric ||
		cfg.Filter != render.FilterBilinear || cfg.Textured || cfg.Workers != 4 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Light != math3d.V3(0, -1, -1) || cfg.Camera.Eye != math3d.V3(0, 0, 5) {
		t.Errorf("light %v eye %v", cfg.Light, cfg.Camera.Eye)
	}
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if s != Default() {
		t.Errorf("empty scene = %+v, want defaults", s)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		invalid bool
	}{
		{"unknown key", "colour: red\n", false},
		{"short vector", "light: [1, 2]\n", false},
		{"bad yaml", "width: [\n", false},
		{"zero width", "width: 0\n", true},
		{"oversized width", "width: 65536\n", true},
		{"oversized height", "height: 70000\n", true},
		{"negative workers", "workers: -2\n", true},
		{"negative frames", "frames: -1\n", true},
		{"zero light", "light: [0, 0, 0]\n", true},
		{"bad strategy", "strategy: raytrace\n", true},
		{"bad projection", "projection: fisheye\n", true},
		{"bad filter", "filter: trilinear\n", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.invalid != errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, ErrInvalid = %v", err, tc.invalid)
			}
		})
	}
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	src := "model: models/head.obj\noutput: /tmp/out.tga\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "models", "head.obj"); s.Model != want {
		t.Errorf("Model = %q, want %q", s.Model, want)
	}
	if s.Output != "/tmp/out.tga" {
		t.Errorf("absolute output rewritten to %q", s.Output)
	}
	if want := filepath.Join(dir, "models", "head_diffuse.tga"); s.TexturePath() != want {
		t.Errorf("TexturePath = %q, want %q", s.TexturePath(), want)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "big.yaml")
	if err := os.WriteFile(path, make([]byte, maxSceneSize+1), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("oversized file error = %v", err)
	}
}

func TestTexturePath(t *testing.T) {
	tests := []struct {
		scene Scene
		want  string
	}{
		{Scene{Model: "a/b.obj", Texture: "tex.png"}, "tex.png"},
		{Scene{Model: "a/b.obj"}, filepath.Join("a", "b_diffuse.tga")},
		{Scene{}, ""},
	}
	for _, tc := range tests {
		if got := tc.scene.TexturePath(); got != tc.want {
			t.Errorf("TexturePath(%+v) = %q, want %q", tc.scene, got, tc.want)
		}
	}
}
