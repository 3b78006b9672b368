package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taigrr/tinyraster/pkg/models"
	"github.com/taigrr/tinyraster/pkg/render"
	"github.com/taigrr/tinyraster/pkg/scene"
	"github.com/taigrr/tinyraster/pkg/tga"
)

var errNoModel = errors.New("no model given: pass a model path or a scene with a model")

// renderOptions holds the flags of the render command. Scene values are
// overridden only by flags the user set.
type renderOptions struct {
	scenePath   string
	flags       scene.Scene
	light       []float64
	eye         []float64
	untextured  bool
	wireframe   bool
	triangulate bool
	zbuffer     string
	watch       bool
	noProgress  bool
}

func newRenderCmd() *cobra.Command {
	return renderCmd(&renderOptions{})
}

func renderCmd(opts *renderOptions) *cobra.Command {
	d := scene.Default()

	cmd := &cobra.Command{
		Use:   "render [model]",
		Short: "Render a model to an image file",
		Example: `  tinyraster render african_head.obj
  tinyraster render head.obj -o head.png --strategy barycentric --workers 8
  tinyraster render --scene turntable.yaml --frames 36`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			if opts.watch {
				return watchScene(cmd.Context(), s, opts, func() (scene.Scene, error) {
					return opts.resolve(cmd, args)
				})
			}
			return renderScene(cmd.Context(), s, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.scenePath, "scene", "", "YAML scene file")
	f.StringVarP(&opts.flags.Output, "output", "o", d.Output, "output image (.tga, .png, .bmp, .tiff, .jpg)")
	f.StringVar(&opts.flags.Texture, "texture", "", "diffuse texture (default <model>_diffuse.tga)")
	f.IntVar(&opts.flags.Width, "width", d.Width, "image width")
	f.IntVar(&opts.flags.Height, "height", d.Height, "image height")
	f.StringVar(&opts.flags.Projection, "projection", d.Projection, "flat or perspective")
	f.StringVar(&opts.flags.Strategy, "strategy", d.Strategy, "scanline or barycentric")
	f.StringVar(&opts.flags.Filter, "filter", d.Filter, "texture filter: nearest or bilinear")
	f.BoolVar(&opts.flags.RLE, "rle", d.RLE, "run-length encode TGA output")
	f.BoolVar(&opts.flags.VFlip, "vflip", d.VFlip, "write TGA with a bottom-left origin")
	f.BoolVar(&opts.flags.Fit, "fit", false, "center the model and scale it to the unit cube")
	f.IntVar(&opts.flags.Workers, "workers", d.Workers, "row bands rendered in parallel")
	f.IntVar(&opts.flags.Frames, "frames", d.Frames, "render a turntable of this many frames")
	f.Float64SliceVar(&opts.light, "light", nil, "light direction x,y,z")
	f.Float64SliceVar(&opts.eye, "eye", nil, "camera position x,y,z")
	f.BoolVar(&opts.untextured, "untextured", false, "ignore the diffuse texture")
	f.BoolVar(&opts.wireframe, "wireframe", false, "draw face outlines instead of filled faces")
	f.BoolVar(&opts.triangulate, "triangulate", false, "split polygons into triangles before drawing")
	f.StringVar(&opts.zbuffer, "zbuffer", "", "also write the depth buffer to this file")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-render when the model, texture or scene changes")
	f.BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

// resolve builds the scene for this run: defaults, then the scene file,
// then explicitly set flags, then the positional model.
func (o *renderOptions) resolve(cmd *cobra.Command, args []string) (scene.Scene, error) {
	s := scene.Default()
	if o.scenePath != "" {
		var err error
		if s, err = scene.Load(o.scenePath); err != nil {
			return scene.Scene{}, err
		}
	}

	f := cmd.Flags()
	override := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	override("output", func() { s.Output = o.flags.Output })
	override("texture", func() { s.Texture = o.flags.Texture })
	override("width", func() { s.Width = o.flags.Width })
	override("height", func() { s.Height = o.flags.Height })
	override("projection", func() { s.Projection = o.flags.Projection })
	override("strategy", func() { s.Strategy = o.flags.Strategy })
	override("filter", func() { s.Filter = o.flags.Filter })
	override("rle", func() { s.RLE = o.flags.RLE })
	override("vflip", func() { s.VFlip = o.flags.VFlip })
	override("fit", func() { s.Fit = o.flags.Fit })
	override("workers", func() { s.Workers = o.flags.Workers })
	override("frames", func() { s.Frames = o.flags.Frames })
	override("untextured", func() { s.Textured = !o.untextured })

	var err error
	if f.Changed("light") {
		if s.Light, err = toVec3("light", o.light); err != nil {
			return scene.Scene{}, err
		}
	}
	if f.Changed("eye") {
		if s.Camera.Eye, err = toVec3("eye", o.eye); err != nil {
			return scene.Scene{}, err
		}
	}

	if len(args) == 1 {
		s.Model = args[0]
	}
	if s.Model == "" {
		return scene.Scene{}, errNoModel
	}
	return s, s.Validate()
}

func toVec3(name string, v []float64) (scene.Vec3, error) {
	if len(v) != 3 {
		return scene.Vec3{}, fmt.Errorf("--%s needs three components, got %d", name, len(v))
	}
	return scene.Vec3{v[0], v[1], v[2]}, nil
}

// renderScene loads the model once and writes every frame of s.
func renderScene(ctx context.Context, s scene.Scene, o *renderOptions) error {
	start := time.Now()
	m, err := loadModel(s.Model, s.Texture, s.Fit, o.triangulate)
	if err != nil {
		return err
	}
	slog.Debug("model loaded", "path", s.Model, "vertices", m.VertexCount(), "faces", m.FaceCount(),
		"texture", m.HasTexture(), "elapsed", time.Since(start))

	cfg, err := s.RenderConfig()
	if err != nil {
		return err
	}

	frames := max(1, s.Frames)
	bar := newProgressBar(frames, m.FaceCount(), !o.noProgress)
	defer bar.Close()
	if frames == 1 {
		cfg.Progress = func(done, total int) {
			if bar.GetMax() != total {
				bar.ChangeMax(total)
			}
			_ = bar.Set(done)
		}
	}

	img, err := tga.New(s.Width, s.Height, tga.RGB24)
	if err != nil {
		return err
	}
	r, err := render.New(img, cfg)
	if err != nil {
		return err
	}

	for i, angle := range turntable(frames) {
		frameStart := time.Now()
		img.Clear(tga.ZeroColor(img.Bpp()))
		r.Reset()
		if err := r.SetCamera(cfg.Camera.Orbit(angle)); err != nil {
			return err
		}
		if err := drawFrame(ctx, r, m, o.wireframe); err != nil {
			return err
		}

		out := framePath(s.Output, i, frames)
		if err := writeImage(out, img, s.VFlip, s.RLE); err != nil {
			return err
		}
		if o.zbuffer != "" {
			zpath := framePath(o.zbuffer, i, frames)
			if err := writeImage(zpath, r.Depth().Image(), s.VFlip, s.RLE); err != nil {
				return err
			}
		}
		if frames > 1 {
			_ = bar.Add(1)
		}

		st := r.Stats()
		slog.Debug("frame rendered", "output", out, "faces", st.Faces, "culled", st.Culled,
			"degenerate", st.Degenerate, "pixels", st.Pixels, "elapsed", time.Since(frameStart))
	}
	_ = bar.Finish()

	slog.Info("render complete", "model", s.Model, "output", s.Output, "frames", frames,
		"size", fmt.Sprintf("%dx%d", s.Width, s.Height), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func drawFrame(ctx context.Context, r *render.Rasterizer, m *models.Model, wireframe bool) error {
	if wireframe {
		return r.DrawWireframe(m, tga.RGB(255, 255, 255))
	}
	return r.DrawModel(ctx, m)
}

// newProgressBar counts frames for turntables and faces for single images.
// It stays hidden when stderr is not a terminal.
func newProgressBar(frames, faces int, enabled bool) *progressbar.ProgressBar {
	total, desc := faces, "rasterizing"
	if frames > 1 {
		total, desc = frames, "frames"
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetVisibility(enabled && term.IsTerminal(int(os.Stderr.Fd()))),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

