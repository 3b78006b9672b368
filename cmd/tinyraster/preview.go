package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taigrr/tinyraster/pkg/render"
	"github.com/taigrr/tinyraster/pkg/tga"
)

var errNotTerminal = errors.New("preview needs an interactive terminal")

type previewOptions struct {
	texture  string
	fps      int
	spin     float64
	workers  int
	strategy string
	bg       string
}

func newPreviewCmd() *cobra.Command {
	var opts previewOptions
	cmd := &cobra.Command{
		Use:   "preview <model>",
		Short: "Spin a model in the terminal",
		Long: `Renders the model continuously with half-block characters.

Controls:
  Left/Right, A/D  spin
  Space            random spin
  T                toggle texture
  X                toggle wireframe
  R                reset view
  Esc, Q           quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.texture, "texture", "", "diffuse texture (default <model>_diffuse.tga)")
	f.IntVar(&opts.fps, "fps", 30, "target frames per second")
	f.Float64Var(&opts.spin, "spin", 0.5, "idle spin in radians per second")
	f.IntVar(&opts.workers, "workers", 4, "row bands rendered in parallel")
	f.StringVar(&opts.strategy, "strategy", "scanline", "scanline or barycentric")
	f.StringVar(&opts.bg, "bg", "#1e1e28", "background color")
	return cmd
}

// previewState is the interactive part of the preview, owned by the
// render loop.
type previewState struct {
	yaw       orbitAxis
	textured  bool
	wireframe bool
}

func runPreview(ctx context.Context, path string, opts previewOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}
	strategy, err := render.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}
	bg, err := parseHexColor(opts.bg)
	if err != nil {
		return err
	}
	fps := max(1, opts.fps)

	m, err := loadModel(path, opts.texture, true, true)
	if err != nil {
		return err
	}

	tty := uv.DefaultTerminal()
	width, height, err := tty.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := tty.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	tty.EnterAltScreen()
	tty.HideCursor()
	_ = tty.Resize(width, height)
	defer func() {
		tty.ExitAltScreen()
		tty.ShowCursor()
		_ = tty.Shutdown(context.Background())
	}()

	state := previewState{yaw: newOrbitAxis(fps), textured: true}
	base := render.NewCamera()

	newRasterizer := func() (*render.Rasterizer, *tga.Image, error) {
		img, err := tga.New(max(1, width), max(1, height*2), tga.RGB24)
		if err != nil {
			return nil, nil, err
		}
		cfg := render.DefaultConfig()
		cfg.Strategy = strategy
		cfg.Workers = opts.workers
		cfg.Textured = state.textured
		r, err := render.New(img, cfg)
		return r, img, err
	}
	r, img, err := newRasterizer()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	idle := opts.spin / float64(fps)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-tty.Events():
			rebuild := false
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				tty.Erase()
				_ = tty.Resize(width, height)
				rebuild = true
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("esc", "q", "ctrl+c"):
					return nil
				case ev.MatchString("left", "a"):
					state.yaw.Impulse(-0.05)
				case ev.MatchString("right", "d"):
					state.yaw.Impulse(0.05)
				case ev.MatchString("space"):
					state.yaw.Impulse((rand.Float64() - 0.5) * 0.6)
				case ev.MatchString("r"):
					state.yaw = newOrbitAxis(fps)
				case ev.MatchString("t"):
					state.textured = !state.textured
					rebuild = true
				case ev.MatchString("x"):
					state.wireframe = !state.wireframe
				}
			}
			if rebuild {
				if r, img, err = newRasterizer(); err != nil {
					return err
				}
			}

		case <-ticker.C:
			state.yaw.Position += idle
			state.yaw.Update()

			img.Clear(bg)
			r.Reset()
			if err := r.SetCamera(base.Orbit(state.yaw.Position)); err != nil {
				return err
			}
			if err := drawFrame(ctx, r, m, state.wireframe); err != nil {
				return err
			}
			tty.Draw(render.NewPreview(img, true))
			if err := tty.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// parseHexColor parses "#rrggbb".
func parseHexColor(s string) (tga.Color, error) {
	var rgb uint32
	if _, err := fmt.Sscanf(s, "#%06x", &rgb); err != nil {
		return tga.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return tga.Hex(rgb), nil
}
