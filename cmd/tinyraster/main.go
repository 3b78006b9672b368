// tinyraster - software rasterizer for OBJ and glTF models
// Renders models to TGA (or PNG/BMP/TIFF/JPEG) files, previews them in the
// terminal, and inspects and converts images.
//
// Commands:
//
//	render   - Render a model or scene file to an image
//	preview  - Spin a model in the terminal
//	info     - Print model and image statistics
//	convert  - Convert between TGA and other image formats
package main

import (
	"context"
	"log/slog"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/tinyraster/pkg/models"
)

var version = "dev"

func main() {
	err := fang.Execute(context.Background(), newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "tinyraster",
		Short: "Software rasterizer for OBJ and glTF models",
		Long: `tinyraster projects triangle meshes onto an image with a depth buffer,
flat lighting and optional diffuse textures, and writes Truevision TGA files.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRenderCmd(),
		newPreviewCmd(),
		newInfoCmd(),
		newConvertCmd(),
	)
	return root
}

// setupLogging installs a text handler on stderr for the CLI and the
// models package.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	models.SetLogger(logger)
}
