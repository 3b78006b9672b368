package main

import (
	"github.com/spf13/cobra"

	"github.com/taigrr/tinyraster/pkg/models"
)

func newConvertCmd() *cobra.Command {
	var rle bool
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert between TGA and other image formats",
		Long: `Reads TGA, PNG, JPEG, BMP, TIFF or WebP and writes TGA, PNG, JPEG, BMP
or TIFF, chosen by the output extension.`,
		Example: "  tinyraster convert output.tga output.png\n  tinyraster convert diffuse.png diffuse.tga --rle=false",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Textures load bottom-up whatever their source orientation.
			img, err := models.LoadImage(args[0])
			if err != nil {
				return err
			}
			return writeImage(args[1], img, true, rle)
		},
	}
	cmd.Flags().BoolVar(&rle, "rle", true, "run-length encode TGA output")
	return cmd
}
