package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/taigrr/tinyraster/pkg/models"
	"github.com/taigrr/tinyraster/pkg/tga"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	keyStyle    = cellStyle.Faint(true)
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Print model and image statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				rows, err := describe(path)
				if err != nil {
					return err
				}
				if _, err := lipgloss.Fprintln(cmd.OutOrStdout(), infoTable(path, rows)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func infoTable(path string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(filepath.Base(path), "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyStyle
			}
			return cellStyle
		}).
		String()
}

// describe returns key/value rows for a model or image file.
func describe(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".glb", ".gltf":
		m, err := models.Load(path)
		if err != nil {
			return nil, err
		}
		return describeModel(m), nil
	case ".tga":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return describeTGA(f)
	}
	img, err := models.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return [][]string{
		{"size", fmt.Sprintf("%dx%d", img.Width(), img.Height())},
		{"format", img.Format().String()},
	}, nil
}

func describeModel(m *models.Model) [][]string {
	lo, hi := m.Bounds()
	triangles := 0
	for i := range m.FaceCount() {
		if f, err := m.Face(i); err == nil && len(f) == 3 {
			triangles++
		}
	}
	texture := "none"
	if tex := m.Diffuse(); tex != nil {
		texture = fmt.Sprintf("embedded %dx%d", tex.Width(), tex.Height())
	}
	return [][]string{
		{"vertices", fmt.Sprint(m.VertexCount())},
		{"faces", fmt.Sprint(m.FaceCount())},
		{"triangles", fmt.Sprint(triangles)},
		{"texcoords", fmt.Sprint(m.TexCoordCount())},
		{"normals", fmt.Sprint(m.NormalCount())},
		{"bounds", fmt.Sprintf("%v - %v", lo, hi)},
		{"size", m.Size().String()},
		{"texture", texture},
	}
}

func describeTGA(r io.Reader) ([][]string, error) {
	h, err := tga.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	origin := "bottom-left"
	if h.TopLeft() {
		origin = "top-left"
	}
	return [][]string{
		{"size", fmt.Sprintf("%dx%d", h.Width, h.Height)},
		{"bits per pixel", fmt.Sprint(h.BitsPerPixel)},
		{"data type", fmt.Sprint(h.DataTypeCode)},
		{"rle", fmt.Sprint(h.RLE())},
		{"origin", origin},
		{"image id", fmt.Sprintf("%d bytes", h.IDLength)},
	}, nil
}
