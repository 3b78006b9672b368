package models

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/tinyraster/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.GenerateNormals {
		t.Error("GenerateNormals should default to true")
	}
	if !loader.Textures {
		t.Error("Textures should default to true")
	}
}

// writeTriangleGLB stores one indexed triangle with texture coordinates and
// an embedded 2x2 PNG.
func writeTriangleGLB(t *testing.T) string {
	t.Helper()

	var data []byte
	putFloats := func(fs ...float32) {
		for _, f := range fs {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
		}
	}
	putFloats(0, 0, 0, 1, 0, 0, 0, 1, 0) // positions, 36 bytes
	putFloats(0, 0, 1, 0, 0, 1)          // uvs, 24 bytes
	for _, i := range []uint16{0, 1, 2, 0} {
		data = binary.LittleEndian.AppendUint16(data, i) // indices, 6 bytes + pad
	}

	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	tex.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, tex); err != nil {
		t.Fatal(err)
	}
	pngOffset := len(data)
	data = append(data, pngBuf.Bytes()...)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	doc := &gltf.Document{
		Asset:   gltf.Asset{Version: "2.0", Generator: "tinyraster test"},
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 24},
			{Buffer: 0, ByteOffset: 60, ByteLength: 6},
			{Buffer: 0, ByteOffset: pngOffset, ByteLength: pngBuf.Len()},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec2},
			{BufferView: gltf.Index(2), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
		Images: []*gltf.Image{{MimeType: "image/png", BufferView: gltf.Index(3)}},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0, gltf.TEXCOORD_0: 1},
				Indices:    gltf.Index(2),
				Mode:       gltf.PrimitiveTriangles,
			}},
		}},
	}

	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGLB(t *testing.T) {
	m, err := Load(writeTriangleGLB(t))
	if err != nil {
		t.Fatal(err)
	}

	if m.VertexCount() != 3 || m.FaceCount() != 1 || m.TexCoordCount() != 3 {
		t.Fatalf("counts = v%d f%d vt%d", m.VertexCount(), m.FaceCount(), m.TexCoordCount())
	}
	if v, _ := m.Vertex(1); v != math3d.V3(1, 0, 0) {
		t.Errorf("Vertex(1) = %v", v)
	}

	// v is flipped to a bottom-left origin.
	if uv, _ := m.UVOf(0, 2); uv != math3d.V2(0, 0) {
		t.Errorf("UVOf(0,2) = %v, want (0, 0)", uv)
	}

	// Winding is kept, so the generated normal faces +z.
	if n, _ := m.NormalOf(0, 0); n != math3d.V3(0, 0, 1) {
		t.Errorf("generated normal = %v", n)
	}

	if !m.HasTexture() {
		t.Fatal("embedded texture not bound")
	}
	// Top-left red texel of the PNG ends up in the top row.
	if c, _ := m.Diffuse().Get(0, 1); c.R() != 255 {
		t.Errorf("texel(0,1) = %v", c)
	}
}

func TestLoadGLBWithoutTextures(t *testing.T) {
	loader := NewGLTFLoader()
	loader.Textures = false
	loader.GenerateNormals = false

	m, err := loader.Load(writeTriangleGLB(t))
	if err != nil {
		t.Fatal(err)
	}
	if m.HasTexture() || m.NormalCount() != 0 {
		t.Errorf("texture=%v normals=%d, want none", m.HasTexture(), m.NormalCount())
	}
}
