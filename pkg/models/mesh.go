// Package models loads triangle meshes (Wavefront OBJ, glTF/GLB) together
// with an optional diffuse texture.
package models

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/taigrr/tinyraster/pkg/math3d"
	"github.com/taigrr/tinyraster/pkg/tga"
)

var (
	// ErrParse is returned for malformed mesh text.
	ErrParse = errors.New("models: parse error")
	// ErrIndexOutOfBounds is returned when a face references a missing vertex,
	// texture coordinate or normal.
	ErrIndexOutOfBounds = errors.New("models: index out of bounds")
	// ErrUnsupported is returned by Load for unknown file extensions.
	ErrUnsupported = errors.New("models: unsupported model format")
)

// Corner is one face corner. Indices are zero-based; -1 marks an absent
// texture coordinate or normal.
type Corner struct {
	Vertex   int
	TexCoord int
	Normal   int
}

// Face is an ordered list of corners. The rasterizer only accepts triangles.
type Face []Corner

// Model holds mesh geometry and an optional diffuse texture. Geometry is
// fixed once loaded; only the texture binding changes.
type Model struct {
	Name string

	verts     []math3d.Vec3f
	texcoords []math3d.Vec2f
	normals   []math3d.Vec3f
	faces     []Face

	diffuse *tga.Image
}

// VertexCount returns the number of vertex positions.
func (m *Model) VertexCount() int {
	return len(m.verts)
}

// FaceCount returns the number of faces.
func (m *Model) FaceCount() int {
	return len(m.faces)
}

// TexCoordCount returns the number of texture coordinates.
func (m *Model) TexCoordCount() int {
	return len(m.texcoords)
}

// NormalCount returns the number of vertex normals.
func (m *Model) NormalCount() int {
	return len(m.normals)
}

// Vertex returns vertex position i.
func (m *Model) Vertex(i int) (math3d.Vec3f, error) {
	if i < 0 || i >= len(m.verts) {
		return math3d.Vec3f{}, fmt.Errorf("%w: vertex %d of %d", ErrIndexOutOfBounds, i, len(m.verts))
	}
	return m.verts[i], nil
}

// Face returns face i.
func (m *Model) Face(i int) (Face, error) {
	if i < 0 || i >= len(m.faces) {
		return nil, fmt.Errorf("%w: face %d of %d", ErrIndexOutOfBounds, i, len(m.faces))
	}
	return m.faces[i], nil
}

func (m *Model) corner(face, corner int) (Corner, error) {
	f, err := m.Face(face)
	if err != nil {
		return Corner{}, err
	}
	if corner < 0 || corner >= len(f) {
		return Corner{}, fmt.Errorf("%w: corner %d of face %d", ErrIndexOutOfBounds, corner, face)
	}
	return f[corner], nil
}

// NormalOf returns the vertex normal of a face corner, or the zero vector
// when the corner has none.
func (m *Model) NormalOf(face, corner int) (math3d.Vec3f, error) {
	c, err := m.corner(face, corner)
	if err != nil {
		return math3d.Vec3f{}, err
	}
	if c.Normal < 0 {
		return math3d.Vec3f{}, nil
	}
	if c.Normal >= len(m.normals) {
		return math3d.Vec3f{}, fmt.Errorf("%w: normal %d of %d", ErrIndexOutOfBounds, c.Normal, len(m.normals))
	}
	return m.normals[c.Normal], nil
}

// UVOf returns the normalized texture coordinate of a face corner, or (0,0)
// when the corner has none.
func (m *Model) UVOf(face, corner int) (math3d.Vec2f, error) {
	c, err := m.corner(face, corner)
	if err != nil {
		return math3d.Vec2f{}, err
	}
	if c.TexCoord < 0 {
		return math3d.Vec2f{}, nil
	}
	if c.TexCoord >= len(m.texcoords) {
		return math3d.Vec2f{}, fmt.Errorf("%w: texcoord %d of %d", ErrIndexOutOfBounds, c.TexCoord, len(m.texcoords))
	}
	return m.texcoords[c.TexCoord], nil
}

// TexCoordOf maps the corner's texture coordinate into the pixel space of
// the bound texture. Without a texture it returns (0,0).
func (m *Model) TexCoordOf(face, corner int) (math3d.Vec2i, error) {
	uv, err := m.UVOf(face, corner)
	if err != nil {
		return math3d.Vec2i{}, err
	}
	return m.TexelOf(uv), nil
}

// TexelOf maps a normalized coordinate into texture pixel space, clamped to
// the texture. Without a texture it returns (0,0).
func (m *Model) TexelOf(uv math3d.Vec2f) math3d.Vec2i {
	if m.diffuse == nil {
		return math3d.Vec2i{}
	}
	w, h := m.diffuse.Width(), m.diffuse.Height()
	x := int(uv.X * float64(w))
	y := int(uv.Y * float64(h))
	return math3d.V2i(max(0, min(w-1, x)), max(0, min(h-1, y)))
}

// SampleDiffuse returns the texel at uv. Without a texture, or outside it,
// it returns the zero color of the texture depth (RGB when unbound).
func (m *Model) SampleDiffuse(uv math3d.Vec2i) tga.Color {
	if m.diffuse == nil {
		return tga.ZeroColor(int(tga.RGB24))
	}
	c, ok := m.diffuse.Get(uv.X, uv.Y)
	if !ok {
		return tga.ZeroColor(m.diffuse.Bpp())
	}
	return c
}

// Diffuse returns the bound texture, or nil.
func (m *Model) Diffuse() *tga.Image {
	return m.diffuse
}

// HasTexture reports whether a diffuse texture is bound.
func (m *Model) HasTexture() bool {
	return m.diffuse != nil
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
func (m *Model) Bounds() (lo, hi math3d.Vec3f) {
	if len(m.verts) == 0 {
		return
	}
	lo, hi = m.verts[0], m.verts[0]
	for _, v := range m.verts[1:] {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

// Center returns the center of the bounding box.
func (m *Model) Center() math3d.Vec3f {
	lo, hi := m.Bounds()
	return lo.Add(hi).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Model) Size() math3d.Vec3f {
	lo, hi := m.Bounds()
	return hi.Sub(lo)
}

// Fit returns a copy centered on the origin and scaled uniformly so that
// its largest extent spans [-1,1]. Faces, texture coordinates, normals and
// the texture binding are shared with m.
func (m *Model) Fit() *Model {
	out := *m
	out.verts = make([]math3d.Vec3f, len(m.verts))

	center := m.Center()
	size := m.Size()
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	scale := 1.0
	if extent > 0 {
		scale = 2 / extent
	}
	for i, v := range m.verts {
		out.verts[i] = v.Sub(center).Scale(scale)
	}
	return &out
}

// Triangulate returns a copy in which every face with more than three
// corners is split into a fan around its first corner. Faces with fewer
// than three corners are dropped.
func (m *Model) Triangulate() *Model {
	out := *m
	out.faces = make([]Face, 0, len(m.faces))
	for _, f := range m.faces {
		if len(f) < 3 {
			continue
		}
		for i := 1; i+1 < len(f); i++ {
			out.faces = append(out.faces, Face{f[0], f[i], f[i+1]})
		}
	}
	return &out
}

// GenerateNormals fills in smooth per-vertex normals for models that carry
// none, pointing every corner at the normal of its vertex. Models that
// share data with m are left unchanged.
func (m *Model) GenerateNormals() {
	if len(m.normals) > 0 {
		return
	}
	acc := make([]math3d.Vec3f, len(m.verts))
	for _, f := range m.faces {
		if len(f) < 3 {
			continue
		}
		i0, i1, i2 := f[0].Vertex, f[1].Vertex, f[2].Vertex
		if !m.inRange(i0, i1, i2) {
			continue
		}
		// Area weighted: the cross product is not normalized yet.
		n := m.verts[i1].Sub(m.verts[i0]).Cross(m.verts[i2].Sub(m.verts[i0]))
		for _, c := range f {
			if c.Vertex >= 0 && c.Vertex < len(acc) {
				acc[c.Vertex] = acc[c.Vertex].Add(n)
			}
		}
	}

	m.normals = make([]math3d.Vec3f, len(acc))
	for i, n := range acc {
		if u, err := n.Normalize(); err == nil {
			m.normals[i] = u
		}
	}
	// Faces may be shared with copies made by Fit; rewrite fresh corners.
	faces := make([]Face, len(m.faces))
	for i, f := range m.faces {
		faces[i] = slices.Clone(f)
		for j := range faces[i] {
			faces[i][j].Normal = faces[i][j].Vertex
		}
	}
	m.faces = faces
}

func (m *Model) inRange(idx ...int) bool {
	for _, i := range idx {
		if i < 0 || i >= len(m.verts) {
			return false
		}
	}
	return true
}

// DefaultTexturePath returns the conventional diffuse texture path for a
// model file: "head.obj" maps to "head_diffuse.tga".
func DefaultTexturePath(modelPath string) string {
	ext := filepath.Ext(modelPath)
	return strings.TrimSuffix(modelPath, ext) + "_diffuse.tga"
}

// Load reads a model, choosing the loader by file extension.
func Load(path string) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".glb", ".gltf":
		return LoadGLB(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}
