package models

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/tinyraster/pkg/math3d"
)

// GLTFLoader loads glTF/GLB files into a Model.
type GLTFLoader struct {
	// GenerateNormals computes smooth normals when the file has none.
	GenerateNormals bool
	// Textures binds the first decodable image found in the document.
	Textures bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		GenerateNormals: true,
		Textures:        true,
	}
}

// LoadGLB loads a binary (.glb) or JSON (.gltf) glTF file.
func LoadGLB(path string) (*Model, error) {
	return NewGLTFLoader().Load(path)
}

// Load reads every triangle primitive of every mesh in the document.
// Node transforms are not applied.
func (l *GLTFLoader) Load(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	m := &Model{Name: filepath.Base(path)}
	for _, mesh := range doc.Meshes {
		if err := l.processMesh(doc, mesh, m); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", mesh.Name, err)
		}
	}

	if l.GenerateNormals {
		m.GenerateNormals()
	}
	if l.Textures {
		l.bindEmbeddedTexture(doc, m)
	}

	Logger().Debug("loaded model",
		"path", path,
		"verts", m.VertexCount(),
		"faces", m.FaceCount(),
		"texture", m.HasTexture(),
	)
	return m, nil
}

func (l *GLTFLoader) processMesh(doc *gltf.Document, mesh *gltf.Mesh, m *Model) error {
	for _, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Lines and points have no area to fill.
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3f
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Accessor(doc, idx); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2f
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Accessor(doc, idx); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		baseVert := len(m.verts)
		baseNorm := len(m.normals)
		baseUV := len(m.texcoords)

		m.verts = append(m.verts, positions...)
		m.normals = append(m.normals, normals...)
		for _, uv := range uvs {
			// glTF puts v=0 at the top of the image.
			m.texcoords = append(m.texcoords, math3d.V2(uv.X, 1-uv.Y))
		}

		corner := func(i int) Corner {
			c := Corner{Vertex: baseVert + i, TexCoord: -1, Normal: -1}
			if i < len(uvs) {
				c.TexCoord = baseUV + i
			}
			if i < len(normals) {
				c.Normal = baseNorm + i
			}
			return c
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// glTF front faces wind counter-clockwise, as OBJ does.
		for i := 0; i+2 < len(indices); i += 3 {
			m.faces = append(m.faces, Face{
				corner(indices[i]),
				corner(indices[i+1]),
				corner(indices[i+2]),
			})
		}
	}
	return nil
}

func (l *GLTFLoader) bindEmbeddedTexture(doc *gltf.Document, m *Model) {
	for i, img := range doc.Images {
		data, err := imageBytes(doc, img)
		if err != nil {
			Logger().Debug("skipping gltf image", "index", i, "error", err)
			continue
		}
		tex, err := DecodeImage(data)
		if err != nil {
			Logger().Warn("texture not bound", "model", m.Name, "image", i, "error", err)
			continue
		}
		m.BindTextureImage(tex)
		return
	}
}

func imageBytes(doc *gltf.Document, img *gltf.Image) ([]byte, error) {
	if img.BufferView == nil {
		return nil, fmt.Errorf("image %q is not embedded", img.URI)
	}
	bv := doc.BufferViews[*img.BufferView]
	buf := doc.Buffers[bv.Buffer]
	end := bv.ByteOffset + bv.ByteLength
	if end > len(buf.Data) {
		return nil, fmt.Errorf("buffer view exceeds buffer (%d > %d)", end, len(buf.Data))
	}
	return buf.Data[bv.ByteOffset:end], nil
}

func readVec3Accessor(doc *gltf.Document, idx int) ([]math3d.Vec3f, error) {
	floats, err := readFloatAccessor(doc, idx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3f, len(floats)/3)
	for i := range out {
		out[i] = math3d.V3(floats[3*i], floats[3*i+1], floats[3*i+2])
	}
	return out, nil
}

func readVec2Accessor(doc *gltf.Document, idx int) ([]math3d.Vec2f, error) {
	floats, err := readFloatAccessor(doc, idx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2f, len(floats)/2)
	for i := range out {
		out[i] = math3d.V2(floats[2*i], floats[2*i+1])
	}
	return out, nil
}

// accessorBytes returns the buffer holding an accessor, its first byte and
// the distance between elements.
func accessorBytes(doc *gltf.Document, idx int, elemSize int) (*gltf.Accessor, []byte, int, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, nil, 0, 0, fmt.Errorf("accessor %d of %d", idx, len(doc.Accessors))
	}
	acc := doc.Accessors[idx]
	if acc.BufferView == nil {
		return nil, nil, 0, 0, fmt.Errorf("accessor %d has no buffer view", idx)
	}
	bv := doc.BufferViews[*acc.BufferView]
	data := doc.Buffers[bv.Buffer].Data
	if data == nil {
		return nil, nil, 0, 0, fmt.Errorf("buffer %d has no data", bv.Buffer)
	}

	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && start+(acc.Count-1)*stride+elemSize > len(data) {
		return nil, nil, 0, 0, fmt.Errorf("accessor %d exceeds buffer", idx)
	}
	return acc, data, start, stride, nil
}

func readFloatAccessor(doc *gltf.Document, idx int, typ gltf.AccessorType, n int) ([]float64, error) {
	acc, data, start, stride, err := accessorBytes(doc, idx, 4*n)
	if err != nil {
		return nil, err
	}
	if acc.Type != typ || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("accessor %d: want float %v, got %v %v", idx, typ, acc.ComponentType, acc.Type)
	}

	out := make([]float64, acc.Count*n)
	for i := range acc.Count {
		off := start + i*stride
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[off+4*j:])
			out[i*n+j] = float64(math.Float32frombits(bits))
		}
	}
	return out, nil
}

func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d of %d", idx, len(doc.Accessors))
	}
	size := 0
	switch doc.Accessors[idx].ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type %v", doc.Accessors[idx].ComponentType)
	}

	acc, data, start, stride, err := accessorBytes(doc, idx, size)
	if err != nil {
		return nil, err
	}
	out := make([]int, acc.Count)
	for i := range acc.Count {
		off := start + i*stride
		switch size {
		case 1:
			out[i] = int(data[off])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(data[off:]))
		case 4:
			out[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return out, nil
}
