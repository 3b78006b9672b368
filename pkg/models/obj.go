package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/tinyraster/pkg/math3d"
)

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	m, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	m.Name = filepath.Base(path)

	Logger().Debug("loaded model",
		"path", path,
		"verts", m.VertexCount(),
		"faces", m.FaceCount(),
		"texcoords", m.TexCoordCount(),
		"normals", m.NormalCount(),
	)
	return m, nil
}

// ParseOBJ reads the geometry records of an OBJ stream: v, vt, vn and f.
// Face corners may be written as i, i/j, i//k or i/j/k; indices are
// 1-based, negative values count back from the latest element. Every other
// record is ignored.
func ParseOBJ(r io.Reader) (*Model, error) {
	m := &Model{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v math3d.Vec3f
			v, err = parseVec3(fields[1:])
			m.verts = append(m.verts, v)
		case "vn":
			var v math3d.Vec3f
			v, err = parseVec3(fields[1:])
			m.normals = append(m.normals, v)
		case "vt":
			var v math3d.Vec2f
			v, err = parseVec2(fields[1:])
			m.texcoords = append(m.texcoords, v)
		case "f":
			var f Face
			f, err = m.parseFace(fields[1:])
			m.faces = append(m.faces, f)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrParse, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	return m, nil
}

func parseFloats(fields []string, want int) ([]float64, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("want %d components, got %d", want, len(fields))
	}
	out := make([]float64, want)
	for i := range want {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseVec3(fields []string) (math3d.Vec3f, error) {
	f, err := parseFloats(fields, 3)
	if err != nil {
		return math3d.Vec3f{}, err
	}
	return math3d.V3(f[0], f[1], f[2]), nil
}

// parseVec2 accepts "u" or "u v"; a trailing w is ignored.
func parseVec2(fields []string) (math3d.Vec2f, error) {
	n := min(len(fields), 2)
	if n == 0 {
		return math3d.Vec2f{}, fmt.Errorf("want at least 1 component")
	}
	f, err := parseFloats(fields, n)
	if err != nil {
		return math3d.Vec2f{}, err
	}
	if n == 1 {
		return math3d.V2(f[0], 0), nil
	}
	return math3d.V2(f[0], f[1]), nil
}

func (m *Model) parseFace(fields []string) (Face, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("face without corners")
	}
	f := make(Face, len(fields))
	for i, tok := range fields {
		parts := strings.Split(tok, "/")
		if len(parts) > 3 {
			return nil, fmt.Errorf("bad corner %q", tok)
		}

		c := Corner{TexCoord: -1, Normal: -1}
		var err error
		if c.Vertex, err = resolveIndex(parts[0], len(m.verts)); err != nil {
			return nil, fmt.Errorf("corner %q: %w", tok, err)
		}
		if len(parts) > 1 && parts[1] != "" {
			if c.TexCoord, err = resolveIndex(parts[1], len(m.texcoords)); err != nil {
				return nil, fmt.Errorf("corner %q: %w", tok, err)
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if c.Normal, err = resolveIndex(parts[2], len(m.normals)); err != nil {
				return nil, fmt.Errorf("corner %q: %w", tok, err)
			}
		}
		f[i] = c
	}
	return f, nil
}

// resolveIndex turns a 1-based or negative relative index into a 0-based
// one. Range checks happen when the face is used.
func resolveIndex(s string, count int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case idx > 0:
		return idx - 1, nil
	case idx < 0:
		if count+idx < 0 {
			return 0, fmt.Errorf("relative index %d with only %d elements", idx, count)
		}
		return count + idx, nil
	}
	return 0, fmt.Errorf("index 0 is not valid")
}
