package obj

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/philipparndt/meshclean/pkg/geometry"
	"github.com/philipparndt/meshclean/pkg/mesh"
)

// Decode reads a Wavefront OBJ stream. Only geometry is carried: v records
// become vertices, f records become fan-triangulated faces. Face indices may
// be 1-based or negative (counting back from the last vertex defined so
// far); texture and normal references in f entries are ignored.
func Decode(r io.Reader) (*mesh.Mesh, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	m := mesh.NewMesh("")
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex has %d coordinates, want 3", lineNo, len(fields)-1)
			}
			var v geometry.Vector3
			var err error
			if v.X, err = strconv.ParseFloat(fields[1], 64); err == nil {
				if v.Y, err = strconv.ParseFloat(fields[2], 64); err == nil {
					v.Z, err = strconv.ParseFloat(fields[3], 64)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid vertex: %w", lineNo, err)
			}
			m.Vertices = append(m.Vertices, v)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face has %d vertices, want at least 3", lineNo, len(fields)-1)
			}
			indices := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := parseIndex(ref, len(m.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				indices = append(indices, idx)
			}
			for k := 1; k < len(indices)-1; k++ {
				m.Faces = append(m.Faces, [3]int{indices[0], indices[k], indices[k+1]})
			}

		case "o", "g":
			if m.Name == "" && len(fields) > 1 {
				m.Name = fields[1]
			}

		default:
			// vn, vt, s, usemtl, mtllib and friends carry no geometry
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// parseIndex resolves one f-record vertex reference. OBJ counts from 1;
// negative values count back from the number of vertices seen so far.
func parseIndex(ref string, vertexCount int) (int, error) {
	s := ref
	if k := strings.IndexByte(s, '/'); k >= 0 {
		s = s[:k]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid face index %q", ref)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return vertexCount + n, nil
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}
}

// Encode writes the mesh as OBJ
func Encode(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, face := range m.Faces {
		fmt.Fprintf(bw, "f %d %d %d\n", face[0]+1, face[1]+1, face[2]+1)
	}

	return bw.Flush()
}
