package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/philipparndt/meshclean/pkg/geometry"
	"github.com/philipparndt/meshclean/pkg/mesh"
)

// Encode writes the mesh as binary STL, the format slicing pipelines expect.
// Facet normals are recomputed from the vertex winding.
func Encode(w io.Writer, m *mesh.Mesh) error {
	header := make([]byte, 80)
	copy(header, m.Name)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	for i, face := range m.Faces {
		v1 := m.Vertices[face[0]]
		v2 := m.Vertices[face[1]]
		v3 := m.Vertices[face[2]]

		record := struct {
			Normal  [3]float32
			V1      [3]float32
			V2      [3]float32
			V3      [3]float32
			AttrLen uint16
		}{
			Normal: toFloat32(geometry.TriangleNormal(v1, v2, v3)),
			V1:     toFloat32(v1),
			V2:     toFloat32(v2),
			V3:     toFloat32(v3),
		}
		if err := binary.Write(w, binary.LittleEndian, &record); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}

	return nil
}

// EncodeASCII writes the mesh as ASCII STL
func EncodeASCII(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	name := m.Name
	if name == "" {
		name = "mesh"
	}

	fmt.Fprintf(bw, "solid %s\n", name)
	for _, face := range m.Faces {
		v1 := m.Vertices[face[0]]
		v2 := m.Vertices[face[1]]
		v3 := m.Vertices[face[2]]
		n := geometry.TriangleNormal(v1, v2, v3)

		fmt.Fprintf(bw, "  facet normal %e %e %e\n", n.X, n.Y, n.Z)
		fmt.Fprintf(bw, "    outer loop\n")
		fmt.Fprintf(bw, "      vertex %e %e %e\n", v1.X, v1.Y, v1.Z)
		fmt.Fprintf(bw, "      vertex %e %e %e\n", v2.X, v2.Y, v2.Z)
		fmt.Fprintf(bw, "      vertex %e %e %e\n", v3.X, v3.Y, v3.Z)
		fmt.Fprintf(bw, "    endloop\n")
		fmt.Fprintf(bw, "  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)

	return bw.Flush()
}

func toFloat32(v geometry.Vector3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
