package ply

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/philipparndt/meshclean/pkg/mesh"
)

// Encode writes the mesh as binary little-endian PLY. Vertex positions are
// written as doubles so coordinates survive unchanged; color properties are
// emitted only when the mesh carries colors.
func Encode(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	if err := writeHeader(bw, m, "binary_little_endian"); err != nil {
		return err
	}

	for i, v := range m.Vertices {
		if err := binary.Write(bw, binary.LittleEndian, [3]float64{v.X, v.Y, v.Z}); err != nil {
			return fmt.Errorf("failed to write vertex %d: %w", i, err)
		}
		if m.HasColors() {
			c := m.Colors[i]
			if err := binary.Write(bw, binary.LittleEndian, [3]uint8{c.R, c.G, c.B}); err != nil {
				return fmt.Errorf("failed to write color %d: %w", i, err)
			}
		}
	}

	for i, face := range m.Faces {
		if err := binary.Write(bw, binary.LittleEndian, uint8(3)); err != nil {
			return fmt.Errorf("failed to write face %d: %w", i, err)
		}
		idx := [3]int32{int32(face[0]), int32(face[1]), int32(face[2])}
		if err := binary.Write(bw, binary.LittleEndian, idx); err != nil {
			return fmt.Errorf("failed to write face %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// EncodeASCII writes the mesh as ASCII PLY
func EncodeASCII(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	if err := writeHeader(bw, m, "ascii"); err != nil {
		return err
	}

	for i, v := range m.Vertices {
		if m.HasColors() {
			c := m.Colors[i]
			fmt.Fprintf(bw, "%g %g %g %d %d %d\n", v.X, v.Y, v.Z, c.R, c.G, c.B)
		} else {
			fmt.Fprintf(bw, "%g %g %g\n", v.X, v.Y, v.Z)
		}
	}

	for _, face := range m.Faces {
		fmt.Fprintf(bw, "3 %d %d %d\n", face[0], face[1], face[2])
	}

	return bw.Flush()
}

func writeHeader(bw *bufio.Writer, m *mesh.Mesh, format string) error {
	fmt.Fprintf(bw, "ply\n")
	fmt.Fprintf(bw, "format %s 1.0\n", format)
	if m.Name != "" {
		fmt.Fprintf(bw, "comment %s\n", m.Name)
	}
	fmt.Fprintf(bw, "element vertex %d\n", len(m.Vertices))
	fmt.Fprintf(bw, "property double x\n")
	fmt.Fprintf(bw, "property double y\n")
	fmt.Fprintf(bw, "property double z\n")
	if m.HasColors() {
		fmt.Fprintf(bw, "property uchar red\n")
		fmt.Fprintf(bw, "property uchar green\n")
		fmt.Fprintf(bw, "property uchar blue\n")
	}
	fmt.Fprintf(bw, "element face %d\n", len(m.Faces))
	fmt.Fprintf(bw, "property list uchar int vertex_indices\n")

	if _, err := fmt.Fprintf(bw, "end_header\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}
