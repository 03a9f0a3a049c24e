package mesh

import (
	"errors"
	"fmt"

	"github.com/philipparndt/meshclean/pkg/geometry"
)

// ErrFaceIndexRange is returned by Validate when a face references a vertex
// index outside the vertex list.
var ErrFaceIndexRange = errors.New("face references vertex out of range")

// Color is a per-vertex RGB color
type Color struct {
	R, G, B uint8
}

// Mesh represents an indexed triangle mesh. Faces hold indices into
// Vertices; Colors, when non-empty, carries one entry per vertex.
type Mesh struct {
	Name     string
	Vertices []geometry.Vector3
	Faces    [][3]int
	Colors   []Color
}

// NewMesh creates an empty mesh
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// VertexCount returns the number of vertices in the mesh
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces in the mesh
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// HasColors reports whether the mesh carries per-vertex colors
func (m *Mesh) HasColors() bool {
	return len(m.Colors) > 0
}

// Validate checks the structural invariants of the mesh: every face index
// must resolve to a vertex, and the color list, when present, must match the
// vertex list in length.
func (m *Mesh) Validate() error {
	if len(m.Colors) > 0 && len(m.Colors) != len(m.Vertices) {
		return fmt.Errorf("mesh has %d colors for %d vertices", len(m.Colors), len(m.Vertices))
	}
	for i, face := range m.Faces {
		for _, v := range face {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("face %d: index %d: %w", i, v, ErrFaceIndexRange)
			}
		}
	}
	return nil
}

// BoundingBox calculates the bounding box of the entire mesh
func (m *Mesh) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, v := range m.Vertices {
		bbox.Extend(v)
	}
	return bbox
}

// SurfaceArea calculates the total surface area of the mesh
func (m *Mesh) SurfaceArea() float64 {
	total := 0.0
	for _, face := range m.Faces {
		total += geometry.TriangleArea(m.Vertices[face[0]], m.Vertices[face[1]], m.Vertices[face[2]])
	}
	return total
}

// Volume calculates the signed volume enclosed by the mesh by summing the
// tetrahedron contribution of each face against the origin. The result is
// exact for closed meshes with consistent outward winding; open or
// inconsistently wound meshes yield an approximation that may be zero or
// negative. No winding repair is attempted.
func (m *Mesh) Volume() float64 {
	total := 0.0
	for _, face := range m.Faces {
		total += geometry.SignedVolume(m.Vertices[face[0]], m.Vertices[face[1]], m.Vertices[face[2]])
	}
	return total
}

// EdgeStats summarizes how the mesh faces share edges
type EdgeStats struct {
	Total      int // distinct edges
	Boundary   int // edges with exactly one incident face
	Manifold   int // edges with exactly two incident faces
	OverShared int // edges with more than two incident faces
}

// Watertight reports whether every edge is shared by exactly two faces
func (s EdgeStats) Watertight() bool {
	return s.Total > 0 && s.Boundary == 0 && s.OverShared == 0
}

// EdgeStats counts how often each edge of the mesh is used by a face
func (m *Mesh) EdgeStats() EdgeStats {
	counts := make(map[edge]int, len(m.Faces)*3/2)
	for _, face := range m.Faces {
		for i := 0; i < 3; i++ {
			counts[edgeKey(face[i], face[(i+1)%3])]++
		}
	}

	stats := EdgeStats{Total: len(counts)}
	for _, n := range counts {
		switch {
		case n == 1:
			stats.Boundary++
		case n == 2:
			stats.Manifold++
		default:
			stats.OverShared++
		}
	}
	return stats
}
