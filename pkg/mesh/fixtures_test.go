package mesh

import (
	"github.com/philipparndt/meshclean/pkg/geometry"
)

// unitCube builds a closed unit cube with outward winding at the given
// offset: surface area 6, volume 1 and an area/volume ratio of 6.
func unitCube(offset geometry.Vector3) *Mesh {
	corners := []geometry.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1},
		{X: 0, Y: 1, Z: 1},
	}

	m := NewMesh("cube")
	for _, c := range corners {
		m.Vertices = append(m.Vertices, c.Add(offset))
	}
	m.Faces = [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4}, // front
		{2, 3, 7}, {2, 7, 6}, // back
		{0, 7, 3}, {0, 4, 7}, // left
		{1, 2, 6}, {1, 6, 5}, // right
	}
	return m
}

// thinSliver builds a closed, nearly flat tetrahedron at the given offset.
// Its volume is 0.01/6 against a surface area of roughly 1, putting its
// area/volume ratio far above the cube's.
func thinSliver(offset geometry.Vector3) *Mesh {
	m := NewMesh("sliver")
	m.Vertices = []geometry.Vector3{
		offset,
		offset.Add(geometry.NewVector3(1, 0, 0)),
		offset.Add(geometry.NewVector3(0, 1, 0)),
		offset.Add(geometry.NewVector3(1.0/3.0, 1.0/3.0, 0.01)),
	}
	m.Faces = [][3]int{
		{0, 2, 1},
		{0, 1, 3},
		{1, 2, 3},
		{2, 0, 3},
	}
	return m
}

// merged concatenates two meshes into one without connecting them
func merged(a, b *Mesh) *Mesh {
	m := NewMesh(a.Name)
	m.Vertices = append(m.Vertices, a.Vertices...)
	m.Vertices = append(m.Vertices, b.Vertices...)
	m.Faces = append(m.Faces, a.Faces...)

	offset := len(a.Vertices)
	for _, face := range b.Faces {
		m.Faces = append(m.Faces, [3]int{face[0] + offset, face[1] + offset, face[2] + offset})
	}
	return m
}
