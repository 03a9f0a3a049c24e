package mesh

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrUnknownAdjacency is returned by ParseAdjacency for unrecognized names.
var ErrUnknownAdjacency = errors.New("unknown adjacency rule")

// Adjacency selects the relation under which two faces count as connected.
type Adjacency int

const (
	// ShareEdge connects faces that share an unordered vertex index pair.
	// This is the default rule for separating watertight components.
	ShareEdge Adjacency = iota
	// ShareVertex connects faces that share at least one vertex. It merges
	// components that touch at a single point and must not be the default.
	ShareVertex
)

// ParseAdjacency converts an adjacency name ("edge" or "vertex") to its enum value
func ParseAdjacency(name string) (Adjacency, error) {
	switch name {
	case "edge":
		return ShareEdge, nil
	case "vertex":
		return ShareVertex, nil
	default:
		return ShareEdge, fmt.Errorf("%w: %q", ErrUnknownAdjacency, name)
	}
}

func (a Adjacency) String() string {
	switch a {
	case ShareVertex:
		return "vertex"
	default:
		return "edge"
	}
}

// edge is an unordered pair of vertex indices
type edge struct {
	a, b int
}

func edgeKey(u, v int) edge {
	if u < v {
		return edge{u, v}
	}
	return edge{v, u}
}

// Component is a standalone sub-mesh produced by Split. SourceFaces holds
// the face indices of the parent mesh it was built from.
type Component struct {
	*Mesh
	SourceFaces *roaring.Bitmap
}

// Split partitions the mesh faces into maximal connected groups under the
// given adjacency rule and materializes each group as a standalone sub-mesh.
// Components are ordered by the lowest original face index they contain, so
// two runs over the same mesh produce identical results. A mesh with zero
// faces yields nil; edges shared by more than two faces still connect all
// their faces.
func (m *Mesh) Split(adj Adjacency) []*Component {
	if len(m.Faces) == 0 {
		return nil
	}

	uf := newUnionFind(len(m.Faces))

	// Union each face with the first face that used the same edge (or
	// vertex). Transitivity makes one union per key sufficient, even on
	// non-manifold edges.
	switch adj {
	case ShareVertex:
		firstByVertex := make(map[int]int, len(m.Vertices))
		for i, face := range m.Faces {
			for _, v := range face {
				if first, ok := firstByVertex[v]; ok {
					uf.union(first, i)
				} else {
					firstByVertex[v] = i
				}
			}
		}
	default:
		firstByEdge := make(map[edge]int, len(m.Faces)*3/2)
		for i, face := range m.Faces {
			for c := 0; c < 3; c++ {
				key := edgeKey(face[c], face[(c+1)%3])
				if first, ok := firstByEdge[key]; ok {
					uf.union(first, i)
				} else {
					firstByEdge[key] = i
				}
			}
		}
	}

	// Scanning faces in index order numbers the components by first
	// appearance, which fixes the discovery order.
	groupOf := make(map[int]int)
	var groups [][]int
	for i := range m.Faces {
		root := uf.find(i)
		gi, ok := groupOf[root]
		if !ok {
			gi = len(groups)
			groupOf[root] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], i)
	}

	components := make([]*Component, len(groups))
	for gi, faces := range groups {
		components[gi] = m.extract(faces)
	}
	return components
}

// extract builds the sub-mesh holding the given faces. Vertices are
// re-indexed in first-use order; coordinates and colors are carried over
// unchanged.
func (m *Mesh) extract(faces []int) *Component {
	sub := NewMesh(m.Name)
	source := roaring.New()
	remap := make(map[int]int)

	for _, fi := range faces {
		var face [3]int
		for c, v := range m.Faces[fi] {
			nv, ok := remap[v]
			if !ok {
				nv = len(sub.Vertices)
				remap[v] = nv
				sub.Vertices = append(sub.Vertices, m.Vertices[v])
				if len(m.Colors) > 0 {
					sub.Colors = append(sub.Colors, m.Colors[v])
				}
			}
			face[c] = nv
		}
		sub.Faces = append(sub.Faces, face)
		source.Add(uint32(fi))
	}

	return &Component{Mesh: sub, SourceFaces: source}
}

// VerifyPartition reports whether the components cover every face of the
// mesh exactly once: no face missing, none duplicated, none out of range.
func VerifyPartition(m *Mesh, components []*Component) bool {
	union := roaring.New()
	var total uint64
	for _, c := range components {
		total += c.SourceFaces.GetCardinality()
		union.Or(c.SourceFaces)
	}
	if total != union.GetCardinality() {
		return false
	}
	if union.GetCardinality() != uint64(len(m.Faces)) {
		return false
	}
	return union.IsEmpty() || union.Maximum() == uint32(len(m.Faces)-1)
}

// unionFind is a disjoint-set forest over face indices with path compression
// and union by rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
