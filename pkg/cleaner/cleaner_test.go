package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/meshclean/pkg/geometry"
	"github.com/philipparndt/meshclean/pkg/mesh"
)

// unitCube builds a closed unit cube with outward winding: area 6, volume 1.
func unitCube(offset geometry.Vector3) *mesh.Mesh {
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

	m := mesh.NewMesh("cube")
	for _, c := range corners {
		m.Vertices = append(m.Vertices, c.Add(offset))
	}
	m.Faces = [][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{2, 3, 7}, {2, 7, 6},
		{0, 7, 3}, {0, 4, 7},
		{1, 2, 6}, {1, 6, 5},
	}
	return m
}

// thinSliver builds a closed, nearly flat tetrahedron whose area/volume
// ratio is a couple of orders of magnitude above the cube's.
func thinSliver(offset geometry.Vector3) *mesh.Mesh {
	m := mesh.NewMesh("sliver")
	m.Vertices = []geometry.Vector3{
		offset,
		offset.Add(geometry.NewVector3(1, 0, 0)),
		offset.Add(geometry.NewVector3(0, 1, 0)),
		offset.Add(geometry.NewVector3(1.0/3.0, 1.0/3.0, 0.01)),
	}
	m.Faces = [][3]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}}
	return m
}

// flatTriangle builds a single open triangle with zero enclosed volume
func flatTriangle(offset geometry.Vector3) *mesh.Mesh {
	m := mesh.NewMesh("flat")
	m.Vertices = []geometry.Vector3{
		offset,
		offset.Add(geometry.NewVector3(1, 0, 0)),
		offset.Add(geometry.NewVector3(0, 1, 0)),
	}
	m.Faces = [][3]int{{0, 1, 2}}
	return m
}

// merged concatenates two meshes without connecting them
func merged(a, b *mesh.Mesh) *mesh.Mesh {
	m := mesh.NewMesh(a.Name)
	m.Vertices = append(m.Vertices, a.Vertices...)
	m.Vertices = append(m.Vertices, b.Vertices...)
	m.Faces = append(m.Faces, a.Faces...)

	offset := len(a.Vertices)
	for _, face := range b.Faces {
		m.Faces = append(m.Faces, [3]int{face[0] + offset, face[1] + offset, face[2] + offset})
	}
	return m
}

func TestCleanRatioKeepsTheBulkyComponent(t *testing.T) {
	// The sliver comes first so ratio and first disagree.
	m := merged(thinSliver(geometry.Vector3{}), unitCube(geometry.NewVector3(5, 0, 0)))

	result, err := Clean(m, WithMethod(Ratio))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ComponentCount)
	assert.Equal(t, 1, result.ChosenIndex)
	assert.False(t, result.FellBack)
	assert.InDelta(t, 1.0, result.Kept.Volume(), 1e-9)

	require.Len(t, result.Scores, 2)
	assert.Greater(t, result.Scores[0].Ratio(), 100.0)
	assert.InDelta(t, 6.0, result.Scores[1].Ratio(), 1e-9)
}

func TestCleanFirstKeepsDiscoveryOrder(t *testing.T) {
	sliver := thinSliver(geometry.Vector3{})
	cube := unitCube(geometry.NewVector3(5, 0, 0))

	result, err := Clean(merged(sliver, cube), WithMethod(First))
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChosenIndex)
	assert.InDelta(t, sliver.Volume(), result.Kept.Volume(), 1e-12)
	assert.Nil(t, result.Scores)

	result, err = Clean(merged(cube, sliver), WithMethod(First))
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChosenIndex)
	assert.InDelta(t, 1.0, result.Kept.Volume(), 1e-9)
}

func TestCleanSingleComponentPassthrough(t *testing.T) {
	for _, method := range []Method{First, Ratio} {
		m := unitCube(geometry.Vector3{})

		result, err := Clean(m, WithMethod(method))
		require.NoError(t, err, "method %s", method)

		assert.Equal(t, 1, result.ComponentCount, "method %s", method)
		assert.Equal(t, 0, result.ChosenIndex, "method %s", method)
		assert.Same(t, m, result.Kept, "method %s", method)
	}
}

func TestCleanEmptyMesh(t *testing.T) {
	result, err := Clean(mesh.NewMesh("empty"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrEmptyMesh)
}

func TestCleanRatioFallsBackToFirst(t *testing.T) {
	// Two open triangles, both without a usable volume.
	m := merged(flatTriangle(geometry.Vector3{}), flatTriangle(geometry.NewVector3(5, 0, 0)))

	result, err := Clean(m, WithMethod(Ratio))
	require.NoError(t, err)

	assert.True(t, result.FellBack)
	assert.Equal(t, 0, result.ChosenIndex)

	viaFirst, err := Clean(m, WithMethod(First))
	require.NoError(t, err)
	assert.Equal(t, viaFirst.ChosenIndex, result.ChosenIndex)
}

func TestCleanRatioExcludesInwardWinding(t *testing.T) {
	inward := unitCube(geometry.Vector3{})
	for i, face := range inward.Faces {
		inward.Faces[i] = [3]int{face[0], face[2], face[1]}
	}

	m := merged(inward, unitCube(geometry.NewVector3(5, 0, 0)))

	result, err := Clean(m, WithMethod(Ratio))
	require.NoError(t, err)

	// The inward cube reports volume -1 and cannot be compared.
	assert.Equal(t, 1, result.ChosenIndex)
	assert.False(t, result.FellBack)
}

func TestCleanAdjacencyOption(t *testing.T) {
	m := mesh.NewMesh("touching")
	m.Vertices = []geometry.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: -1, Y: 0, Z: 0},
		{X: 0, Y: -1, Z: 0},
	}
	m.Faces = [][3]int{{0, 1, 2}, {0, 3, 4}}

	result, err := Clean(m)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ComponentCount)

	result, err = Clean(m, WithAdjacency(mesh.ShareVertex))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ComponentCount)
	assert.Same(t, m, result.Kept)
}

func TestCleanUnknownMethod(t *testing.T) {
	result, err := Clean(unitCube(geometry.Vector3{}), WithMethod(Method(42)))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
