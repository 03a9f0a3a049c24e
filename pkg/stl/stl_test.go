package stl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/meshclean/pkg/geometry"
	"github.com/philipparndt/meshclean/pkg/mesh"
)

const twoTriangleASCII = `solid pair
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid pair
`

func cubeMesh() *mesh.Mesh {
	m := mesh.NewMesh("cube")
	m.Vertices = []geometry.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1},
		{X: 0, Y: 1, Z: 1},
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

func TestBinaryRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, cubeMesh()))

	decoded, err := Decode(&buf)
	require.NoError(t, err)

	// Cube coordinates are exact in float32, and the triangle soup merges
	// back into shared vertices.
	assert.Equal(t, "cube", decoded.Name)
	assert.Equal(t, 8, decoded.VertexCount())
	assert.Equal(t, 12, decoded.FaceCount())
	assert.InDelta(t, 6.0, decoded.SurfaceArea(), 1e-9)
	assert.InDelta(t, 1.0, decoded.Volume(), 1e-9)
	require.NoError(t, decoded.Validate())
}

func TestASCIIRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeASCII(&buf, cubeMesh()))

	decoded, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, "cube", decoded.Name)
	assert.Equal(t, 8, decoded.VertexCount())
	assert.Equal(t, 12, decoded.FaceCount())
	assert.InDelta(t, 1.0, decoded.Volume(), 1e-9)
}

func TestDecodeASCIIMergesVertices(t *testing.T) {
	decoded, err := Decode(strings.NewReader(twoTriangleASCII))
	require.NoError(t, err)

	assert.Equal(t, "pair", decoded.Name)
	assert.Equal(t, 4, decoded.VertexCount())
	assert.Equal(t, 2, decoded.FaceCount())
	assert.Len(t, decoded.Split(mesh.ShareEdge), 1)
}

func TestDecodeTruncatedBinary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, cubeMesh()))

	_, err := Decode(bytes.NewReader(buf.Bytes()[:100]))
	assert.Error(t, err)
}

func TestDecodeBinaryZeroTriangles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, mesh.NewMesh("empty")))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, decoded.FaceCount())
}

func TestDecodeMalformedVertex(t *testing.T) {
	malformed := strings.Replace(twoTriangleASCII, "vertex 0 0 0", "vertex 0 zero 0", 1)

	_, err := Decode(strings.NewReader(malformed))
	assert.Error(t, err)
}

func TestDecodeUnterminatedFacet(t *testing.T) {
	truncated := twoTriangleASCII[:strings.Index(twoTriangleASCII, "endfacet")]

	_, err := Decode(strings.NewReader(truncated))
	assert.Error(t, err)
}

func TestDecodeEmptyInput(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	assert.Error(t, err)
}
