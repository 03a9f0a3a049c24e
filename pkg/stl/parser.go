package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/philipparndt/meshclean/pkg/geometry"
	"github.com/philipparndt/meshclean/pkg/mesh"
)

// Decode reads an STL stream and returns an indexed mesh. It automatically
// detects whether the input is ASCII or binary. STL stores a triangle soup;
// vertices with identical coordinates are merged into shared indices so the
// mesh connectivity is recoverable.
func Decode(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)

	// ASCII files start with "solid" and mention "facet" early on. Binary
	// exporters sometimes write "solid" into the 80-byte header too, so
	// the prefix alone is not enough.
	head, _ := br.Peek(512)
	if bytes.HasPrefix(head, []byte("solid")) && bytes.Contains(head, []byte("facet")) {
		return decodeASCII(br)
	}

	return decodeBinary(br)
}

// builder accumulates faces while merging identical vertex coordinates
type builder struct {
	mesh  *mesh.Mesh
	index map[geometry.Vector3]int
}

func newBuilder(name string) *builder {
	return &builder{
		mesh:  mesh.NewMesh(name),
		index: make(map[geometry.Vector3]int),
	}
}

func (b *builder) vertex(v geometry.Vector3) int {
	if i, ok := b.index[v]; ok {
		return i
	}
	i := len(b.mesh.Vertices)
	b.index[v] = i
	b.mesh.Vertices = append(b.mesh.Vertices, v)
	return i
}

func (b *builder) face(v1, v2, v3 geometry.Vector3) {
	b.mesh.Faces = append(b.mesh.Faces, [3]int{b.vertex(v1), b.vertex(v2), b.vertex(v3)})
}

// decodeASCII parses an ASCII STL stream
func decodeASCII(r io.Reader) (*mesh.Mesh, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	b := newBuilder("")
	var vertices []geometry.Vector3

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				b.mesh.Name = strings.Join(fields[1:], " ")
			}

		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("vertex line has %d fields, want 4", len(fields))
			}
			v, err := parseVector(fields[1], fields[2], fields[3])
			if err != nil {
				return nil, fmt.Errorf("invalid vertex: %w", err)
			}
			vertices = append(vertices, v)

		case "endfacet":
			if len(vertices) != 3 {
				return nil, fmt.Errorf("facet has %d vertices, want 3", len(vertices))
			}
			b.face(vertices[0], vertices[1], vertices[2])
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}
	if len(vertices) != 0 {
		return nil, fmt.Errorf("unterminated facet with %d vertices", len(vertices))
	}

	return b.mesh, nil
}

func parseVector(x, y, z string) (geometry.Vector3, error) {
	var v geometry.Vector3
	var err error
	if v.X, err = strconv.ParseFloat(x, 64); err != nil {
		return v, err
	}
	if v.Y, err = strconv.ParseFloat(y, 64); err != nil {
		return v, err
	}
	if v.Z, err = strconv.ParseFloat(z, 64); err != nil {
		return v, err
	}
	return v, nil
}

// decodeBinary parses a binary STL stream
func decodeBinary(r io.Reader) (*mesh.Mesh, error) {
	header := make([]byte, 80)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var triangleCount uint32
	if err := binary.Read(r, binary.LittleEndian, &triangleCount); err != nil {
		return nil, fmt.Errorf("failed to read triangle count: %w", err)
	}

	b := newBuilder(string(bytes.TrimRight(header, "\x00")))

	for i := uint32(0); i < triangleCount; i++ {
		// 50-byte record: normal, three vertices, attribute count. The
		// stored normal is ignored; it is recomputed when writing.
		var record struct {
			Normal  [3]float32
			V1      [3]float32
			V2      [3]float32
			V3      [3]float32
			AttrLen uint16
		}
		if err := binary.Read(r, binary.LittleEndian, &record); err != nil {
			return nil, fmt.Errorf("failed to read triangle %d of %d: %w", i, triangleCount, err)
		}

		b.face(toVector(record.V1), toVector(record.V2), toVector(record.V3))
	}

	return b.mesh, nil
}

func toVector(v [3]float32) geometry.Vector3 {
	return geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
}
