package ply

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/philipparndt/meshclean/pkg/geometry"
	"github.com/philipparndt/meshclean/pkg/mesh"
)

type plyFormat int

const (
	formatASCII plyFormat = iota
	formatBinaryLE
)

// scalarType enumerates the PLY property types
type scalarType int

const (
	typeInt8 scalarType = iota
	typeUint8
	typeInt16
	typeUint16
	typeInt32
	typeUint32
	typeFloat32
	typeFloat64
)

var scalarTypes = map[string]scalarType{
	"char": typeInt8, "int8": typeInt8,
	"uchar": typeUint8, "uint8": typeUint8,
	"short": typeInt16, "int16": typeInt16,
	"ushort": typeUint16, "uint16": typeUint16,
	"int": typeInt32, "int32": typeInt32,
	"uint": typeUint32, "uint32": typeUint32,
	"float": typeFloat32, "float32": typeFloat32,
	"double": typeFloat64, "float64": typeFloat64,
}

type property struct {
	name      string
	typ       scalarType
	isList    bool
	countType scalarType
}

type element struct {
	name  string
	count int
	props []property
}

type header struct {
	format   plyFormat
	elements []element
}

// Decode reads a PLY stream and returns an indexed mesh. ASCII and binary
// little-endian files are supported; vertex positions may be float or
// double, optional red/green/blue uchar properties become per-vertex colors,
// and polygon faces are fan-triangulated. Properties the mesh model does not
// carry are skipped.
func Decode(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)

	hdr, err := parseHeader(br)
	if err != nil {
		return nil, err
	}

	var b body
	switch hdr.format {
	case formatASCII:
		scanner := bufio.NewScanner(br)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		scanner.Split(bufio.ScanWords)
		b = &asciiBody{scanner: scanner}
	default:
		b = &binaryBody{r: br}
	}

	m := mesh.NewMesh("")
	for _, elem := range hdr.elements {
		switch elem.name {
		case "vertex":
			err = readVertices(b, elem, m)
		case "face":
			err = readFaces(b, elem, m)
		default:
			err = skipElement(b, elem)
		}
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", elem.name, err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseHeader(br *bufio.Reader) (*header, error) {
	magic, err := readHeaderLine(br)
	if err != nil {
		return nil, err
	}
	if magic != "ply" {
		return nil, fmt.Errorf("not a PLY file: first line %q", magic)
	}

	hdr := &header{}
	seenFormat := false

	for {
		line, err := readHeaderLine(br)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "comment", "obj_info":
			// ignored

		case "format":
			if len(fields) != 3 {
				return nil, fmt.Errorf("malformed format line %q", line)
			}
			switch fields[1] {
			case "ascii":
				hdr.format = formatASCII
			case "binary_little_endian":
				hdr.format = formatBinaryLE
			default:
				return nil, fmt.Errorf("unsupported PLY format %q", fields[1])
			}
			seenFormat = true

		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("malformed element line %q", line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count %q", fields[2])
			}
			hdr.elements = append(hdr.elements, element{name: fields[1], count: count})

		case "property":
			if len(hdr.elements) == 0 {
				return nil, fmt.Errorf("property before any element")
			}
			prop, err := parseProperty(fields)
			if err != nil {
				return nil, err
			}
			last := len(hdr.elements) - 1
			hdr.elements[last].props = append(hdr.elements[last].props, prop)

		case "end_header":
			if !seenFormat {
				return nil, fmt.Errorf("missing format line")
			}
			return hdr, nil

		default:
			return nil, fmt.Errorf("unrecognized header line %q", line)
		}
	}
}

func parseProperty(fields []string) (property, error) {
	if len(fields) >= 2 && fields[1] == "list" {
		if len(fields) != 5 {
			return property{}, fmt.Errorf("malformed list property %v", fields)
		}
		countType, ok := scalarTypes[fields[2]]
		if !ok {
			return property{}, fmt.Errorf("unknown property type %q", fields[2])
		}
		typ, ok := scalarTypes[fields[3]]
		if !ok {
			return property{}, fmt.Errorf("unknown property type %q", fields[3])
		}
		return property{name: fields[4], typ: typ, isList: true, countType: countType}, nil
	}

	if len(fields) != 3 {
		return property{}, fmt.Errorf("malformed property %v", fields)
	}
	typ, ok := scalarTypes[fields[1]]
	if !ok {
		return property{}, fmt.Errorf("unknown property type %q", fields[1])
	}
	return property{name: fields[2], typ: typ}, nil
}

func readHeaderLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("unterminated header: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// body reads one scalar value at a time from the data section
type body interface {
	scalar(t scalarType) (float64, error)
}

type asciiBody struct {
	scanner *bufio.Scanner
}

func (b *asciiBody) scalar(_ scalarType) (float64, error) {
	if !b.scanner.Scan() {
		if err := b.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(b.scanner.Text(), 64)
}

type binaryBody struct {
	r io.Reader
}

func (b *binaryBody) scalar(t scalarType) (float64, error) {
	switch t {
	case typeInt8:
		var v int8
		err := binary.Read(b.r, binary.LittleEndian, &v)
		return float64(v), err
	case typeUint8:
		var v uint8
		err := binary.Read(b.r, binary.LittleEndian, &v)
		return float64(v), err
	case typeInt16:
		var v int16
		err := binary.Read(b.r, binary.LittleEndian, &v)
		return float64(v), err
	case typeUint16:
		var v uint16
		err := binary.Read(b.r, binary.LittleEndian, &v)
		return float64(v), err
	case typeInt32:
		var v int32
		err := binary.Read(b.r, binary.LittleEndian, &v)
		return float64(v), err
	case typeUint32:
		var v uint32
		err := binary.Read(b.r, binary.LittleEndian, &v)
		return float64(v), err
	case typeFloat32:
		var v float32
		err := binary.Read(b.r, binary.LittleEndian, &v)
		return float64(v), err
	default:
		var v float64
		err := binary.Read(b.r, binary.LittleEndian, &v)
		return v, err
	}
}

func readVertices(b body, elem element, m *mesh.Mesh) error {
	hasColor := hasProp(elem, "red") && hasProp(elem, "green") && hasProp(elem, "blue")

	for i := 0; i < elem.count; i++ {
		var v geometry.Vector3
		var c mesh.Color

		for _, p := range elem.props {
			if p.isList {
				if err := skipList(b, p); err != nil {
					return err
				}
				continue
			}
			val, err := b.scalar(p.typ)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", i, err)
			}
			switch p.name {
			case "x":
				v.X = val
			case "y":
				v.Y = val
			case "z":
				v.Z = val
			case "red":
				c.R = uint8(val)
			case "green":
				c.G = uint8(val)
			case "blue":
				c.B = uint8(val)
			}
		}

		m.Vertices = append(m.Vertices, v)
		if hasColor {
			m.Colors = append(m.Colors, c)
		}
	}
	return nil
}

func readFaces(b body, elem element, m *mesh.Mesh) error {
	for i := 0; i < elem.count; i++ {
		for _, p := range elem.props {
			if !p.isList {
				if _, err := b.scalar(p.typ); err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}
			if p.name != "vertex_indices" && p.name != "vertex_index" {
				if err := skipList(b, p); err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}

			n, err := b.scalar(p.countType)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			count := int(n)
			if count < 3 {
				return fmt.Errorf("face %d has %d vertices", i, count)
			}

			indices := make([]int, count)
			for k := range indices {
				val, err := b.scalar(p.typ)
				if err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				indices[k] = int(val)
			}

			// Fan triangulation for polygon faces.
			for k := 1; k < count-1; k++ {
				m.Faces = append(m.Faces, [3]int{indices[0], indices[k], indices[k+1]})
			}
		}
	}
	return nil
}

func skipElement(b body, elem element) error {
	for i := 0; i < elem.count; i++ {
		for _, p := range elem.props {
			if p.isList {
				if err := skipList(b, p); err != nil {
					return err
				}
				continue
			}
			if _, err := b.scalar(p.typ); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipList(b body, p property) error {
	n, err := b.scalar(p.countType)
	if err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		if _, err := b.scalar(p.typ); err != nil {
			return err
		}
	}
	return nil
}

func hasProp(elem element, name string) bool {
	for _, p := range elem.props {
		if p.name == name {
			return true
		}
	}
	return false
}
