package meshio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/philipparndt/meshclean/pkg/mesh"
	"github.com/philipparndt/meshclean/pkg/obj"
	"github.com/philipparndt/meshclean/pkg/ply"
	"github.com/philipparndt/meshclean/pkg/stl"
)

// ErrUnknownFormat is returned when no registered format matches a name or
// file extension.
var ErrUnknownFormat = errors.New("unknown mesh format")

// Format is one mesh file format: a canonical name, the extensions it owns
// and its stream codec.
type Format struct {
	Name       string
	Extensions []string
	Decode     func(io.Reader) (*mesh.Mesh, error)
	Encode     func(io.Writer, *mesh.Mesh) error
}

var formats = []Format{
	{Name: "stl", Extensions: []string{".stl"}, Decode: stl.Decode, Encode: stl.Encode},
	{Name: "ply", Extensions: []string{".ply"}, Decode: ply.Decode, Encode: ply.Encode},
	{Name: "obj", Extensions: []string{".obj"}, Decode: obj.Decode, Encode: obj.Encode},
}

// Names returns the canonical names of all registered formats
func Names() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name
	}
	return names
}

// ByName returns the format registered under the given name
func ByName(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range formats {
		if f.Name == name {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// ByExtension returns the format owning the given file extension. The
// leading dot is optional and matching ignores case.
func ByExtension(ext string) (Format, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, f := range formats {
		for _, e := range f.Extensions {
			if e == ext {
				return f, nil
			}
		}
	}
	return Format{}, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
}

// ForPath resolves the format for a file path. A trailing .gz is
// transparent: the inner extension picks the codec and the second return
// reports that the stream is gzip-compressed.
func ForPath(path string) (Format, bool, error) {
	name := filepath.Base(path)
	gzipped := false

	if strings.EqualFold(filepath.Ext(name), ".gz") {
		gzipped = true
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	ext := filepath.Ext(name)
	if ext == "" {
		return Format{}, false, fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, path)
	}

	f, err := ByExtension(ext)
	if err != nil {
		return Format{}, false, err
	}
	return f, gzipped, nil
}

// DecodeFrom decodes one mesh from r, picking the codec from the path's
// extension and transparently un-gzipping when the path ends in .gz.
func DecodeFrom(r io.Reader, path string) (*mesh.Mesh, error) {
	f, gzipped, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	if gzipped {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	m, err := f.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Name, err)
	}
	return m, nil
}

// EncodeTo encodes the mesh to w, picking the codec from the path's
// extension and gzip-compressing when the path ends in .gz.
func EncodeTo(w io.Writer, m *mesh.Mesh, path string) error {
	f, gzipped, err := ForPath(path)
	if err != nil {
		return err
	}

	if gzipped {
		zw := gzip.NewWriter(w)
		if err := f.Encode(zw, m); err != nil {
			return fmt.Errorf("encode %s: %w", f.Name, err)
		}
		return zw.Close()
	}

	if err := f.Encode(w, m); err != nil {
		return fmt.Errorf("encode %s: %w", f.Name, err)
	}
	return nil
}

// Load reads the mesh stored at path. Meshes whose format carries no name
// are named after the file.
func Load(path string) (*mesh.Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	m, err := DecodeFrom(file, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = baseName(path)
	}
	return m, nil
}

// Save writes the mesh to path
func Save(path string, m *mesh.Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := EncodeTo(file, m, path); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return file.Close()
}

// baseName strips the directory, a trailing .gz and the format extension
func baseName(path string) string {
	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(name), ".gz") {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
