package store

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// FileSet is the minimal file collection contract the batch driver works
// against: enumerate names, read one file, write one file.
type FileSet interface {
	// List returns the file names in the set, sorted. Hidden files and
	// nested directories are not part of a set.
	List(ctx context.Context) ([]string, error)
	// Open opens the named file for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Create opens the named file for writing. The file only becomes
	// visible under its final name once the returned writer is closed
	// without error.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}

// FromSpec builds a FileSet from a location spec. "s3://bucket/prefix"
// selects S3-compatible object storage configured through the environment;
// anything else is a local directory path.
func FromSpec(spec string) (FileSet, error) {
	if strings.HasPrefix(spec, "s3://") {
		rest := strings.TrimPrefix(spec, "s3://")
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("s3 spec %q has no bucket", spec)
		}
		return NewBucket(S3ConfigFromEnv(), bucket, prefix)
	}
	return NewDir(spec), nil
}
