package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.stl"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.stl"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.stl"), []byte("h"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	names, err := NewDir(dir).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.stl", "b.stl"}, names)
}

func TestDirListMissing(t *testing.T) {
	_, err := NewDir(filepath.Join(t.TempDir(), "absent")).List(context.Background())
	assert.Error(t, err)
}

func TestDirOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.stl"), []byte("payload"), 0o644))

	r, err := NewDir(dir).Open(context.Background(), "a.stl")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestDirCreateIsAtomic(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.stl")

	w, err := NewDir(dir).Create(context.Background(), "out.stl")
	require.NoError(t, err)

	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	// Not visible under its final name until Close.
	_, err = os.Stat(final)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, w.Close())

	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "partial", string(data))
}

func TestDirCreateReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.stl")
	require.NoError(t, os.WriteFile(final, []byte("old"), 0o644))

	w, err := NewDir(dir).Create(context.Background(), "out.stl")
	require.NoError(t, err)
	_, err = w.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestDirCreateMakesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "out")

	w, err := NewDir(dir).Create(context.Background(), "out.stl")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(dir, "out.stl"))
	assert.NoError(t, err)
}

func TestFromSpecLocal(t *testing.T) {
	fs, err := FromSpec("/tmp/meshes")
	require.NoError(t, err)

	dir, ok := fs.(*Dir)
	require.True(t, ok)
	assert.Equal(t, "/tmp/meshes", dir.Path())
}

func TestFromSpecS3(t *testing.T) {
	t.Setenv("MESHCLEAN_S3_ENDPOINT", "localhost:9000")
	t.Setenv("MESHCLEAN_S3_ACCESS_KEY", "minioadmin")
	t.Setenv("MESHCLEAN_S3_SECRET_KEY", "minioadmin")
	t.Setenv("MESHCLEAN_S3_USE_SSL", "false")

	fs, err := FromSpec("s3://meshes/incoming")
	require.NoError(t, err)
	_, ok := fs.(*Bucket)
	assert.True(t, ok)
}

func TestFromSpecS3MissingBucket(t *testing.T) {
	_, err := FromSpec("s3://")
	assert.Error(t, err)
}

func TestFromSpecS3MissingConfig(t *testing.T) {
	t.Setenv("MESHCLEAN_S3_ENDPOINT", "")

	_, err := FromSpec("s3://meshes")
	assert.Error(t, err)
}

func TestS3ConfigFromEnv(t *testing.T) {
	t.Setenv("MESHCLEAN_S3_ENDPOINT", "minio.farm:9000")
	t.Setenv("MESHCLEAN_S3_REGION", "")
	t.Setenv("MESHCLEAN_S3_ACCESS_KEY", "key")
	t.Setenv("MESHCLEAN_S3_SECRET_KEY", "secret")
	t.Setenv("MESHCLEAN_S3_USE_SSL", "false")

	cfg := S3ConfigFromEnv()
	assert.Equal(t, "minio.farm:9000", cfg.Endpoint)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.False(t, cfg.UseSSL)
}
