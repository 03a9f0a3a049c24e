package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func matchSTL(name string) bool {
	return strings.HasSuffix(name, ".stl")
}

func TestWatchDeliversMatchingFile(t *testing.T) {
	dir := t.TempDir()

	dw, err := NewDirWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer dw.Close()

	events := make(chan string, 8)
	require.NoError(t, dw.Watch(dir, matchSTL, func(name string) {
		events <- name
	}))
	dw.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "part.stl"), []byte("solid part\nendsolid part\n"), 0o644))

	select {
	case name := <-events:
		require.Equal(t, "part.stl", name)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for part.stl")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	dw, err := NewDirWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	defer dw.Close()

	events := make(chan string, 8)
	require.NoError(t, dw.Watch(dir, matchSTL, func(name string) {
		events <- name
	}))
	dw.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.stl"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part.stl"), []byte("x"), 0o644))

	// The matching file must arrive; the ignored ones must not, in any order.
	select {
	case name := <-events:
		require.Equal(t, "part.stl", name)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for part.stl")
	}

	select {
	case name := <-events:
		t.Fatalf("unexpected event for %s", name)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchDebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()

	dw, err := NewDirWatcher(150*time.Millisecond, nil)
	require.NoError(t, err)
	defer dw.Close()

	events := make(chan string, 8)
	require.NoError(t, dw.Watch(dir, matchSTL, func(name string) {
		events <- name
	}))
	dw.Start()

	path := filepath.Join(dir, "slow.stl")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = f.WriteString("facet\n")
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	select {
	case name := <-events:
		require.Equal(t, "slow.stl", name)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for slow.stl")
	}

	select {
	case <-events:
		t.Fatal("writes within the debounce window fired more than once")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	dw, err := NewDirWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer dw.Close()

	err = dw.Watch(filepath.Join(t.TempDir(), "missing"), matchSTL, func(string) {})
	require.Error(t, err)
}
