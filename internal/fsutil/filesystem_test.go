package fsutil

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystemReadWrite(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("data/a.csv", []byte("x,y\n1,2\n"), 0o644))

	got, err := m.ReadFile("data/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "x,y\n1,2\n", string(got))

	assert.True(t, m.Exists("data/a.csv"))
	assert.False(t, m.Exists("data/b.csv"))

	_, err = m.ReadFile("data/b.csv")
	assert.Error(t, err)
}

func TestMemoryFileSystemCreateCommitsOnClose(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	w, err := m.Create("out.txt")
	require.NoError(t, err)

	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = w.Write([]byte(" world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := m.ReadFile("out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestMemoryFileSystemOpen(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("f.txt", []byte("abc"), 0o644))

	f, err := m.Open("f.txt")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
}

func TestMemoryFileSystemGlob(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("in/b.txt", nil, 0o644))
	require.NoError(t, m.WriteFile("in/a.txt", nil, 0o644))
	require.NoError(t, m.WriteFile("in/c.csv", nil, 0o644))

	got, err := m.Glob("in/*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"in/a.txt", "in/b.txt"}, got)
}

func TestMemoryFileSystemMkdirAll(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.MkdirAll("a/b/c", 0o755))
	assert.True(t, m.Exists("a/b/c"))
	assert.True(t, m.Exists("a/b"))
	assert.True(t, m.Exists("a"))

	info, err := m.Stat("a/b")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOSFileSystem(t *testing.T) {
	t.Parallel()

	osfs := OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	require.NoError(t, osfs.WriteFile(path, []byte("data"), 0o644))
	assert.True(t, osfs.Exists(path))

	got, err := osfs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	matches, err := osfs.Glob(filepath.Join(dir, "*.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{path}, matches)
}
