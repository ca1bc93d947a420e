package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "runs/b.msh", []byte("b")))
	require.NoError(t, s.Put(ctx, "runs/a.msh", []byte("a")))
	require.NoError(t, s.Put(ctx, "other.msh", []byte("o")))

	data, err := s.Get(ctx, "runs/a.msh")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)

	// Mutating the returned slice must not change the archive.
	data[0] = 'x'
	data, err = s.Get(ctx, "runs/a.msh")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)

	require.NoError(t, s.Put(ctx, "runs/a.msh", []byte("a2")))
	data, err = s.Get(ctx, "runs/a.msh")
	require.NoError(t, err)
	assert.Equal(t, []byte("a2"), data)

	names, err := s.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a.msh", "runs/b.msh"}, names)

	names, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 3)

	require.NoError(t, s.Delete(ctx, "runs/a.msh"))
	require.NoError(t, s.Delete(ctx, "runs/a.msh"))
	_, err = s.Get(ctx, "runs/a.msh")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)

	assert.ErrorIs(t, s.Put(context.Background(), "", nil), ErrInvalidName)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "archives"))
	require.NoError(t, err)
	testStore(t, s)

	entries, err := os.ReadDir(filepath.Join(s.Root(), "runs"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), tempPrefix)
	}
}

func TestLocalStore_InvalidNames(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "/abs", tempPrefix + "x"} {
		assert.ErrorIs(t, s.Put(ctx, name, []byte("x")), ErrInvalidName, name)
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "a", []byte("a")), context.Canceled)
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThrottledStore(t *testing.T) {
	s := WithRateLimit(NewMemoryStore(), 1<<20)
	_, ok := s.(*ThrottledStore)
	require.True(t, ok)
	testStore(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Put(ctx, "a", make([]byte, 2<<20)))

	inner := NewMemoryStore()
	assert.Same(t, inner, WithRateLimit(inner, 0))
}
