package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_AllocGet(t *testing.T) {
	a := New[string](4)

	h1 := a.Alloc("a")
	h2 := a.Alloc("b")

	assert.False(t, h1.IsZero())
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, a.Len())

	v, ok := a.Get(h1)
	require.True(t, ok)
	assert.Equal(t, "a", *v)

	*a.MustGet(h2) = "c"
	assert.Equal(t, "c", *a.MustGet(h2))
}

func TestArena_ZeroHandle(t *testing.T) {
	a := New[int](0)
	a.Alloc(1)

	var h Handle
	assert.True(t, h.IsZero())
	assert.False(t, a.Contains(h))
	assert.Equal(t, "nil", h.String())
}

func TestArena_StaleAfterFree(t *testing.T) {
	a := New[int](0)

	h := a.Alloc(42)
	require.True(t, a.Free(h))
	assert.False(t, a.Free(h), "double free must be rejected")
	assert.False(t, a.Contains(h))
	assert.Equal(t, 0, a.Len())

	// Slot is reused with a new generation.
	h2 := a.Alloc(7)
	assert.Equal(t, h.Index(), h2.Index())
	assert.NotEqual(t, h.Generation(), h2.Generation())

	_, ok := a.Get(h)
	assert.False(t, ok)
	assert.Equal(t, 7, *a.MustGet(h2))

	assert.PanicsWithError(t, "arena: stale handle: "+h.String(), func() {
		a.MustGet(h)
	})
}

func TestArena_All(t *testing.T) {
	a := New[int](0)
	hs := []Handle{a.Alloc(0), a.Alloc(1), a.Alloc(2), a.Alloc(3)}
	a.Free(hs[1])

	var got []int
	for h, v := range a.All() {
		assert.True(t, a.Contains(h))
		got = append(got, *v)
	}
	assert.Equal(t, []int{0, 2, 3}, got)
	assert.Equal(t, 4, a.Cap())
}

func TestArena_Reset(t *testing.T) {
	a := New[int](0)
	h := a.Alloc(1)
	a.Alloc(2)

	a.Reset()

	assert.Equal(t, 0, a.Len())
	assert.False(t, a.Contains(h))

	h3 := a.Alloc(3)
	assert.True(t, a.Contains(h3))
	assert.Equal(t, 1, a.Len())
}

func TestHandle_PackUnpack(t *testing.T) {
	a := New[int](0)
	a.Alloc(0)
	h := a.Alloc(1)

	assert.Equal(t, h, Unpack(h.Pack()))
	assert.True(t, Handle{index: 1, gen: 1}.Less(Handle{index: 2, gen: 1}))
	assert.True(t, Handle{index: 1, gen: 1}.Less(Handle{index: 1, gen: 2}))
}
