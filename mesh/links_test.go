package mesh

import (
	"testing"

	"github.com/hupe1980/meshgo/delaunay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listFixture struct {
	tr      *delaunay.Triangulation[Vertex[int]]
	handles []delaunay.VertexHandle
}

func newListFixture(t *testing.T, n int) *listFixture {
	t.Helper()
	seed := int64(4711)
	tr := delaunay.New[Vertex[int]](func(o *delaunay.Options) { o.RandomSeed = &seed })
	f := &listFixture{tr: tr}
	for i := range n {
		p := delaunay.DefaultOptions.Bounds.Min.Mul(float64(i) / float64(n+1))
		h, inserted, err := tr.Insert(p, delaunay.CellHandle{})
		require.NoError(t, err)
		require.True(t, inserted)
		tr.Payload(h).EnableLinks()
		tr.Payload(h).SetIndex(i)
		f.handles = append(f.handles, h)
	}
	return f
}

func (f *listFixture) lookup(h delaunay.VertexHandle) *Vertex[int] {
	return f.tr.Payload(h)
}

func TestLinks_Disabled(t *testing.T) {
	var v Vertex[int]

	assert.Panics(t, func() { v.Next() })
	assert.Panics(t, func() { v.Link() })
	assert.NotPanics(t, func() { v.Unlink() })
}

func TestLinks_Relink(t *testing.T) {
	f := newListFixture(t, 3)
	v := f.lookup(f.handles[0])

	v.SetNext(f.handles[1])
	assert.Equal(t, f.handles[1], v.Next())
	assert.NotPanics(t, func() { v.SetNext(f.handles[1]) })
	assert.Panics(t, func() { v.SetNext(f.handles[2]) })

	v.SetPrevious(f.handles[2])
	assert.Panics(t, func() { v.SetPrevious(f.handles[1]) })

	v.Unlink()
	assert.True(t, v.Next().IsZero())
	assert.True(t, v.Previous().IsZero())
	assert.NotPanics(t, func() { v.SetNext(f.handles[2]) })

	v.Link()
	assert.True(t, v.IsLinked())
	assert.Panics(t, func() { v.Link() })
}

func TestWorklist_FIFO(t *testing.T) {
	f := newListFixture(t, 5)
	w := NewWorklist(f.lookup)

	for _, h := range f.handles {
		w.PushBack(h)
	}
	require.Equal(t, 5, w.Len())

	var order []int
	for h := range w.All() {
		order = append(order, f.lookup(h).Index())
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)

	front, ok := w.Front()
	require.True(t, ok)
	assert.Equal(t, f.handles[0], front)

	for i := range f.handles {
		h, ok := w.PopFront()
		require.True(t, ok)
		assert.Equal(t, f.handles[i], h)
		assert.False(t, f.lookup(h).IsLinked())
	}
	_, ok = w.PopFront()
	assert.False(t, ok)
	assert.Equal(t, 0, w.Len())
}

func TestWorklist_Remove(t *testing.T) {
	f := newListFixture(t, 4)
	w := NewWorklist(f.lookup)
	for _, h := range f.handles {
		w.PushBack(h)
	}

	assert.True(t, w.Remove(f.handles[2]))
	assert.False(t, w.Remove(f.handles[2]))
	assert.True(t, w.Remove(f.handles[0]))
	assert.True(t, w.Remove(f.handles[3]))

	var rest []delaunay.VertexHandle
	for h := range w.All() {
		rest = append(rest, h)
	}
	assert.Equal(t, []delaunay.VertexHandle{f.handles[1]}, rest)
	assert.True(t, f.lookup(f.handles[1]).Previous().IsZero())
	assert.True(t, f.lookup(f.handles[1]).Next().IsZero())

	w.PushBack(f.handles[2])
	assert.Equal(t, f.handles[2], f.lookup(f.handles[1]).Next())
}

func TestWorklist_PushLinkedPanics(t *testing.T) {
	f := newListFixture(t, 2)
	a := NewWorklist(f.lookup)
	b := NewWorklist(f.lookup)

	a.PushBack(f.handles[0])

	assert.Panics(t, func() { b.PushBack(f.handles[0]) })
	assert.Panics(t, func() { a.PushBack(f.handles[0]) })
}

func TestWorklist_RemoveForeignPanics(t *testing.T) {
	f := newListFixture(t, 5)
	a := NewWorklist(f.lookup)
	b := NewWorklist(f.lookup)
	for _, h := range f.handles[:3] {
		a.PushBack(h)
	}
	for _, h := range f.handles[3:] {
		b.PushBack(h)
	}

	for i, h := range f.handles {
		other := b
		if i >= 3 {
			other = a
		}
		assert.PanicsWithError(t, "mesh: vertex already linked: "+h.String()+" belongs to another list", func() {
			other.Remove(h)
		})
	}

	// Both lists are intact after the refused removals.
	collect := func(w *Worklist[int]) []delaunay.VertexHandle {
		var out []delaunay.VertexHandle
		for h := range w.All() {
			out = append(out, h)
		}
		return out
	}
	assert.Equal(t, f.handles[:3], collect(a))
	assert.Equal(t, f.handles[3:], collect(b))
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 2, b.Len())

	// A hand-linked vertex is not owned by any Worklist.
	v := f.lookup(f.handles[0])
	require.True(t, a.Remove(f.handles[0]))
	v.Link()
	assert.Panics(t, func() { a.Remove(f.handles[0]) })
}
