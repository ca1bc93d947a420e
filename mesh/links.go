package mesh

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/meshgo/delaunay"
)

var (
	// ErrLinksDisabled is the panic value for link access on a vertex
	// without links.
	ErrLinksDisabled = errors.New("mesh: vertex has no list links")
	// ErrAlreadyLinked is the panic value for relinking a vertex that was
	// not unlinked first.
	ErrAlreadyLinked = errors.New("mesh: vertex already linked")
)

// Links is the storage of one intrusive doubly linked list. It implements
// no list operations itself.
type Links struct {
	next, prev delaunay.VertexHandle
	linked     bool
	owner      any // Worklist holding the vertex, nil for hand-built lists
}

// EnableLinks attaches list links to v. It is a no-op if v has links.
func (v *Vertex[I]) EnableLinks() {
	if v.links == nil {
		v.links = &Links{}
	}
}

// HasLinks reports whether v carries list links.
func (v *Vertex[I]) HasLinks() bool { return v.links != nil }

func (v *Vertex[I]) mustLinks() *Links {
	if v.links == nil {
		panic(ErrLinksDisabled)
	}
	return v.links
}

// Next returns the successor of v in its list.
func (v *Vertex[I]) Next() delaunay.VertexHandle { return v.mustLinks().next }

// Previous returns the predecessor of v in its list.
func (v *Vertex[I]) Previous() delaunay.VertexHandle { return v.mustLinks().prev }

// SetNext sets the successor of v. Replacing a non-zero successor with a
// different non-zero one panics: the vertex must be unlinked first.
func (v *Vertex[I]) SetNext(h delaunay.VertexHandle) {
	l := v.mustLinks()
	l.next = relink(l.next, h)
}

// SetPrevious sets the predecessor of v, with the same rule as SetNext.
func (v *Vertex[I]) SetPrevious(h delaunay.VertexHandle) {
	l := v.mustLinks()
	l.prev = relink(l.prev, h)
}

func relink(cur, h delaunay.VertexHandle) delaunay.VertexHandle {
	if !cur.IsZero() && !h.IsZero() && cur != h {
		panic(fmt.Errorf("%w: link to %s replaced by %s", ErrAlreadyLinked, cur, h))
	}
	return h
}

// IsLinked reports whether v is a member of a list.
func (v *Vertex[I]) IsLinked() bool { return v.links != nil && v.links.linked }

// Link marks v as a list member. It panics if v is already a member.
func (v *Vertex[I]) Link() {
	l := v.mustLinks()
	if l.linked {
		panic(ErrAlreadyLinked)
	}
	l.linked = true
}

// Unlink clears the membership and both links of v.
func (v *Vertex[I]) Unlink() {
	if v.links != nil {
		*v.links = Links{}
	}
}

// Worklist is a FIFO queue of vertices threaded through their links.
// lookup resolves a handle to its record; records must have links enabled.
type Worklist[I any] struct {
	head, tail delaunay.VertexHandle
	n          int
	lookup     func(delaunay.VertexHandle) *Vertex[I]
}

// NewWorklist creates an empty Worklist.
func NewWorklist[I any](lookup func(delaunay.VertexHandle) *Vertex[I]) *Worklist[I] {
	return &Worklist[I]{lookup: lookup}
}

// Len returns the number of queued vertices.
func (w *Worklist[I]) Len() int { return w.n }

// Front returns the first queued vertex.
func (w *Worklist[I]) Front() (delaunay.VertexHandle, bool) {
	return w.head, !w.head.IsZero()
}

// PushBack appends h. It panics if h is already linked.
func (w *Worklist[I]) PushBack(h delaunay.VertexHandle) {
	v := w.lookup(h)
	v.Link()
	v.links.owner = w
	if w.tail.IsZero() {
		w.head = h
	} else {
		w.lookup(w.tail).links.next = h
		v.links.prev = w.tail
	}
	w.tail = h
	w.n++
}

// PopFront removes and returns the first queued vertex.
func (w *Worklist[I]) PopFront() (delaunay.VertexHandle, bool) {
	h := w.head
	if h.IsZero() {
		return h, false
	}
	w.Remove(h)
	return h, true
}

// Remove unlinks h from the list. It returns false if h is not linked and
// panics if h is linked into a different list.
func (w *Worklist[I]) Remove(h delaunay.VertexHandle) bool {
	v := w.lookup(h)
	if !v.IsLinked() {
		return false
	}
	if v.links.owner != any(w) {
		panic(fmt.Errorf("%w: %s belongs to another list", ErrAlreadyLinked, h))
	}
	prev, next := v.links.prev, v.links.next
	if prev.IsZero() {
		w.head = next
	} else {
		w.lookup(prev).links.next = next
	}
	if next.IsZero() {
		w.tail = prev
	} else {
		w.lookup(next).links.prev = prev
	}
	v.Unlink()
	w.n--
	return true
}

// All iterates the queued vertices from front to back.
func (w *Worklist[I]) All() iter.Seq[delaunay.VertexHandle] {
	return func(yield func(delaunay.VertexHandle) bool) {
		for h := w.head; !h.IsZero(); h = w.lookup(h).links.next {
			if !yield(h) {
				return
			}
		}
	}
}
