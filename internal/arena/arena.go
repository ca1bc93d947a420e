package arena

import (
	"errors"
	"fmt"
	"iter"
)

// ErrStaleHandle is the panic value used by MustGet for released or foreign handles.
var ErrStaleHandle = errors.New("arena: stale handle")

// Handle references a slot in an Arena.
// The zero Handle never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

// Index returns the slot index of h.
func (h Handle) Index() int {
	return int(h.index)
}

// Generation returns the slot generation captured by h.
func (h Handle) Generation() uint32 {
	return h.gen
}

// Pack returns h as a single uint64 (generation in the high 32 bits).
func (h Handle) Pack() uint64 {
	return uint64(h.gen)<<32 | uint64(h.index)
}

// Unpack is the inverse of Handle.Pack.
func Unpack(v uint64) Handle {
	return Handle{index: uint32(v), gen: uint32(v >> 32)}
}

// Less orders handles by slot index, then generation.
func (h Handle) Less(o Handle) bool {
	if h.index != o.index {
		return h.index < o.index
	}
	return h.gen < o.gen
}

func (h Handle) String() string {
	if h.IsZero() {
		return "nil"
	}
	return fmt.Sprintf("%d@%d", h.index, h.gen)
}

type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// Arena stores values of type T in reusable slots.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// New creates an Arena with room for capacity values before growing.
func New[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

// Alloc stores v in a free slot and returns its handle.
func (a *Arena[T]) Alloc(v T) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = v
		s.live = true
		a.live++
		return Handle{index: idx, gen: s.gen}
	}

	// Generations start at 1 so the zero Handle stays invalid.
	a.slots = append(a.slots, slot[T]{value: v, gen: 1, live: true})
	a.live++
	return Handle{index: uint32(len(a.slots) - 1), gen: 1}
}

// Free releases the slot referenced by h. It returns false if h is stale.
func (a *Arena[T]) Free(h Handle) bool {
	if !a.Contains(h) {
		return false
	}
	s := &a.slots[h.index]
	var zero T
	s.value = zero
	s.live = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// Contains reports whether h references a live slot.
func (a *Arena[T]) Contains(h Handle) bool {
	if h.IsZero() || int(h.index) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.index]
	return s.live && s.gen == h.gen
}

// Get returns a pointer to the value referenced by h.
// The pointer is valid until the next Alloc.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if !a.Contains(h) {
		return nil, false
	}
	return &a.slots[h.index].value, true
}

// MustGet is like Get but panics with ErrStaleHandle if h is stale.
func (a *Arena[T]) MustGet(h Handle) *T {
	v, ok := a.Get(h)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrStaleHandle, h))
	}
	return v
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return a.live
}

// Cap returns the number of slots ever allocated, live or free.
// Slot indices are always below Cap.
func (a *Arena[T]) Cap() int {
	return len(a.slots)
}

// All iterates live values in slot order.
func (a *Arena[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for i := range a.slots {
			s := &a.slots[i]
			if !s.live {
				continue
			}
			if !yield(Handle{index: uint32(i), gen: s.gen}, &s.value) {
				return
			}
		}
	}
}

// Reset releases every slot. Outstanding handles become stale.
func (a *Arena[T]) Reset() {
	for i := range a.slots {
		if a.slots[i].live {
			a.Free(Handle{index: uint32(i), gen: a.slots[i].gen})
		}
	}
}
