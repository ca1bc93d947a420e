package delaunay

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/internal/arena"
)

var (
	// ErrNonFinitePoint is returned when a coordinate is NaN or infinite.
	ErrNonFinitePoint = errors.New("point has non-finite coordinates")
	// ErrVertexNotFound is the panic value for operations on removed or unknown vertices.
	ErrVertexNotFound = errors.New("vertex not found")
	// ErrBoundingVertex is the panic value for removing one of the bounding vertices.
	ErrBoundingVertex = errors.New("bounding vertex cannot be removed")
)

// ErrOutOfBounds indicates a point outside the configured bounds.
type ErrOutOfBounds struct {
	Point  r3.Vector
	Bounds Box
}

func (e *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("point %v outside bounds [%v, %v]", e.Point, e.Bounds.Min, e.Bounds.Max)
}

// VertexHandle references a vertex of a Triangulation.
// The zero value references no vertex.
type VertexHandle struct {
	ref arena.Handle
}

// IsZero reports whether v is the zero handle.
func (v VertexHandle) IsZero() bool { return v.ref.IsZero() }

// Less orders vertex handles.
func (v VertexHandle) Less(o VertexHandle) bool { return v.ref.Less(o.ref) }

// Key returns a packed integer identifying the handle.
func (v VertexHandle) Key() uint64 { return v.ref.Pack() }

func (v VertexHandle) String() string { return "v" + v.ref.String() }

// CellHandle references a cell of a Triangulation.
// The zero value references no cell.
type CellHandle struct {
	ref arena.Handle
}

// IsZero reports whether c is the zero handle.
func (c CellHandle) IsZero() bool { return c.ref.IsZero() }

// Less orders cell handles.
func (c CellHandle) Less(o CellHandle) bool { return c.ref.Less(o.ref) }

func (c CellHandle) String() string { return "c" + c.ref.String() }

// LocateType classifies where a located point lies relative to the returned cell.
type LocateType uint8

const (
	// LocateCell: strictly inside the cell.
	LocateCell LocateType = iota
	// LocateFacet: in the interior of facet I.
	LocateFacet
	// LocateEdge: in the interior of the edge between vertices I and J.
	LocateEdge
	// LocateVertex: on vertex I.
	LocateVertex
	// LocateOutside: outside the bounding tetrahedron, beyond facet I.
	LocateOutside
)

func (t LocateType) String() string {
	switch t {
	case LocateCell:
		return "cell"
	case LocateFacet:
		return "facet"
	case LocateEdge:
		return "edge"
	case LocateVertex:
		return "vertex"
	default:
		return "outside"
	}
}

// Location is the result of a point location.
type Location struct {
	Cell CellHandle
	Type LocateType
	I, J int
	// Steps is the number of cells visited by the walk.
	Steps int
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max r3.Vector
}

// Contains reports whether p lies in the closed box.
func (b Box) Contains(p r3.Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// BoundingBox returns the smallest Box containing ps.
func BoundingBox(ps []r3.Vector) Box {
	if len(ps) == 0 {
		return Box{}
	}
	b := Box{Min: ps[0], Max: ps[0]}
	for _, p := range ps[1:] {
		b.Min = r3.Vector{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)}
		b.Max = r3.Vector{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)}
	}
	return b
}

type vertex[V any] struct {
	point    r3.Vector
	cell     CellHandle
	bounding bool
	payload  V
}

type cell struct {
	v [4]VertexHandle
	n [4]CellHandle
}

func (c *cell) indexOf(v VertexHandle) int {
	for i, w := range c.v {
		if w == v {
			return i
		}
	}
	return -1
}

func (c *cell) neighborIndex(n CellHandle) int {
	for i, w := range c.n {
		if w == n {
			return i
		}
	}
	return -1
}

// facetKey identifies the facet opposite vertex i independent of the cell it is seen from.
func (c *cell) facetKey(i int) [3]uint64 {
	var k [3]uint64
	j := 0
	for m, v := range c.v {
		if m == i {
			continue
		}
		k[j] = v.Key()
		j++
	}
	sort3(&k)
	return k
}

func sort3(k *[3]uint64) {
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	if k[1] > k[2] {
		k[1], k[2] = k[2], k[1]
	}
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
}

func edgeKey(a, b VertexHandle) [2]uint64 {
	ka, kb := a.Key(), b.Key()
	if ka > kb {
		ka, kb = kb, ka
	}
	return [2]uint64{ka, kb}
}
