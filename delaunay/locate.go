package delaunay

import (
	"math"
	"math/rand/v2"

	"github.com/bits-and-blooms/bitset"
	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/kernel"
)

// Locate finds the cell containing p, starting the walk at hint when it is
// a live cell. The result does not depend on hint: points on a facet, edge
// or vertex resolve to the lowest-handled cell sharing that face, or to the
// incident cell of the vertex, and points outside the bounding tetrahedron
// to the lowest-handled hull cell that sees them. Points with non-finite
// coordinates are reported outside the lowest-handled cell.
//
// Locate does not modify t and may run concurrently with other readers.
func (t *Triangulation[V]) Locate(p r3.Vector, hint CellHandle) Location {
	if !kernel.IsFinite(p) {
		return Location{Cell: t.lowestCell(), Type: LocateOutside}
	}
	return t.canonical(p, t.walk(p, hint))
}

func (t *Triangulation[V]) lowestCell() CellHandle {
	var low CellHandle
	for c := range t.Cells() {
		if low.IsZero() || c.Less(low) {
			low = c
		}
	}
	return low
}

func (t *Triangulation[V]) startCell(hint CellHandle) CellHandle {
	if !hint.IsZero() && t.cells.Contains(hint.ref) {
		return hint
	}
	if t.cells.Contains(t.last.ref) {
		return t.last
	}
	for c := range t.Cells() {
		return c
	}
	return CellHandle{}
}

func (t *Triangulation[V]) walkLimit() int {
	if t.opts.MaxWalkSteps > 0 {
		return t.opts.MaxWalkSteps
	}
	return 4*t.cells.Len() + 64
}

// walk is a remembering stochastic visibility walk. The facet the walk
// entered through is never tested again, and the facet order is randomized
// per step so degenerate configurations cannot cycle. The generator lives on
// the stack, seeded from p.
func (t *Triangulation[V]) walk(p r3.Vector, hint CellHandle) Location {
	c := t.startCell(hint)
	limit := t.walkLimit()

	var order rand.PCG
	order.Seed(math.Float64bits(p.X)^math.Float64bits(p.Z)<<1, math.Float64bits(p.Y))

	var prev CellHandle
	for steps := 1; ; steps++ {
		if steps > limit {
			loc := t.scan(p)
			loc.Steps = steps
			return loc
		}

		cc := *t.cell(c)
		start := int(order.Uint64() & 3)
		var (
			next  CellHandle
			zeros [3]int
			nz    int
		)
		for k := 0; k < 4; k++ {
			i := (start + k) & 3
			if !prev.IsZero() && cc.n[i] == prev {
				continue
			}
			switch t.orientFacet(c, i, p) {
			case kernel.Negative:
				if cc.n[i].IsZero() {
					return Location{Cell: c, Type: LocateOutside, I: i, Steps: steps}
				}
				next = cc.n[i]
			case kernel.Zero:
				if nz < len(zeros) {
					zeros[nz] = i
				}
				nz++
			}
			if !next.IsZero() {
				break
			}
		}
		if next.IsZero() {
			loc := classify(zeros, nz)
			loc.Cell = c
			loc.Steps = steps
			return loc
		}
		prev, c = c, next
	}
}

// classify turns the indices of the facets whose plane holds the point
// into a location type.
func classify(zeros [3]int, nz int) Location {
	switch nz {
	case 0:
		return Location{Type: LocateCell}
	case 1:
		return Location{Type: LocateFacet, I: zeros[0]}
	case 2:
		var e [2]int
		n := 0
		for i := 0; i < 4; i++ {
			if i != zeros[0] && i != zeros[1] {
				e[n] = i
				n++
			}
		}
		return Location{Type: LocateEdge, I: e[0], J: e[1]}
	default:
		return Location{Type: LocateVertex, I: 6 - zeros[0] - zeros[1] - zeros[2]}
	}
}

// scan tests every cell. It backs up walks that exceed the step limit.
func (t *Triangulation[V]) scan(p r3.Vector) Location {
	var fallback CellHandle
	for c := range t.Cells() {
		fallback = c
		var (
			zeros [3]int
			nz    int
			out   bool
		)
		for i := 0; i < 4 && !out; i++ {
			switch t.orientFacet(c, i, p) {
			case kernel.Negative:
				out = true
			case kernel.Zero:
				if nz < len(zeros) {
					zeros[nz] = i
				}
				nz++
			}
		}
		if out {
			continue
		}
		loc := classify(zeros, nz)
		loc.Cell = c
		return loc
	}
	return Location{Cell: fallback, Type: LocateOutside}
}

func (t *Triangulation[V]) canonical(p r3.Vector, loc Location) Location {
	switch loc.Type {
	case LocateOutside:
		return t.outside(p, loc)
	case LocateFacet:
		cc := t.cell(loc.Cell)
		nb := cc.n[loc.I]
		if nb.IsZero() || !nb.Less(loc.Cell) {
			return loc
		}
		loc.I = t.cell(nb).neighborIndex(loc.Cell)
		loc.Cell = nb
		return loc
	case LocateEdge:
		cc := t.cell(loc.Cell)
		a, b := cc.v[loc.I], cc.v[loc.J]
		best := loc.Cell
		for _, c := range t.edgeCells(loc.Cell, a, b) {
			if c.Less(best) {
				best = c
			}
		}
		bc := t.cell(best)
		loc.Cell, loc.I, loc.J = best, bc.indexOf(a), bc.indexOf(b)
		if loc.I > loc.J {
			loc.I, loc.J = loc.J, loc.I
		}
		return loc
	case LocateVertex:
		v := t.cell(loc.Cell).v[loc.I]
		c := t.vertex(v).cell
		loc.Cell, loc.I = c, t.cell(c).indexOf(v)
		return loc
	default:
		return loc
	}
}

// outside returns the lowest-handled cell with an open facet that has p
// strictly on its outer side, and the lowest such facet.
func (t *Triangulation[V]) outside(p r3.Vector, loc Location) Location {
	best := Location{Type: LocateOutside, Steps: loc.Steps}
	for c := range t.Cells() {
		if !best.Cell.IsZero() && !c.Less(best.Cell) {
			continue
		}
		cc := t.cell(c)
		for i := range 4 {
			if cc.n[i].IsZero() && t.orientFacet(c, i, p) == kernel.Negative {
				best.Cell, best.I = c, i
				break
			}
		}
	}
	if best.Cell.IsZero() {
		return loc
	}
	return best
}

// edgeCells returns the cells around the edge ab, starting with start.
func (t *Triangulation[V]) edgeCells(start CellHandle, a, b VertexHandle) []CellHandle {
	seen := bitset.New(uint(t.cells.Cap()))
	seen.Set(uint(start.ref.Index()))
	ring := []CellHandle{start}
	for k := 0; k < len(ring); k++ {
		cc := t.cell(ring[k])
		for i, w := range cc.v {
			if w == a || w == b {
				continue
			}
			nb := cc.n[i]
			if nb.IsZero() || seen.Test(uint(nb.ref.Index())) {
				continue
			}
			seen.Set(uint(nb.ref.Index()))
			ring = append(ring, nb)
		}
	}
	return ring
}
