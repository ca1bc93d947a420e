package delaunay

import (
	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/kernel"
)

// Options configures a Triangulation.
type Options struct {
	// Bounds is the region points may be inserted into. The bounding
	// tetrahedron is sized from it, so very loose bounds cost precision in
	// the float filter (not correctness).
	Bounds Box

	// Kernel evaluates the geometric predicates.
	Kernel kernel.Kernel

	// RandomSeed seeds the walk randomization. A nil seed uses the clock.
	RandomSeed *int64

	// MaxWalkSteps bounds a single walk before location falls back to a
	// linear scan. 0 derives the bound from the number of cells.
	MaxWalkSteps int

	// InitialCapacity pre-sizes the vertex and cell arenas.
	InitialCapacity int
}

// DefaultOptions contains the default options for a Triangulation.
var DefaultOptions = Options{
	Bounds: Box{
		Min: r3.Vector{X: -1, Y: -1, Z: -1},
		Max: r3.Vector{X: 1, Y: 1, Z: 1},
	},
	Kernel: kernel.Default,
}

// boundingScale is the circumradius of the bounding tetrahedron in units of
// the half diagonal of Bounds.
const boundingScale = 64
