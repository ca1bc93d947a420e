package hierarchy

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/delaunay"
	"github.com/hupe1980/meshgo/kernel"
)

// mortonBits is the per-axis resolution of the insertion order key.
const mortonBits = 21

// InsertRange adds all of pts and returns their level 0 handles in input
// order. Every point is validated before the first insertion, so an error
// leaves h unchanged. The points are inserted along a Z-order curve over the
// bounds, which keeps consecutive walks short.
func (h *Hierarchy[P]) InsertRange(pts []r3.Vector) ([]delaunay.VertexHandle, error) {
	b := h.opts.Triangulation.Bounds
	for i, p := range pts {
		if !kernel.IsFinite(p) {
			return nil, fmt.Errorf("point %d: %w", i, delaunay.ErrNonFinitePoint)
		}
		if !b.Contains(p) {
			return nil, fmt.Errorf("point %d: %w", i, &delaunay.ErrOutOfBounds{Point: p, Bounds: b})
		}
	}

	keys := make([]uint64, len(pts))
	order := make([]int, len(pts))
	for i, p := range pts {
		keys[i] = mortonKey(p, b)
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, c int) int { return cmp.Compare(keys[a], keys[c]) })

	out := make([]delaunay.VertexHandle, len(pts))
	for _, i := range order {
		v, err := h.Insert(pts[i])
		if err != nil {
			// Only reachable through bounds that do not match the levels.
			return out, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = v
	}
	h.logger.Debug("range inserted", "points", len(pts), "vertices", h.NumberOfVertices())
	return out, nil
}

// mortonKey interleaves the quantized coordinates of p within b.
func mortonKey(p r3.Vector, b delaunay.Box) uint64 {
	return spread(quantize(p.X, b.Min.X, b.Max.X)) |
		spread(quantize(p.Y, b.Min.Y, b.Max.Y))<<1 |
		spread(quantize(p.Z, b.Min.Z, b.Max.Z))<<2
}

func quantize(x, lo, hi float64) uint64 {
	const top = 1<<mortonBits - 1
	if hi <= lo {
		return 0
	}
	q := (x - lo) / (hi - lo) * top
	return uint64(min(max(q, 0), top))
}

// spread moves the low 21 bits of x to every third bit.
func spread(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | x<<32) & 0x1f00000000ffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}
