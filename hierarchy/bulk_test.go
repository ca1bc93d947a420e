package hierarchy

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/delaunay"
	"github.com/hupe1980/meshgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertRange(t *testing.T) {
	rng := testutil.NewRNG(31)
	pts := rng.UniformPoints(1200, -1, 1)
	pts = append(pts, pts[7], pts[500])

	h := newTestHierarchy(t, 5, func(o *Options) { o.Ratio = 4 })
	hs, err := h.InsertRange(pts)
	require.NoError(t, err)
	require.Len(t, hs, len(pts))

	for i, v := range hs {
		require.True(t, h.Contains(v))
		assert.Equal(t, pts[i], h.Point(v))
	}
	assert.Equal(t, hs[7], hs[1200])
	assert.Equal(t, hs[500], hs[1201])
	assert.Equal(t, 1200, h.NumberOfVertices())
	require.NoError(t, h.Validate())

	// The bulk and the point-by-point structures answer alike on level 0.
	ref := newTestHierarchy(t, 5, func(o *Options) { o.Ratio = 4 })
	insertPoints(t, ref, pts[:1200])
	for _, q := range rng.UniformPoints(200, -1, 1) {
		a, b := h.LocateWithType(q), ref.LocateWithType(q)
		assert.Equal(t, a.Type, b.Type)
		if a.Type == delaunay.LocateCell {
			assert.ElementsMatch(t, h.Level(0).CellPoints(a.Cell), ref.Level(0).CellPoints(b.Cell))
		}
	}
}

func TestInsertRange_ValidatesFirst(t *testing.T) {
	tests := []struct {
		name string
		bad  r3.Vector
	}{
		{"out of bounds", r3.Vector{X: 2}},
		{"non-finite", r3.Vector{Y: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHierarchy(t, 5)
			pts := testutil.NewRNG(3).UniformPoints(50, -1, 1)
			pts[40] = tt.bad

			hs, err := h.InsertRange(pts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "point 40")
			assert.Nil(t, hs)
			assert.Equal(t, 0, h.NumberOfVertices())
		})
	}

	h := newTestHierarchy(t, 5)
	_, err := h.InsertRange([]r3.Vector{{Z: math.NaN()}})
	assert.ErrorIs(t, err, delaunay.ErrNonFinitePoint)
}

func TestMortonKey(t *testing.T) {
	b := delaunay.DefaultOptions.Bounds

	assert.Equal(t, uint64(0), mortonKey(b.Min, b))
	assert.Equal(t, uint64(1)<<(3*mortonBits)-1, mortonKey(b.Max, b))
	assert.Equal(t, uint64(0b001), spread(1))
	assert.Equal(t, uint64(0b001001), spread(3))
	assert.Less(t, mortonKey(r3.Vector{X: -0.9, Y: -0.9, Z: -0.9}, b), mortonKey(r3.Vector{X: 0.9, Y: 0.9, Z: 0.9}, b))
}
