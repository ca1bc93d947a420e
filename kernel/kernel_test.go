package kernel

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
)

var (
	o  = r3.Vector{X: 0, Y: 0, Z: 0}
	ex = r3.Vector{X: 1, Y: 0, Z: 0}
	ey = r3.Vector{X: 0, Y: 1, Z: 0}
	ez = r3.Vector{X: 0, Y: 0, Z: 1}
)

func TestOrientation(t *testing.T) {
	kernels := map[string]Kernel{"filtered": Filtered{}, "exact": Exact{}}

	for name, k := range kernels {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, Positive, k.Orientation(o, ex, ey, ez))
			assert.Equal(t, Negative, k.Orientation(o, ey, ex, ez))
			assert.Equal(t, Zero, k.Orientation(o, ex, ey, r3.Vector{X: 0.3, Y: 0.7, Z: 0}))
		})
	}
}

func TestOrientation_NearDegenerate(t *testing.T) {
	// s is lifted off the plane by one ulp-ish amount; the float filter
	// cannot certify the sign and must defer to exact arithmetic.
	s := r3.Vector{X: 0.5, Y: 0.5, Z: math.Nextafter(0, 1)}
	assert.Equal(t, Positive, Filtered{}.Orientation(o, ex, ey, s))
	assert.Equal(t, Exact{}.Orientation(o, ex, ey, s), Filtered{}.Orientation(o, ex, ey, s))
}

func TestSideOfSphere(t *testing.T) {
	kernels := map[string]Kernel{"filtered": Filtered{}, "exact": Exact{}}

	tests := []struct {
		name string
		t    r3.Vector
		want Sign
	}{
		{"inside", r3.Vector{X: 0.25, Y: 0.25, Z: 0.25}, Positive},
		{"outside", r3.Vector{X: 10, Y: 10, Z: 10}, Negative},
		{"on sphere", r3.Vector{X: 1, Y: 1, Z: 1}, Zero},
		{"on sphere vertex", ex, Zero},
	}

	for name, k := range kernels {
		for _, tc := range tests {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				assert.Equal(t, tc.want, k.SideOfSphere(o, ex, ey, ez, tc.t))
			})
		}
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, 2.0, SquaredDistance(ex, ey))
	assert.Equal(t, r3.Vector{X: 0.25, Y: 0.25, Z: 0.25}, Centroid(o, ex, ey, ez))
	assert.Equal(t, r3.Vector{}, Centroid())
	assert.True(t, IsFinite(ex))
	assert.False(t, IsFinite(r3.Vector{X: math.NaN()}))
	assert.False(t, IsFinite(r3.Vector{Z: math.Inf(-1)}))
	assert.Equal(t, "positive", Positive.String())
	assert.Equal(t, "zero", Zero.String())
}
