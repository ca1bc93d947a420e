package main

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/testutil"
)

// generatePoints draws n points of the named distribution inside the unit
// box [-1,1]^3.
func generatePoints(rng *testutil.RNG, distribution string, n int) []r3.Vector {
	switch distribution {
	case "clustered":
		return rng.ClusteredPoints(n, max(1, n/1000), 0.05)
	case "sphere":
		return rng.SpherePoints(n, 0.9)
	case "grid":
		side := int(math.Ceil(math.Cbrt(float64(n))))
		pts := testutil.GridPoints(max(side, 1), -1, 1)
		rng.Shuffle(pts)
		return pts[:min(n, len(pts))]
	default:
		return rng.UniformPoints(n, -1, 1)
	}
}
