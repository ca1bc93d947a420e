package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/golang/geo/r3"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0,1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// UniformPoint returns a point with coordinates in [lo, hi).
func (r *RNG) UniformPoint(lo, hi float64) r3.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uniformLocked(lo, hi)
}

func (r *RNG) uniformLocked(lo, hi float64) r3.Vector {
	span := hi - lo
	return r3.Vector{
		X: lo + r.rand.Float64()*span,
		Y: lo + r.rand.Float64()*span,
		Z: lo + r.rand.Float64()*span,
	}
}

// UniformPoints generates num points with coordinates in [lo, hi).
func (r *RNG) UniformPoints(num int, lo, hi float64) []r3.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([]r3.Vector, num)
	for i := range pts {
		pts[i] = r.uniformLocked(lo, hi)
	}
	return pts
}

// ClusteredPoints generates points around random centers in [-0.5, 0.5)
// with gaussian spread, clamped to [-1, 1].
func (r *RNG) ClusteredPoints(num, clusters int, spread float64) []r3.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([]r3.Vector, clusters)
	for i := range centers {
		centers[i] = r.uniformLocked(-0.5, 0.5)
	}

	pts := make([]r3.Vector, num)
	for i := range pts {
		c := centers[i%clusters]
		pts[i] = r3.Vector{
			X: clamp(c.X + r.rand.NormFloat64()*spread),
			Y: clamp(c.Y + r.rand.NormFloat64()*spread),
			Z: clamp(c.Z + r.rand.NormFloat64()*spread),
		}
	}
	return pts
}

// SpherePoints generates points on the sphere of the given radius around
// the origin. Coordinates are rounded to a dyadic grid, so the points are
// only approximately cospherical and many of them are coplanar.
func (r *RNG) SpherePoints(num int, radius float64) []r3.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([]r3.Vector, num)
	for i := range pts {
		v := r3.Vector{X: r.rand.NormFloat64(), Y: r.rand.NormFloat64(), Z: r.rand.NormFloat64()}
		n := v.Norm()
		if n == 0 {
			v, n = r3.Vector{X: 1}, 1
		}
		v = v.Mul(radius / n)
		pts[i] = r3.Vector{X: dyadic(v.X), Y: dyadic(v.Y), Z: dyadic(v.Z)}
	}
	return pts
}

// Shuffle permutes pts in place.
func (r *RNG) Shuffle(pts []r3.Vector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })
}

// GridPoints returns the n*n*n lattice spanning [lo, hi] in each axis.
// Every unit cube of the lattice is cospherical, the worst case for the
// empty sphere predicate.
func GridPoints(n int, lo, hi float64) []r3.Vector {
	if n < 2 {
		return []r3.Vector{{X: lo, Y: lo, Z: lo}}
	}
	step := (hi - lo) / float64(n-1)
	pts := make([]r3.Vector, 0, n*n*n)
	for i := range n {
		for j := range n {
			for k := range n {
				pts = append(pts, r3.Vector{
					X: lo + float64(i)*step,
					Y: lo + float64(j)*step,
					Z: lo + float64(k)*step,
				})
			}
		}
	}
	return pts
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func dyadic(v float64) float64 {
	return math.Round(v*1024) / 1024
}
