package kernel

import (
	"math"
	"math/big"

	"github.com/golang/geo/r3"
)

// FT is the field type of the kernel.
type FT = float64

// Sign is the result of a predicate.
type Sign int8

const (
	Negative Sign = -1
	Zero     Sign = 0
	Positive Sign = 1
)

func (s Sign) String() string {
	switch s {
	case Negative:
		return "negative"
	case Positive:
		return "positive"
	default:
		return "zero"
	}
}

// Kernel supplies the predicates of a 3D Delaunay triangulation.
// Implementations must be safe for concurrent use.
type Kernel interface {
	// Orientation returns Positive if s lies on the positive side of the
	// oriented plane through p, q, r, that is det[q-p, r-p, s-p] > 0.
	Orientation(p, q, r, s r3.Vector) Sign

	// SideOfSphere returns Positive if t lies strictly inside the sphere
	// through p, q, r, s, Negative if strictly outside and Zero if on it.
	// p, q, r, s must be positively oriented.
	SideOfSphere(p, q, r, s, t r3.Vector) Sign
}

// Default is the kernel used when none is configured.
var Default Kernel = Filtered{}

const (
	orientErrBound = 1e-14
	sphereErrBound = 1e-13
)

// Filtered evaluates predicates in floating point and recomputes them
// exactly when the floating point sign is not certified.
type Filtered struct{}

// Orientation implements Kernel.
func (Filtered) Orientation(p, q, r, s r3.Vector) Sign {
	a, b, c := q.Sub(p), r.Sub(p), s.Sub(p)

	det := a.X*(b.Y*c.Z-b.Z*c.Y) + a.Y*(b.Z*c.X-b.X*c.Z) + a.Z*(b.X*c.Y-b.Y*c.X)
	perm := math.Abs(a.X)*(math.Abs(b.Y*c.Z)+math.Abs(b.Z*c.Y)) +
		math.Abs(a.Y)*(math.Abs(b.Z*c.X)+math.Abs(b.X*c.Z)) +
		math.Abs(a.Z)*(math.Abs(b.X*c.Y)+math.Abs(b.Y*c.X))

	if bound := orientErrBound * perm; det > bound {
		return Positive
	} else if det < -bound {
		return Negative
	}
	return Exact{}.Orientation(p, q, r, s)
}

// SideOfSphere implements Kernel.
func (Filtered) SideOfSphere(p, q, r, s, t r3.Vector) Sign {
	u0, u1, u2, u3 := p.Sub(t), q.Sub(t), r.Sub(t), s.Sub(t)
	l0, l1, l2, l3 := u0.Norm2(), u1.Norm2(), u2.Norm2(), u3.Norm2()

	d0, m0 := triple(u1, u2, u3)
	d1, m1 := triple(u0, u2, u3)
	d2, m2 := triple(u0, u1, u3)
	d3, m3 := triple(u0, u1, u2)

	// Cofactor expansion of the lifted 4x4 determinant along the lifted
	// column, negated so that "inside" is positive.
	det := l0*d0 - l1*d1 + l2*d2 - l3*d3
	perm := l0*m0 + l1*m1 + l2*m2 + l3*m3

	if bound := sphereErrBound * perm; det > bound {
		return Positive
	} else if det < -bound {
		return Negative
	}
	return Exact{}.SideOfSphere(p, q, r, s, t)
}

func triple(a, b, c r3.Vector) (det, perm float64) {
	det = a.Dot(b.Cross(c))
	perm = math.Abs(a.X)*(math.Abs(b.Y*c.Z)+math.Abs(b.Z*c.Y)) +
		math.Abs(a.Y)*(math.Abs(b.Z*c.X)+math.Abs(b.X*c.Z)) +
		math.Abs(a.Z)*(math.Abs(b.X*c.Y)+math.Abs(b.Y*c.X))
	return det, perm
}

// Exact evaluates predicates with arbitrary precision arithmetic.
// It is slow; Filtered only reaches it for near-degenerate inputs.
type Exact struct{}

// Orientation implements Kernel.
func (Exact) Orientation(p, q, r, s r3.Vector) Sign {
	pp := r3.PreciseVectorFromVector(p)
	a := r3.PreciseVectorFromVector(q).Sub(pp)
	b := r3.PreciseVectorFromVector(r).Sub(pp)
	c := r3.PreciseVectorFromVector(s).Sub(pp)
	return Sign(a.Dot(b.Cross(c)).Sign())
}

// SideOfSphere implements Kernel.
func (Exact) SideOfSphere(p, q, r, s, t r3.Vector) Sign {
	pt := r3.PreciseVectorFromVector(t)
	u0 := r3.PreciseVectorFromVector(p).Sub(pt)
	u1 := r3.PreciseVectorFromVector(q).Sub(pt)
	u2 := r3.PreciseVectorFromVector(r).Sub(pt)
	u3 := r3.PreciseVectorFromVector(s).Sub(pt)

	term := func(l *big.Float, a, b, c r3.PreciseVector) *big.Float {
		return new(big.Float).Mul(l, a.Dot(b.Cross(c)))
	}

	det := term(u0.Norm2(), u1, u2, u3)
	det.Sub(det, term(u1.Norm2(), u0, u2, u3))
	det.Add(det, term(u2.Norm2(), u0, u1, u3))
	det.Sub(det, term(u3.Norm2(), u0, u1, u2))
	return Sign(det.Sign())
}

// SquaredDistance returns |a-b|².
func SquaredDistance(a, b r3.Vector) FT {
	return a.Sub(b).Norm2()
}

// Centroid returns the arithmetic mean of ps.
func Centroid(ps ...r3.Vector) r3.Vector {
	var c r3.Vector
	if len(ps) == 0 {
		return c
	}
	for _, p := range ps {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(ps)))
}

// IsFinite reports whether every coordinate of p is finite.
func IsFinite(p r3.Vector) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}
