// Package kernel provides the geometric kernel used by the triangulation:
// the scalar type and the two predicates 3D Delaunay triangulation needs.
//
// Points are r3.Vector values from github.com/golang/geo. The default
// kernel evaluates predicates in float64 and falls back to exact
// arithmetic (r3.PreciseVector) when the float result is too close to zero
// to trust its sign.
package kernel
