// Package hierarchy accelerates point location in a dynamic 3D Delaunay
// triangulation with a stack of progressively sparser triangulations.
//
// Level 0 holds every point. Each inserted point is promoted to the next
// level with probability 1/Ratio, so level i holds about n/Ratio^i points
// and the number of levels grows like log_Ratio(n). Copies of a point on
// adjacent levels are joined by up and down links.
//
// Location starts at the sparsest level and descends: the vertex of the
// located cell nearest to the query is followed down and its incident cell
// seeds the walk one level below. Every walk is short in expectation, and
// because the underlying triangulation reports a canonical cell the answer
// is the same as locating in level 0 alone.
//
// A Hierarchy is not safe for concurrent mutation. Read-only calls may run
// concurrently with each other.
package hierarchy
