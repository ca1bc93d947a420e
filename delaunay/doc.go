// Package delaunay implements a dynamic 3D Delaunay triangulation.
//
// It is the single-level engine the location hierarchy is built from. The
// triangulation is generic over a per-vertex payload V, so callers layer
// their own vertex record onto it without a second lookup table.
//
// # Structure
//
//   - Vertices and cells live in generation-checked arenas. Handles stay
//     valid until the referenced element is removed and never alias a
//     reused slot.
//   - Every cell is a positively oriented tetrahedron. Neighbor i is the
//     cell across the facet opposite vertex i.
//   - Four far-away bounding vertices enclose the configured Bounds. They
//     are never reported by Vertices and NumberOfVertices.
//
// # Operations
//
//   - Insert: Bowyer-Watson cavity retriangulation seeded by a walk.
//   - Locate: remembering stochastic walk. The returned cell is canonical,
//     it does not depend on the hint.
//   - Remove: the hole left by the vertex star is refilled with the cells
//     of the Delaunay triangulation of its link. A full rebuild is the
//     fallback for degenerate links.
//
// A Triangulation is not safe for concurrent mutation.
package delaunay
