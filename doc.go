// Package meshgo maintains 3D point sets for mesh generation on top of a
// Delaunay hierarchy.
//
// A Mesh is a stack of Delaunay triangulations: every point lives in the
// bottom level and is copied into each level above with probability
// 1/Ratio. Point location walks the sparse top level first and uses every
// result as the starting hint one level down, which keeps the expected
// location cost logarithmic in the number of points.
//
// # Quick Start
//
//	m, _ := meshgo.New[int](mesh.IntCodec{})
//	v, _ := m.InsertVertex(ctx, r3.Vector{X: 0.1, Y: 0.2, Z: 0.3}, 3, 7)
//	loc := m.Locate(ctx, r3.Vector{})
//	fmt.Println(loc.Type, m.Len())
//
// # Vertex Records
//
// Each point carries a mesh.Vertex record: the dimension of the input
// feature the point lies on (3 volume, 2 surface, 1 curve, 0 corner), the
// index of that feature, a meshing scalar and a cached incidence summary.
// Records are written as
//
//	<x> <y> <z> <dimension> <index>
//
// in text or fixed-width binary form; the index layout is defined by the
// mesh.IndexCodec the Mesh was created with.
//
// # Snapshots
//
// Save writes all records into a checksummed, optionally compressed
// archive in a snapshot.Store; Load reinserts them. Upper levels are not
// persisted and are redrawn on load:
//
//	store, _ := snapshot.NewLocalStore("./meshes")
//	_ = m.Save(ctx, store, "run-1.msh")
//	m2, _ := meshgo.Open[int](ctx, store, "run-1.msh", mesh.IntCodec{})
//
// Object stores live in snapshot/minio and snapshot/s3.
//
// # Concurrency
//
// A Mesh has a single writer. Read-only calls may run concurrently with
// each other but not with Insert, Remove or Load.
package meshgo
