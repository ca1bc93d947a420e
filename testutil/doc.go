// Package testutil provides testing utilities for meshgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for point sets, including degenerate
// configurations that stress the exact predicates.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(1000, -1, 1)   // uniform in a cube
//	pts = rng.ClusteredPoints(1000, 8, 0.05) // gaussian blobs
//	pts = testutil.GridPoints(4, -1, 1)      // cospherical lattice
//	pts = rng.SpherePoints(100, 0.5)         // all on one sphere
package testutil
