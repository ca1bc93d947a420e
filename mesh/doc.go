// Package mesh provides the per-vertex record used during mesh generation.
//
// A Vertex classifies a triangulation vertex against the input complex
// (the dimension of the feature it lies on, optionally marked special),
// carries an opaque feature index, a meshing scalar and a cache of
// adjacency statistics computed by the caller.
//
// Vertices can optionally carry intrusive list links so a single external
// worklist can thread through them without extra allocation. Worklist is
// such a list.
//
// Records are serialized as
//
//	<x> <y> <z> <dimension> <index>
//
// in text or little-endian binary mode. The index encoding is delegated to
// an IndexCodec.
package mesh
