package mesh

import (
	"github.com/hupe1980/meshgo/kernel"
)

// Vertex is the mesh generation record of a triangulation vertex.
// The zero value is an unclassified vertex with an invalid cache and no
// list links.
type Vertex[I any] struct {
	class       Classification
	index       I
	meshingInfo kernel.FT
	cache       cache
	links       *Links
}

type cache struct {
	facets     int
	components int
	valid      bool
}

// Classification returns the classification of v.
func (v *Vertex[I]) Classification() Classification { return v.class }

// SetDimension sets the feature dimension and clears the special flag.
// d must lie in [-1, 3], -1 meaning unclassified.
func (v *Vertex[I]) SetDimension(d int) { v.class = Classify(d) }

// InDimension returns the feature dimension regardless of the special flag.
func (v *Vertex[I]) InDimension() int { return v.class.Dimension() }

// IsSpecial reports whether v is flagged special.
func (v *Vertex[I]) IsSpecial() bool { return v.class.IsSpecial() }

// SetSpecial sets or clears the special flag. Setting then clearing it
// restores the prior classification exactly.
func (v *Vertex[I]) SetSpecial(flag bool) { v.class = v.class.WithSpecial(flag) }

// Index returns the feature index.
func (v *Vertex[I]) Index() I { return v.index }

// SetIndex sets the feature index. It is not checked against the dimension.
func (v *Vertex[I]) SetIndex(idx I) { v.index = idx }

// MeshingInfo returns the scalar attached by the mesher.
func (v *Vertex[I]) MeshingInfo() kernel.FT { return v.meshingInfo }

// SetMeshingInfo sets the scalar attached by the mesher.
func (v *Vertex[I]) SetMeshingInfo(x kernel.FT) { v.meshingInfo = x }

// SetCache stores adjacency statistics and marks them valid.
func (v *Vertex[I]) SetCache(facets, components int) {
	v.cache = cache{facets: facets, components: components, valid: true}
}

// InvalidateCache marks the cached statistics stale. The stored values
// stay readable until the next SetCache.
//
// Nothing invalidates the cache automatically: callers changing the
// topology around a vertex must call it.
func (v *Vertex[I]) InvalidateCache() { v.cache.valid = false }

// IsCacheValid reports whether the cached statistics are current.
func (v *Vertex[I]) IsCacheValid() bool { return v.cache.valid }

// CachedFacets returns the cached facet count, possibly stale.
func (v *Vertex[I]) CachedFacets() int { return v.cache.facets }

// CachedComponents returns the cached component count, possibly stale.
func (v *Vertex[I]) CachedComponents() int { return v.cache.components }
