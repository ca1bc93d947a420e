package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVertex_ZeroValue(t *testing.T) {
	var v Vertex[int]

	assert.Equal(t, -1, v.InDimension())
	assert.False(t, v.IsSpecial())
	assert.False(t, v.IsCacheValid())
	assert.False(t, v.HasLinks())
	assert.False(t, v.IsLinked())
	assert.Equal(t, Unclassified, v.Classification().Kind())
}

func TestVertex_SetDimension(t *testing.T) {
	for d := -1; d <= 3; d++ {
		var v Vertex[int]
		v.SetDimension(d)
		assert.Equal(t, d, v.InDimension())
		assert.False(t, v.IsSpecial())
	}

	var v Vertex[int]
	assert.Panics(t, func() { v.SetDimension(4) })
	assert.Panics(t, func() { v.SetDimension(-2) })
}

func TestVertex_SetDimensionClearsSpecial(t *testing.T) {
	var v Vertex[int]
	v.SetDimension(2)
	v.SetSpecial(true)
	assert.True(t, v.IsSpecial())

	v.SetDimension(2)

	assert.False(t, v.IsSpecial())
	assert.Equal(t, 2, v.InDimension())
}

func TestVertex_SpecialInvolution(t *testing.T) {
	for d := -1; d <= 3; d++ {
		var v Vertex[int]
		v.SetDimension(d)
		before := v.Classification()

		v.SetSpecial(true)
		assert.True(t, v.IsSpecial(), "dimension %d", d)
		assert.Equal(t, d, v.InDimension())

		v.SetSpecial(true)
		assert.True(t, v.IsSpecial())

		v.SetSpecial(false)
		assert.False(t, v.IsSpecial())
		assert.Equal(t, before, v.Classification())

		v.SetSpecial(false)
		assert.Equal(t, before, v.Classification())
	}
}

func TestVertex_IndexIndependentOfDimension(t *testing.T) {
	var v Vertex[DomainIndex]
	v.SetIndex(PatchIndex(1, 2))
	v.SetDimension(3)

	assert.Equal(t, PatchIndex(1, 2), v.Index())
	assert.Equal(t, 3, v.InDimension())
}

func TestVertex_MeshingInfo(t *testing.T) {
	var v Vertex[int]
	v.SetMeshingInfo(0.125)

	assert.Equal(t, 0.125, v.MeshingInfo())
}

func TestVertex_Cache(t *testing.T) {
	var v Vertex[int]

	v.SetCache(3, 1)
	assert.True(t, v.IsCacheValid())
	assert.Equal(t, 3, v.CachedFacets())
	assert.Equal(t, 1, v.CachedComponents())

	v.InvalidateCache()
	assert.False(t, v.IsCacheValid())
	assert.Equal(t, 3, v.CachedFacets())
	assert.Equal(t, 1, v.CachedComponents())

	v.SetCache(0, 2)
	assert.True(t, v.IsCacheValid())
	assert.Equal(t, 0, v.CachedFacets())
	assert.Equal(t, 2, v.CachedComponents())
}

func TestClassification_String(t *testing.T) {
	assert.Equal(t, "unclassified", Classify(-1).String())
	assert.Equal(t, "ordinary(2)", Classify(2).String())
	assert.Equal(t, "special(0)", Classify(0).WithSpecial(true).String())
	assert.Equal(t, "special(-1)", Classify(-1).WithSpecial(true).String())
}
