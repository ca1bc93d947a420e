package mesh

import (
	"errors"
	"fmt"
)

// ErrInvalidDimension is returned by codecs asked to encode an index for a
// dimension they have no encoding for.
var ErrInvalidDimension = errors.New("mesh: no index encoding for dimension")

// IndexCodec encodes feature indices. The dimension tells the codec which
// kind of feature the index refers to.
type IndexCodec[I any] interface {
	WriteIndex(w *Writer, dim int, idx I) error
	ReadIndex(r *Reader, dim int) (I, error)
	// Signature identifies the index encoding in stream signatures.
	Signature() string
}

// IntCodec encodes plain integer indices for every dimension.
type IntCodec struct{}

// WriteIndex implements IndexCodec.
func (IntCodec) WriteIndex(w *Writer, _ int, idx int) error {
	return w.WriteInt(int64(idx))
}

// ReadIndex implements IndexCodec.
func (IntCodec) ReadIndex(r *Reader, _ int) (int, error) {
	v, err := r.ReadInt()
	return int(v), err
}

// Signature implements IndexCodec.
func (IntCodec) Signature() string { return "i" }

// DomainIndex identifies the feature of a mesh domain a vertex lies on.
// Only the field matching the vertex dimension is meaningful.
type DomainIndex struct {
	// Subdomain of a volume vertex (dimension 3).
	Subdomain int
	// Patch is the pair of subdomains separated by the surface patch of a
	// dimension 2 vertex.
	Patch [2]int
	// Curve of a dimension 1 vertex.
	Curve int
	// Corner of a dimension 0 vertex.
	Corner int
}

// SubdomainIndex returns the index of subdomain id.
func SubdomainIndex(id int) DomainIndex { return DomainIndex{Subdomain: id} }

// PatchIndex returns the index of the surface patch between a and b.
func PatchIndex(a, b int) DomainIndex { return DomainIndex{Patch: [2]int{a, b}} }

// CurveIndex returns the index of curve id.
func CurveIndex(id int) DomainIndex { return DomainIndex{Curve: id} }

// CornerIndex returns the index of corner id.
func CornerIndex(id int) DomainIndex { return DomainIndex{Corner: id} }

// DomainIndexCodec encodes a DomainIndex as the field selected by the dimension.
type DomainIndexCodec struct{}

// WriteIndex implements IndexCodec.
func (DomainIndexCodec) WriteIndex(w *Writer, dim int, idx DomainIndex) error {
	switch dim {
	case 3:
		return w.WriteInt(int64(idx.Subdomain))
	case 2:
		if err := w.WriteInt(int64(idx.Patch[0])); err != nil {
			return err
		}
		return w.WriteInt(int64(idx.Patch[1]))
	case 1:
		return w.WriteInt(int64(idx.Curve))
	case 0:
		return w.WriteInt(int64(idx.Corner))
	default:
		return fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
}

// ReadIndex implements IndexCodec.
func (DomainIndexCodec) ReadIndex(r *Reader, dim int) (DomainIndex, error) {
	var idx DomainIndex
	switch dim {
	case 3:
		v, err := r.ReadInt()
		idx.Subdomain = int(v)
		return idx, err
	case 2:
		a, err := r.ReadInt()
		if err != nil {
			return idx, err
		}
		b, err := r.ReadInt()
		idx.Patch = [2]int{int(a), int(b)}
		return idx, err
	case 1:
		v, err := r.ReadInt()
		idx.Curve = int(v)
		return idx, err
	case 0:
		v, err := r.ReadInt()
		idx.Corner = int(v)
		return idx, err
	default:
		return idx, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
}

// Signature implements IndexCodec.
func (DomainIndexCodec) Signature() string { return "v<i,p<i,i>,c<i>,k<i>>" }
