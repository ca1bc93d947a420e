package mesh

import (
	"errors"
	"fmt"
	"io"

	"github.com/golang/geo/r3"
)

// ErrUnclassifiedVertex is returned when writing a vertex with no feature
// dimension. Only classified vertices have a stream representation.
var ErrUnclassifiedVertex = errors.New("mesh: unclassified vertex")

// baseSignature identifies the base vertex fields, the point coordinates.
const baseSignature = "p3"

// IOSignature returns the stream signature of vertices indexed with codec.
func IOSignature[I any](codec IndexCodec[I]) string {
	return baseSignature + "+i+" + codec.Signature()
}

// WriteVertex writes the record of the vertex at p. The special flag is not
// part of the record.
func WriteVertex[I any](w *Writer, p r3.Vector, v *Vertex[I], codec IndexCodec[I]) error {
	dim := v.InDimension()
	if dim < 0 {
		return ErrUnclassifiedVertex
	}
	for _, x := range [3]float64{p.X, p.Y, p.Z} {
		if err := w.WriteFloat(x); err != nil {
			return err
		}
	}
	if err := w.WriteInt(int64(dim)); err != nil {
		return err
	}
	if err := codec.WriteIndex(w, dim, v.Index()); err != nil {
		return err
	}
	return w.EndRecord()
}

// ReadVertex reads a record written by WriteVertex. At the end of the
// stream it returns io.EOF. It panics if the dimension lies outside [0, 4).
func ReadVertex[I any](r *Reader, codec IndexCodec[I]) (r3.Vector, Vertex[I], error) {
	var (
		p r3.Vector
		v Vertex[I]
	)
	x, err := r.ReadFloat()
	if err != nil {
		return p, v, err
	}
	if p.Y, err = r.ReadFloat(); err != nil {
		return p, v, unexpected(err)
	}
	if p.Z, err = r.ReadFloat(); err != nil {
		return p, v, unexpected(err)
	}
	p.X = x

	d, err := r.ReadInt()
	if err != nil {
		return p, v, unexpected(err)
	}
	if d < 0 || d >= 4 {
		panic(fmt.Errorf("%w: read %d", ErrDimensionOutOfRange, d))
	}

	idx, err := codec.ReadIndex(r, int(d))
	if err != nil {
		return p, v, unexpected(err)
	}
	v.SetDimension(int(d))
	v.SetIndex(idx)
	return p, v, nil
}

// unexpected reports a stream ending inside a record.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
