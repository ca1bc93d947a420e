package meshgo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/delaunay"
	"github.com/hupe1980/meshgo/hierarchy"
	"github.com/hupe1980/meshgo/mesh"
	"github.com/hupe1980/meshgo/snapshot"
)

// VertexHandle references a point of a Mesh.
type VertexHandle = delaunay.VertexHandle

// Mesh is a Delaunay hierarchy whose points carry mesh vertex records
// indexed with I.
type Mesh[I any] struct {
	h        *hierarchy.Hierarchy[mesh.Vertex[I]]
	codec    mesh.IndexCodec[I]
	snapshot snapshot.Options
	metrics  MetricsCollector
	logger   *Logger
	last     *lastOp
}

// lastOp remembers the level count of the latest insert or remove and
// forwards every measurement to the configured observer.
type lastOp struct {
	next   hierarchy.Observer
	levels int
}

func (o *lastOp) OnInsert(levels int) {
	o.levels = levels
	o.next.OnInsert(levels)
}

func (o *lastOp) OnRemove(levels int) {
	o.levels = levels
	o.next.OnRemove(levels)
}

// OnLocate forwards only. Locate reads its steps from the result.
func (o *lastOp) OnLocate(levels, steps int) {
	o.next.OnLocate(levels, steps)
}

// New creates an empty Mesh whose records use codec for the feature index.
func New[I any](codec mesh.IndexCodec[I], optFns ...Option) (*Mesh[I], error) {
	opts := options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.metricsCollector == nil {
		opts.metricsCollector = NoopMetricsCollector{}
	}
	if opts.logger == nil {
		opts.logger = NoopLogger()
	}

	last := &lastOp{}
	h, err := hierarchy.New[mesh.Vertex[I]](append(opts.hierarchy, func(o *hierarchy.Options) {
		if o.Logger == nil {
			o.Logger = opts.logger.Logger
		}
		last.next = o.Observer
		if last.next == nil {
			last.next = hierarchy.NoopObserver{}
		}
		o.Observer = last
	})...)
	if err != nil {
		return nil, err
	}

	return &Mesh[I]{
		h:        h,
		codec:    codec,
		snapshot: snapshot.ApplyOptions(opts.snapshot...),
		metrics:  opts.metricsCollector,
		logger:   opts.logger,
		last:     last,
	}, nil
}

// Hierarchy exposes the underlying hierarchy for inspection.
func (m *Mesh[I]) Hierarchy() *hierarchy.Hierarchy[mesh.Vertex[I]] { return m.h }

// Codec returns the index codec.
func (m *Mesh[I]) Codec() mesh.IndexCodec[I] { return m.codec }

// IOSignature returns the record signature of this mesh.
func (m *Mesh[I]) IOSignature() string { return mesh.IOSignature(m.codec) }

// Len returns the number of points.
func (m *Mesh[I]) Len() int { return m.h.NumberOfVertices() }

// Contains reports whether v references a live point.
func (m *Mesh[I]) Contains(v VertexHandle) bool { return m.h.Contains(v) }

// Vertices iterates the points.
func (m *Mesh[I]) Vertices() iter.Seq[VertexHandle] { return m.h.Vertices() }

// Insert adds p with an unclassified record. Inserting an existing point
// returns its handle and leaves its record unchanged.
func (m *Mesh[I]) Insert(ctx context.Context, p r3.Vector) (VertexHandle, error) {
	start := time.Now()
	m.last.levels = 0
	v, err := m.h.Insert(p)
	err = translateError(err)

	m.metrics.RecordInsert(m.last.levels, time.Since(start), err)
	m.logger.LogInsert(ctx, p, m.last.levels, err)
	return v, err
}

// InsertVertex inserts p and classifies it as lying on the feature of
// dimension dim with index idx. If p is already present its record is
// reclassified, the same way ReadRecords treats a repeated point.
func (m *Mesh[I]) InsertVertex(ctx context.Context, p r3.Vector, dim int, idx I) (VertexHandle, error) {
	v, err := m.Insert(ctx, p)
	if err != nil {
		return v, err
	}
	rec := m.h.Payload(v)
	rec.SetDimension(dim)
	rec.SetIndex(idx)
	return v, nil
}

// Remove deletes the point v from every level.
func (m *Mesh[I]) Remove(ctx context.Context, v VertexHandle) error {
	start := time.Now()
	var err error
	if !m.h.Contains(v) {
		err = fmt.Errorf("%w: %s", ErrNotFound, v)
		m.last.levels = 0
	} else {
		m.h.Remove(v)
	}

	m.metrics.RecordRemove(m.last.levels, time.Since(start), err)
	m.logger.LogRemove(ctx, v, err)
	return err
}

// Locate returns the location of q in the complete triangulation. Steps
// counts the walk steps over all levels. Locate may run concurrently with
// other read-only calls.
func (m *Mesh[I]) Locate(ctx context.Context, q r3.Vector) delaunay.Location {
	start := time.Now()
	loc := m.h.LocateWithType(q)

	m.metrics.RecordLocate(loc.Steps, time.Since(start))
	m.logger.LogLocate(ctx, q, loc)
	return loc
}

// Vertex returns the record of v. The pointer is valid until the next
// Insert, Remove or Load.
func (m *Mesh[I]) Vertex(v VertexHandle) (*mesh.Vertex[I], error) {
	if !m.h.Contains(v) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, v)
	}
	return m.h.Payload(v), nil
}

// Point returns the position of v.
func (m *Mesh[I]) Point(v VertexHandle) (r3.Vector, error) {
	if !m.h.Contains(v) {
		return r3.Vector{}, fmt.Errorf("%w: %s", ErrNotFound, v)
	}
	return m.h.Point(v), nil
}

// BoundingBox returns the smallest box containing every point.
func (m *Mesh[I]) BoundingBox() (delaunay.Box, error) {
	if m.Len() == 0 {
		return delaunay.Box{}, ErrEmpty
	}
	pts := make([]r3.Vector, 0, m.Len())
	for v := range m.h.Vertices() {
		pts = append(pts, m.h.Point(v))
	}
	return delaunay.BoundingBox(pts), nil
}

// Stats returns per-level statistics, level 0 first.
func (m *Mesh[I]) Stats() []hierarchy.LevelStats { return m.h.Stats() }

// Validate checks the structural invariants of every level.
func (m *Mesh[I]) Validate() error { return m.h.Validate() }

// Clear removes all points.
func (m *Mesh[I]) Clear() { m.h.Clear() }

// WriteRecords writes the record of every point to w and returns the
// number of records written. Unclassified points fail with
// mesh.ErrUnclassifiedVertex.
func (m *Mesh[I]) WriteRecords(w io.Writer, mode mesh.Mode) (int, error) {
	mw := mesh.NewWriter(w, mode)
	n := 0
	for v := range m.h.Vertices() {
		if err := mesh.WriteVertex(mw, m.h.Point(v), m.h.Payload(v), m.codec); err != nil {
			return n, fmt.Errorf("write vertex %s: %w", v, err)
		}
		n++
	}
	return n, mw.Flush()
}

// ReadRecords inserts every record of r and returns the number read. A
// record for an existing point replaces its dimension and index. A record
// with a dimension outside [0, 4) fails with mesh.ErrDimensionOutOfRange.
func (m *Mesh[I]) ReadRecords(ctx context.Context, r io.Reader, mode mesh.Mode) (n int, err error) {
	defer func() {
		if v := recover(); v != nil {
			e, ok := v.(error)
			if !ok || !errors.Is(e, mesh.ErrDimensionOutOfRange) {
				panic(v)
			}
			err = fmt.Errorf("read record %d: %w", n, e)
		}
	}()

	mr := mesh.NewReader(r, mode)
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		p, rec, err := mesh.ReadVertex(mr, m.codec)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("read record %d: %w", n, err)
		}
		v, err := m.h.Insert(p)
		if err != nil {
			return n, translateError(err)
		}
		dst := m.h.Payload(v)
		dst.SetDimension(rec.InDimension())
		dst.SetIndex(rec.Index())
		n++
	}
}

// Save writes all records into an archive named name in store.
func (m *Mesh[I]) Save(ctx context.Context, store snapshot.Store, name string) error {
	start := time.Now()
	data, n, err := m.encode()
	if err == nil {
		err = translateError(store.Put(ctx, name, data))
	}

	m.metrics.RecordSnapshot(false, len(data), time.Since(start), err)
	m.logger.LogSnapshot(ctx, name, n, len(data), err)
	return err
}

func (m *Mesh[I]) encode() ([]byte, int, error) {
	var buf bytes.Buffer
	n, err := m.WriteRecords(&buf, m.snapshot.Mode)
	if err != nil {
		return nil, n, err
	}
	data, err := snapshot.Encode(m.IOSignature(), uint64(n), buf.Bytes(), m.snapshot)
	return data, n, err
}

// Load reads the archive named name from store and inserts its records.
// The archive must have been written with the same index codec.
func (m *Mesh[I]) Load(ctx context.Context, store snapshot.Store, name string) (int, error) {
	start := time.Now()
	data, err := store.Get(ctx, name)
	n := 0
	if err == nil {
		n, err = m.decode(ctx, data)
	}
	err = translateError(err)

	m.metrics.RecordSnapshot(true, len(data), time.Since(start), err)
	m.logger.LogLoad(ctx, name, n, err)
	return n, err
}

func (m *Mesh[I]) decode(ctx context.Context, data []byte) (int, error) {
	a, err := snapshot.Decode(data)
	if err != nil {
		return 0, err
	}
	if sig := m.IOSignature(); a.Signature != sig {
		return 0, &ErrSignatureMismatch{Expected: sig, Actual: a.Signature}
	}
	n, err := m.ReadRecords(ctx, bytes.NewReader(a.Payload), a.Header.Mode)
	if err != nil {
		return n, err
	}
	if uint64(n) != a.Header.Count {
		return n, fmt.Errorf("snapshot: archive holds %d records, header says %d", n, a.Header.Count)
	}
	return n, nil
}

// Open creates a Mesh and loads the archive named name into it.
func Open[I any](ctx context.Context, store snapshot.Store, name string, codec mesh.IndexCodec[I], optFns ...Option) (*Mesh[I], error) {
	m, err := New(codec, optFns...)
	if err != nil {
		return nil, err
	}
	if _, err := m.Load(ctx, store, name); err != nil {
		return nil, err
	}
	return m, nil
}
