package hierarchy

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math/rand"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/delaunay"
	"github.com/hupe1980/meshgo/kernel"
)

// ErrVertexNotFound is the panic value for removing a handle that is not a
// live level 0 vertex.
var ErrVertexNotFound = errors.New("hierarchy: vertex not found")

// Vertex is the payload of every level vertex.
type Vertex[P any] struct {
	// Payload is the caller's data. It is only kept at level 0; copies on
	// upper levels hold the zero value.
	Payload P

	up, down delaunay.VertexHandle
	id       uint32
}

// Up returns the copy of the vertex one level above, if any.
func (v *Vertex[P]) Up() delaunay.VertexHandle { return v.up }

// Down returns the copy of the vertex one level below. It is zero at level 0.
func (v *Vertex[P]) Down() delaunay.VertexHandle { return v.down }

// ID returns the point id shared by all copies of the vertex.
func (v *Vertex[P]) ID() uint32 { return v.id }

// Level is one triangulation of the stack.
type Level[P any] = delaunay.Triangulation[Vertex[P]]

// LevelStats describes one level.
type LevelStats struct {
	Level       int
	Vertices    int
	Cells       int
	FiniteCells int
}

// Hierarchy is a multi-level Delaunay triangulation.
type Hierarchy[P any] struct {
	opts     Options
	levels   []*Level[P]
	members  []*roaring.Bitmap
	rng      *rand.Rand
	nextID   uint32
	logger   *slog.Logger
	observer Observer
}

// New creates an empty Hierarchy with a single level.
func New[P any](optFns ...func(o *Options)) (*Hierarchy[P], error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Ratio < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRatio, opts.Ratio)
	}
	if opts.MaxLevels < 0 || (opts.Ratio == 1 && opts.MaxLevels == 0) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxLevels, opts.MaxLevels)
	}

	var rng *rand.Rand
	if opts.RandomSeed != nil {
		rng = rand.New(rand.NewSource(*opts.RandomSeed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	observer := opts.Observer
	if observer == nil {
		observer = NoopObserver{}
	}

	h := &Hierarchy[P]{
		opts:     opts,
		rng:      rng,
		logger:   logger,
		observer: observer,
	}
	h.addLevel()
	return h, nil
}

// Options returns the options the hierarchy was created with.
func (h *Hierarchy[P]) Options() Options { return h.opts }

func (h *Hierarchy[P]) addLevel() {
	seed := h.rng.Int63()
	opts := h.opts.Triangulation
	level := delaunay.New[Vertex[P]](func(o *delaunay.Options) {
		*o = opts
		o.RandomSeed = &seed
	})
	h.levels = append(h.levels, level)
	h.members = append(h.members, roaring.New())
	h.logger.Debug("hierarchy level created", "level", len(h.levels)-1)
}

// dropEmptyLevels discards empty levels at the top. Level 0 always stays.
func (h *Hierarchy[P]) dropEmptyLevels() {
	for n := len(h.levels); n > 1 && h.levels[n-1].NumberOfVertices() == 0; n-- {
		h.levels = h.levels[:n-1]
		h.members = h.members[:n-1]
		h.logger.Debug("hierarchy level dropped", "level", n-1)
	}
}

// promote draws whether a point present on level l-1 is copied to level l.
func (h *Hierarchy[P]) promote(l int) bool {
	if h.opts.Policy == CompactLocation {
		return false
	}
	if h.opts.MaxLevels > 0 && l >= h.opts.MaxLevels {
		return false
	}
	return h.opts.Ratio == 1 || h.rng.Intn(h.opts.Ratio) == 0
}

// NumberOfLevels returns the number of levels, at least 1.
func (h *Hierarchy[P]) NumberOfLevels() int { return len(h.levels) }

// Level returns level i. Level 0 is the complete triangulation.
func (h *Hierarchy[P]) Level(i int) *Level[P] { return h.levels[i] }

// NumberOfVertices returns the number of points.
func (h *Hierarchy[P]) NumberOfVertices() int { return h.levels[0].NumberOfVertices() }

// Contains reports whether v is a live level 0 vertex.
func (h *Hierarchy[P]) Contains(v delaunay.VertexHandle) bool {
	return h.levels[0].Contains(v) && !h.levels[0].IsBounding(v)
}

// Vertices iterates the level 0 vertices.
func (h *Hierarchy[P]) Vertices() iter.Seq[delaunay.VertexHandle] {
	return h.levels[0].Vertices()
}

// Point returns the position of the level 0 vertex v.
func (h *Hierarchy[P]) Point(v delaunay.VertexHandle) r3.Vector { return h.levels[0].Point(v) }

// Payload returns a pointer to the payload of the level 0 vertex v. The
// pointer is valid until the next Insert, Remove or Clear.
func (h *Hierarchy[P]) Payload(v delaunay.VertexHandle) *P {
	return &h.levels[0].Payload(v).Payload
}

// Up returns the copy one level above of vertex v of the given level.
func (h *Hierarchy[P]) Up(level int, v delaunay.VertexHandle) (delaunay.VertexHandle, bool) {
	if level < 0 || level+1 >= len(h.levels) || !h.levels[level].Contains(v) {
		return delaunay.VertexHandle{}, false
	}
	up := h.levels[level].Payload(v).up
	return up, !up.IsZero() && h.levels[level+1].Contains(up)
}

// Down returns the copy one level below of vertex v of the given level.
func (h *Hierarchy[P]) Down(level int, v delaunay.VertexHandle) (delaunay.VertexHandle, bool) {
	if level < 1 || level >= len(h.levels) || !h.levels[level].Contains(v) {
		return delaunay.VertexHandle{}, false
	}
	down := h.levels[level].Payload(v).down
	return down, !down.IsZero() && h.levels[level-1].Contains(down)
}

// Insert adds p and returns its level 0 handle. A point equal to an existing
// one returns the existing handle and is not promoted.
func (h *Hierarchy[P]) Insert(p r3.Vector) (delaunay.VertexHandle, error) {
	if !kernel.IsFinite(p) {
		return delaunay.VertexHandle{}, delaunay.ErrNonFinitePoint
	}
	hints, _, _ := h.descend(p)

	v0, inserted, err := h.levels[0].Insert(p, hints[0])
	if err != nil {
		return delaunay.VertexHandle{}, err
	}
	if !inserted {
		h.observer.OnInsert(0)
		return v0, nil
	}

	id := h.nextID
	h.nextID++
	h.levels[0].Payload(v0).id = id
	h.members[0].Add(id)

	below := v0
	l := 1
	for ; h.promote(l); l++ {
		var hint delaunay.CellHandle
		if l == len(h.levels) {
			h.addLevel()
		} else if l < len(hints) {
			hint = hints[l]
		}
		vl, _, err := h.levels[l].Insert(p, hint)
		if err != nil {
			// Levels share bounds, so this only happens on a corrupted stack.
			panic(fmt.Errorf("hierarchy: promote to level %d: %w", l, err))
		}
		x := h.levels[l].Payload(vl)
		x.id = id
		x.down = below
		h.levels[l-1].Payload(below).up = vl
		h.members[l].Add(id)
		below = vl
	}

	h.observer.OnInsert(l)
	return v0, nil
}

// Remove deletes the level 0 vertex v and all its copies. It panics if v
// is not a live level 0 vertex.
func (h *Hierarchy[P]) Remove(v delaunay.VertexHandle) {
	if !h.Contains(v) {
		panic(fmt.Errorf("%w: %s", ErrVertexNotFound, v))
	}

	id := h.levels[0].Payload(v).id
	cur := v
	l := 0
	for ; l < len(h.levels) && !cur.IsZero(); l++ {
		next := h.levels[l].Payload(cur).up
		h.levels[l].Remove(cur)
		h.members[l].Remove(id)
		cur = next
	}
	h.dropEmptyLevels()
	h.observer.OnRemove(l)
}

// Locate returns the level 0 cell containing q.
func (h *Hierarchy[P]) Locate(q r3.Vector) delaunay.CellHandle {
	return h.LocateWithType(q).Cell
}

// LocateWithType returns the level 0 location of q. Cell, type and face
// indices are identical to Level(0).Locate(q) with any hint; Steps counts
// the walk steps over all levels. It may run concurrently with other
// read-only calls.
func (h *Hierarchy[P]) LocateWithType(q r3.Vector) delaunay.Location {
	_, loc, steps := h.descend(q)
	loc.Steps = steps
	h.observer.OnLocate(len(h.levels), steps)
	return loc
}

// descend locates q on every level from the top down. It returns the cell
// found on each level, the level 0 location and the total walk steps.
func (h *Hierarchy[P]) descend(q r3.Vector) ([]delaunay.CellHandle, delaunay.Location, int) {
	cells := make([]delaunay.CellHandle, len(h.levels))
	var (
		hint  delaunay.CellHandle
		loc   delaunay.Location
		steps int
	)
	for l := len(h.levels) - 1; l >= 0; l-- {
		level := h.levels[l]
		loc = level.Locate(q, hint)
		cells[l] = loc.Cell
		steps += loc.Steps
		if l == 0 {
			break
		}

		hint = delaunay.CellHandle{}
		if nearest, ok := level.NearestVertex(loc.Cell, q); ok {
			down := level.Payload(nearest).down
			hint = h.levels[l-1].IncidentCell(down)
		}
	}
	return cells, loc, steps
}

// Stats returns per-level statistics, level 0 first.
func (h *Hierarchy[P]) Stats() []LevelStats {
	stats := make([]LevelStats, len(h.levels))
	for i, level := range h.levels {
		stats[i] = LevelStats{
			Level:       i,
			Vertices:    level.NumberOfVertices(),
			Cells:       level.NumberOfCells(),
			FiniteCells: level.NumberOfFiniteCells(),
		}
	}
	return stats
}

// Clear removes every point and all upper levels.
func (h *Hierarchy[P]) Clear() {
	h.levels[0].Clear()
	h.members[0].Clear()
	h.levels = h.levels[:1]
	h.members = h.members[:1]
	h.nextID = 0
}

// Validate checks the level stack: every level is a valid triangulation,
// the point set of each level is contained in the one below, and up and
// down links are mutual and join copies of the same point.
func (h *Hierarchy[P]) Validate() error {
	for l, level := range h.levels {
		if err := level.IsValid(); err != nil {
			return fmt.Errorf("level %d: %w", l, err)
		}
		if got, want := h.members[l].GetCardinality(), uint64(level.NumberOfVertices()); got != want {
			return fmt.Errorf("level %d: %d member ids for %d vertices", l, got, want)
		}
		if l > 0 {
			if extra := roaring.AndNot(h.members[l], h.members[l-1]); !extra.IsEmpty() {
				return fmt.Errorf("level %d: %d points missing from level %d", l, extra.GetCardinality(), l-1)
			}
		}
		if l > 0 && l == len(h.levels)-1 && level.NumberOfVertices() == 0 {
			return fmt.Errorf("level %d: empty top level", l)
		}

		for v := range level.Vertices() {
			if err := h.validateVertex(l, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Hierarchy[P]) validateVertex(l int, v delaunay.VertexHandle) error {
	level := h.levels[l]
	x := level.Payload(v)
	if !h.members[l].Contains(x.id) {
		return fmt.Errorf("level %d: vertex %s id %d not a member", l, v, x.id)
	}

	if l == 0 {
		if !x.down.IsZero() {
			return fmt.Errorf("level 0: vertex %s links down", v)
		}
	} else {
		below := h.levels[l-1]
		if !below.Contains(x.down) || below.IsBounding(x.down) {
			return fmt.Errorf("level %d: vertex %s has dangling down link", l, v)
		}
		d := below.Payload(x.down)
		if d.up != v || d.id != x.id || below.Point(x.down) != level.Point(v) {
			return fmt.Errorf("level %d: vertex %s down link not mutual", l, v)
		}
	}

	if x.up.IsZero() {
		return nil
	}
	if l+1 >= len(h.levels) || !h.levels[l+1].Contains(x.up) {
		return fmt.Errorf("level %d: vertex %s has dangling up link", l, v)
	}
	if h.levels[l+1].Payload(x.up).down != v {
		return fmt.Errorf("level %d: vertex %s up link not mutual", l, v)
	}
	return nil
}
