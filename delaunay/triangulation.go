package delaunay

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/internal/arena"
	"github.com/hupe1980/meshgo/kernel"
)

// Triangulation is a dynamic 3D Delaunay triangulation whose vertices carry
// a payload of type V.
type Triangulation[V any] struct {
	opts     Options
	k        kernel.Kernel
	rng      *rand.Rand
	vertices *arena.Arena[vertex[V]]
	cells    *arena.Arena[cell]
	bounding [4]VertexHandle
	finite   int
	last     CellHandle
}

// New creates an empty Triangulation.
func New[V any](optFns ...func(o *Options)) *Triangulation[V] {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Kernel == nil {
		opts.Kernel = kernel.Default
	}

	var seed uint64
	if opts.RandomSeed != nil {
		seed = uint64(*opts.RandomSeed)
	} else {
		seed = uint64(time.Now().UnixNano())
	}

	t := &Triangulation[V]{
		opts:     opts,
		k:        opts.Kernel,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		vertices: arena.New[vertex[V]](opts.InitialCapacity + 4),
		cells:    arena.New[cell](6*opts.InitialCapacity + 1),
	}
	t.initBounding()
	return t
}

// Options returns the options the triangulation was created with.
func (t *Triangulation[V]) Options() Options { return t.opts }

// Kernel returns the predicate kernel.
func (t *Triangulation[V]) Kernel() kernel.Kernel { return t.k }

func (t *Triangulation[V]) initBounding() {
	b := t.opts.Bounds
	center := b.Min.Add(b.Max).Mul(0.5)
	radius := b.Max.Sub(b.Min).Norm() / 2
	if radius == 0 {
		radius = 1
	}
	scale := boundingScale * radius / r3.Vector{X: 1, Y: 1, Z: 1}.Norm()

	dirs := [4]r3.Vector{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}
	var pts [4]r3.Vector
	for i, d := range dirs {
		pts[i] = center.Add(d.Mul(scale))
	}
	if t.k.Orientation(pts[0], pts[1], pts[2], pts[3]) != kernel.Positive {
		pts[1], pts[2] = pts[2], pts[1]
	}

	for i, p := range pts {
		t.bounding[i] = VertexHandle{ref: t.vertices.Alloc(vertex[V]{point: p, bounding: true})}
	}
	t.resetCells()
}

// resetCells drops every cell and restores the single bounding cell.
func (t *Triangulation[V]) resetCells() {
	t.cells.Reset()
	c := CellHandle{ref: t.cells.Alloc(cell{v: t.bounding})}
	for _, v := range t.bounding {
		t.vertices.MustGet(v.ref).cell = c
	}
	t.last = c
}

// Clear removes every vertex. Outstanding handles become stale.
func (t *Triangulation[V]) Clear() {
	t.vertices.Reset()
	t.finite = 0
	t.initBounding()
}

// NumberOfVertices returns the number of inserted vertices.
func (t *Triangulation[V]) NumberOfVertices() int { return t.finite }

// NumberOfCells returns the number of cells, including cells incident to
// bounding vertices.
func (t *Triangulation[V]) NumberOfCells() int { return t.cells.Len() }

// NumberOfFiniteCells returns the number of cells spanned by inserted vertices only.
func (t *Triangulation[V]) NumberOfFiniteCells() int {
	n := 0
	for c := range t.Cells() {
		if t.IsFiniteCell(c) {
			n++
		}
	}
	return n
}

// Vertices iterates the inserted vertices.
func (t *Triangulation[V]) Vertices() iter.Seq[VertexHandle] {
	return func(yield func(VertexHandle) bool) {
		for h, v := range t.vertices.All() {
			if v.bounding {
				continue
			}
			if !yield(VertexHandle{ref: h}) {
				return
			}
		}
	}
}

// Cells iterates every cell.
func (t *Triangulation[V]) Cells() iter.Seq[CellHandle] {
	return func(yield func(CellHandle) bool) {
		for h := range t.cells.All() {
			if !yield(CellHandle{ref: h}) {
				return
			}
		}
	}
}

// Contains reports whether v references a live vertex.
func (t *Triangulation[V]) Contains(v VertexHandle) bool {
	return t.vertices.Contains(v.ref)
}

// ContainsCell reports whether c references a live cell.
func (t *Triangulation[V]) ContainsCell(c CellHandle) bool {
	return t.cells.Contains(c.ref)
}

func (t *Triangulation[V]) vertex(v VertexHandle) *vertex[V] {
	x, ok := t.vertices.Get(v.ref)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrVertexNotFound, v))
	}
	return x
}

func (t *Triangulation[V]) cell(c CellHandle) *cell {
	return t.cells.MustGet(c.ref)
}

// Point returns the position of v.
func (t *Triangulation[V]) Point(v VertexHandle) r3.Vector { return t.vertex(v).point }

// Payload returns a pointer to the payload of v. The pointer is valid until
// the next Insert, Remove or Clear.
func (t *Triangulation[V]) Payload(v VertexHandle) *V { return &t.vertex(v).payload }

// IsBounding reports whether v is one of the four bounding vertices.
func (t *Triangulation[V]) IsBounding(v VertexHandle) bool { return t.vertex(v).bounding }

// IncidentCell returns a cell having v as a vertex.
func (t *Triangulation[V]) IncidentCell(v VertexHandle) CellHandle { return t.vertex(v).cell }

// Vertex returns vertex i of c.
func (t *Triangulation[V]) Vertex(c CellHandle, i int) VertexHandle { return t.cell(c).v[i] }

// Neighbor returns the cell across the facet opposite vertex i of c.
// The zero handle is returned on the outer hull.
func (t *Triangulation[V]) Neighbor(c CellHandle, i int) CellHandle { return t.cell(c).n[i] }

// IndexOf returns the index of v in c.
func (t *Triangulation[V]) IndexOf(c CellHandle, v VertexHandle) (int, bool) {
	i := t.cell(c).indexOf(v)
	return i, i >= 0
}

// HasVertex reports whether v is a vertex of c.
func (t *Triangulation[V]) HasVertex(c CellHandle, v VertexHandle) bool {
	return t.cell(c).indexOf(v) >= 0
}

// IsFiniteCell reports whether no vertex of c is a bounding vertex.
func (t *Triangulation[V]) IsFiniteCell(c CellHandle) bool {
	for _, v := range t.cell(c).v {
		if t.vertex(v).bounding {
			return false
		}
	}
	return true
}

// CellPoints returns the positions of the vertices of c.
func (t *Triangulation[V]) CellPoints(c CellHandle) [4]r3.Vector {
	cc := t.cell(c)
	var ps [4]r3.Vector
	for i, v := range cc.v {
		ps[i] = t.vertex(v).point
	}
	return ps
}

// NearestVertex returns the inserted vertex of c closest to p.
// It returns false if every vertex of c is a bounding vertex.
func (t *Triangulation[V]) NearestVertex(c CellHandle, p r3.Vector) (VertexHandle, bool) {
	var (
		best  VertexHandle
		bestD float64
	)
	for _, v := range t.cell(c).v {
		x := t.vertex(v)
		if x.bounding {
			continue
		}
		d := kernel.SquaredDistance(x.point, p)
		if best.IsZero() || d < bestD || (d == bestD && v.Less(best)) {
			best, bestD = v, d
		}
	}
	return best, !best.IsZero()
}

// Insert adds p to the triangulation. hint is an optional starting cell for
// the walk. If a vertex already exists at p its handle is returned with
// inserted set to false.
func (t *Triangulation[V]) Insert(p r3.Vector, hint CellHandle) (v VertexHandle, inserted bool, err error) {
	if !kernel.IsFinite(p) {
		return VertexHandle{}, false, ErrNonFinitePoint
	}
	if !t.opts.Bounds.Contains(p) {
		return VertexHandle{}, false, &ErrOutOfBounds{Point: p, Bounds: t.opts.Bounds}
	}

	loc := t.walk(p, hint)
	switch loc.Type {
	case LocateVertex:
		return t.cell(loc.Cell).v[loc.I], false, nil
	case LocateOutside:
		return VertexHandle{}, false, &ErrOutOfBounds{Point: p, Bounds: t.opts.Bounds}
	}

	v = VertexHandle{ref: t.vertices.Alloc(vertex[V]{point: p})}
	t.attach(v, loc.Cell)
	t.finite++
	return v, true, nil
}

// attach retriangulates the cavity of the vertex v starting from the cell
// containing its point.
func (t *Triangulation[V]) attach(v VertexHandle, start CellHandle) {
	p := t.vertex(v).point
	region, inRegion := t.conflictRegion(p, start)

	type boundaryFacet struct {
		c CellHandle
		i int
	}
	var boundary []boundaryFacet

	// Grow the region until every boundary facet strictly sees p, so the
	// star of v is well formed even for cospherical input.
	for grown := true; grown; {
		grown = false
		boundary = boundary[:0]
		for k := 0; k < len(region); k++ {
			c := region[k]
			for i := 0; i < 4; i++ {
				nb := t.cell(c).n[i]
				if !nb.IsZero() && inRegion.Test(uint(nb.ref.Index())) {
					continue
				}
				if nb.IsZero() || t.orientFacet(c, i, p) == kernel.Positive {
					boundary = append(boundary, boundaryFacet{c, i})
					continue
				}
				inRegion.Set(uint(nb.ref.Index()))
				region = append(region, nb)
				grown = true
			}
		}
	}

	type pending struct {
		c CellHandle
		i int
	}
	open := make(map[[2]uint64]pending, len(boundary)*3/2)
	created := make([]CellHandle, 0, len(boundary))

	for _, f := range boundary {
		old := *t.cell(f.c)
		nc := cell{v: old.v}
		nc.v[f.i] = v
		nc.n[f.i] = old.n[f.i]
		h := CellHandle{ref: t.cells.Alloc(nc)}
		created = append(created, h)

		if nb := old.n[f.i]; !nb.IsZero() {
			nbc := t.cell(nb)
			nbc.n[nbc.neighborIndex(f.c)] = h
		}

		for j := 0; j < 4; j++ {
			if j == f.i {
				continue
			}
			// The facet opposite j holds v and the two vertices other than j and f.i.
			var a, b VertexHandle
			for m := 0; m < 4; m++ {
				if m == j || m == f.i {
					continue
				}
				if a.IsZero() {
					a = nc.v[m]
				} else {
					b = nc.v[m]
				}
			}
			key := edgeKey(a, b)
			if o, ok := open[key]; ok {
				t.cell(h).n[j] = o.c
				t.cell(o.c).n[o.i] = h
				delete(open, key)
			} else {
				open[key] = pending{h, j}
			}
		}
	}

	for _, c := range region {
		t.cells.Free(c.ref)
	}
	for _, c := range created {
		for _, w := range t.cell(c).v {
			t.vertex(w).cell = c
		}
	}
	t.last = created[0]
}

// conflictRegion collects the connected set of cells whose circumsphere
// strictly contains p, starting from the cell containing p.
func (t *Triangulation[V]) conflictRegion(p r3.Vector, start CellHandle) ([]CellHandle, *bitset.BitSet) {
	inRegion := bitset.New(uint(t.cells.Cap()))
	seen := bitset.New(uint(t.cells.Cap()))

	region := []CellHandle{start}
	inRegion.Set(uint(start.ref.Index()))
	seen.Set(uint(start.ref.Index()))

	for k := 0; k < len(region); k++ {
		c := region[k]
		for i := 0; i < 4; i++ {
			nb := t.cell(c).n[i]
			if nb.IsZero() || seen.Test(uint(nb.ref.Index())) {
				continue
			}
			seen.Set(uint(nb.ref.Index()))
			if t.inConflict(nb, p) {
				inRegion.Set(uint(nb.ref.Index()))
				region = append(region, nb)
			}
		}
	}
	return region, inRegion
}

func (t *Triangulation[V]) inConflict(c CellHandle, p r3.Vector) bool {
	ps := t.CellPoints(c)
	return t.k.SideOfSphere(ps[0], ps[1], ps[2], ps[3], p) == kernel.Positive
}

// orientFacet is the orientation of c with vertex i replaced by p.
func (t *Triangulation[V]) orientFacet(c CellHandle, i int, p r3.Vector) kernel.Sign {
	ps := t.CellPoints(c)
	ps[i] = p
	return t.k.Orientation(ps[0], ps[1], ps[2], ps[3])
}

// Remove deletes v. It panics if v is not a live inserted vertex.
func (t *Triangulation[V]) Remove(v VertexHandle) {
	if t.vertex(v).bounding {
		panic(fmt.Errorf("%w: %s", ErrBoundingVertex, v))
	}

	if t.finite == 1 {
		t.vertices.Free(v.ref)
		t.finite = 0
		t.resetCells()
		return
	}

	star := t.incidentCells(v)
	if !t.removeLocal(v, star) {
		t.rebuildWithout(v)
	}
	t.vertices.Free(v.ref)
	t.finite--
}

// IncidentCells returns the cells having v as a vertex.
func (t *Triangulation[V]) IncidentCells(v VertexHandle) []CellHandle {
	return t.incidentCells(v)
}

func (t *Triangulation[V]) incidentCells(v VertexHandle) []CellHandle {
	start := t.vertex(v).cell
	seen := bitset.New(uint(t.cells.Cap()))
	seen.Set(uint(start.ref.Index()))
	star := []CellHandle{start}
	for k := 0; k < len(star); k++ {
		cc := t.cell(star[k])
		for i, w := range cc.v {
			if w == v {
				continue
			}
			nb := cc.n[i]
			if nb.IsZero() || seen.Test(uint(nb.ref.Index())) {
				continue
			}
			seen.Set(uint(nb.ref.Index()))
			star = append(star, nb)
		}
	}
	return star
}

// removeLocal refills the star of v with Delaunay cells of its link.
// It reports false, leaving the triangulation untouched, if the fill does
// not close the hole.
func (t *Triangulation[V]) removeLocal(v VertexHandle, star []CellHandle) bool {
	type hole struct {
		nb      CellHandle
		index   int
		matched bool
	}
	boundary := make(map[[3]uint64]*hole, len(star))
	var link []VertexHandle
	inLink := make(map[VertexHandle]struct{})

	for _, c := range star {
		cc := t.cell(c)
		iv := cc.indexOf(v)
		for j, w := range cc.v {
			if j == iv {
				continue
			}
			if _, ok := inLink[w]; !ok {
				inLink[w] = struct{}{}
				link = append(link, w)
			}
		}
		h := &hole{nb: cc.n[iv], index: -1}
		if !h.nb.IsZero() {
			h.index = t.cell(h.nb).neighborIndex(c)
		}
		boundary[cc.facetKey(iv)] = h
	}

	pts := make([]r3.Vector, len(link))
	for i, w := range link {
		pts[i] = t.vertex(w).point
	}
	seed := t.rng.Int64()
	mini := New[VertexHandle](func(o *Options) {
		o.Bounds = BoundingBox(pts)
		o.Kernel = t.k
		o.RandomSeed = &seed
		o.InitialCapacity = len(pts)
	})
	for i, w := range link {
		mv, inserted, err := mini.Insert(pts[i], CellHandle{})
		if err != nil || !inserted {
			return false
		}
		*mini.Payload(mv) = w
	}

	var fill [][4]VertexHandle
	for mc := range mini.Cells() {
		if !mini.IsFiniteCell(mc) {
			continue
		}
		ps := mini.CellPoints(mc)
		if !t.insideAny(star, kernel.Centroid(ps[:]...)) {
			continue
		}
		var vs [4]VertexHandle
		for i := range vs {
			vs[i] = *mini.Payload(mini.Vertex(mc, i))
		}
		fill = append(fill, vs)
	}
	if len(fill) == 0 {
		return false
	}

	type facetRef struct {
		c CellHandle
		i int
	}
	created := make([]CellHandle, 0, len(fill))
	internal := make(map[[3]uint64]facetRef, len(fill)*2)
	matched := 0
	ok := true

	for _, vs := range fill {
		created = append(created, CellHandle{ref: t.cells.Alloc(cell{v: vs})})
	}
	for _, h := range created {
		for j := 0; j < 4 && ok; j++ {
			key := t.cell(h).facetKey(j)
			if hb, found := boundary[key]; found {
				if hb.matched {
					ok = false
					break
				}
				hb.matched = true
				matched++
				t.cell(h).n[j] = hb.nb
				continue
			}
			if o, found := internal[key]; found {
				t.cell(h).n[j] = o.c
				t.cell(o.c).n[o.i] = h
				delete(internal, key)
			} else {
				internal[key] = facetRef{h, j}
			}
		}
	}
	if ok && (len(internal) != 0 || matched != len(boundary)) {
		ok = false
	}
	if ok {
		ok = t.hullIsDelaunay(created)
	}
	if !ok {
		for _, h := range created {
			t.cells.Free(h.ref)
		}
		return false
	}

	// Commit: point the outer neighbors at the fill.
	for _, h := range created {
		cc := t.cell(h)
		for j := 0; j < 4; j++ {
			if hb, found := boundary[cc.facetKey(j)]; found && !hb.nb.IsZero() {
				t.cell(hb.nb).n[hb.index] = h
			}
		}
	}
	for _, c := range star {
		t.cells.Free(c.ref)
	}
	for _, h := range created {
		for _, w := range t.cell(h).v {
			t.vertex(w).cell = h
		}
	}
	t.last = created[0]
	return true
}

// hullIsDelaunay checks the empty sphere condition across the facets where
// the fill meets the rest of the triangulation.
func (t *Triangulation[V]) hullIsDelaunay(created []CellHandle) bool {
	for _, h := range created {
		cc := *t.cell(h)
		ps := t.CellPoints(h)
		for j, nb := range cc.n {
			if nb.IsZero() || isCreated(created, nb) {
				continue
			}
			nbc := t.cell(nb)
			k := -1
			key := cc.facetKey(j)
			for m := 0; m < 4; m++ {
				if nbc.facetKey(m) == key {
					k = m
					break
				}
			}
			if k < 0 {
				return false
			}
			if t.k.Orientation(ps[0], ps[1], ps[2], ps[3]) != kernel.Positive {
				return false
			}
			opposite := t.vertex(nbc.v[k]).point
			if t.k.SideOfSphere(ps[0], ps[1], ps[2], ps[3], opposite) == kernel.Positive {
				return false
			}
			qs := t.CellPoints(nb)
			if t.k.SideOfSphere(qs[0], qs[1], qs[2], qs[3], ps[j]) == kernel.Positive {
				return false
			}
		}
	}
	return true
}

func isCreated(created []CellHandle, c CellHandle) bool {
	for _, h := range created {
		if h == c {
			return true
		}
	}
	return false
}

func (t *Triangulation[V]) insideAny(cells []CellHandle, p r3.Vector) bool {
	for _, c := range cells {
		if t.insideCell(c, p) {
			return true
		}
	}
	return false
}

func (t *Triangulation[V]) insideCell(c CellHandle, p r3.Vector) bool {
	for i := 0; i < 4; i++ {
		if t.orientFacet(c, i, p) == kernel.Negative {
			return false
		}
	}
	return true
}

// rebuildWithout retriangulates every remaining vertex in place. Vertex
// handles other than v stay valid.
func (t *Triangulation[V]) rebuildWithout(v VertexHandle) {
	var keep []VertexHandle
	for h, x := range t.vertices.All() {
		if x.bounding || h == v.ref {
			continue
		}
		keep = append(keep, VertexHandle{ref: h})
	}
	t.rng.Shuffle(len(keep), func(i, j int) { keep[i], keep[j] = keep[j], keep[i] })

	t.resetCells()
	for _, w := range keep {
		loc := t.walk(t.vertex(w).point, t.last)
		t.attach(w, loc.Cell)
	}
}

// IsValid checks the combinatorial and geometric invariants: positive
// orientation, symmetric adjacency, vertex to cell back references and the
// local empty sphere condition.
func (t *Triangulation[V]) IsValid() error {
	finite := 0
	for h, x := range t.vertices.All() {
		vh := VertexHandle{ref: h}
		if !x.bounding {
			finite++
		}
		c, ok := t.cells.Get(x.cell.ref)
		if !ok {
			return fmt.Errorf("vertex %s: stale incident cell %s", vh, x.cell)
		}
		if c.indexOf(vh) < 0 {
			return fmt.Errorf("vertex %s: incident cell %s does not contain it", vh, x.cell)
		}
	}
	if finite != t.finite {
		return fmt.Errorf("vertex count %d, tracked %d", finite, t.finite)
	}

	for h, cc := range t.cells.All() {
		ch := CellHandle{ref: h}
		for _, v := range cc.v {
			if !t.vertices.Contains(v.ref) {
				return fmt.Errorf("cell %s: stale vertex %s", ch, v)
			}
		}
		ps := t.CellPoints(ch)
		if t.k.Orientation(ps[0], ps[1], ps[2], ps[3]) != kernel.Positive {
			return fmt.Errorf("cell %s: not positively oriented", ch)
		}
		for i, nb := range cc.n {
			if nb.IsZero() {
				if t.IsFiniteCell(ch) {
					return fmt.Errorf("cell %s: finite cell on the outer hull", ch)
				}
				continue
			}
			nbc, ok := t.cells.Get(nb.ref)
			if !ok {
				return fmt.Errorf("cell %s: stale neighbor %s", ch, nb)
			}
			j := nbc.neighborIndex(ch)
			if j < 0 {
				return fmt.Errorf("cell %s: neighbor %s does not point back", ch, nb)
			}
			if cc.facetKey(i) != nbc.facetKey(j) {
				return fmt.Errorf("cell %s: facet %d mismatches neighbor %s", ch, i, nb)
			}
			opposite := t.vertex(nbc.v[j]).point
			if t.k.SideOfSphere(ps[0], ps[1], ps[2], ps[3], opposite) == kernel.Positive {
				return fmt.Errorf("cell %s: vertex %s of neighbor %s inside circumsphere", ch, nbc.v[j], nb)
			}
		}
	}
	return nil
}
