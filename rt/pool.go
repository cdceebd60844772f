package rt

// Pool is a segmented free-list allocator for Series nodes. Nodes are
// handed out from a free list; when the free list is empty a new
// segment of segSize nodes is allocated and threaded onto it. This
// mirrors the original's per-pool segmented growth without needing
// compaction.
type Pool struct {
	segSize int
	segments [][]Series
	free     []*Series
	live     int // nodes currently handed out and not yet swept
}

// NewPool creates a pool that grows in segments of segSize nodes.
func NewPool(segSize int) *Pool {
	if segSize <= 0 {
		segSize = 64
	}
	return &Pool{segSize: segSize}
}

func (p *Pool) growSegment() {
	seg := make([]Series, p.segSize)
	p.segments = append(p.segments, seg)
	for i := range seg {
		seg[i].SetFlag(SerFree)
		p.free = append(p.free, &seg[i])
	}
}

// allocSeries hands out a node from the free list, growing the pool
// if necessary. The returned node is unmanaged: the caller (or the
// GC, once the node is reachable from a root) must call Manage().
func (p *Pool) allocSeries() *Series {
	if len(p.free) == 0 {
		p.growSegment()
	}
	n := len(p.free) - 1
	s := p.free[n]
	p.free = p.free[:n]
	*s = Series{pool: p}
	p.live++
	return s
}

// release returns a node to the free list (called only by the GC sweep).
func (p *Pool) release(s *Series) {
	*s = Series{}
	s.SetFlag(SerFree)
	p.free = append(p.free, s)
	p.live--
}

// LiveCount reports the number of nodes currently allocated and not
// yet freed; used by GC-invariant tests.
func (p *Pool) LiveCount() int { return p.live }

// walk invokes fn for every live (non-free) node across all segments,
// used by the GC sweep phase.
func (p *Pool) walk(fn func(*Series)) {
	for _, seg := range p.segments {
		for i := range seg {
			s := &seg[i]
			if s.HasFlag(SerFree) {
				continue
			}
			fn(s)
		}
	}
}

// PairPool is a second, narrower pool whose arrays hold exactly two
// cells -- a direct lift of the original's dedicated pairing allocator
// (original_source/m-gc.c). A Runtime exposes one as Runtime.Pairs;
// PAIR! values store their doubles inline in the cell, and deep-quote
// wrappers are allocated from the main Pool, so neither draws on it.
type PairPool struct {
	*Pool
}

// NewPairPool creates a pool of 2-cell pairings.
func NewPairPool(segSize int) *PairPool {
	return &PairPool{NewPool(segSize)}
}

// AllocPairing returns a fresh 2-cell array from the pairing pool.
func (pp *PairPool) AllocPairing() *Series {
	s := pp.allocSeries()
	s.SetFlag(SerArray | SerCell)
	s.cells = make([]Cell, 2)
	return s
}
