package rt

import (
	"fmt"

	"golang.org/x/sync/semaphore"
)

// RootSet is the manually-tracked guarded-node stack used for root
// discovery: API-facing code pushes a cell before it can be
// invalidated by a later allocation, and pops it once the value is
// safely referenced from somewhere else.
type RootSet struct {
	cells []*Cell
}

func newRootSet() *RootSet { return &RootSet{} }

func (r *RootSet) push(c *Cell) { r.cells = append(r.cells, c) }

// pop removes the most recently pushed root. Popping an empty set is a
// programmer error, same discipline as DataStack.Pop.
func (r *RootSet) pop() {
	r.cells = r.cells[:len(r.cells)-1]
}

// VariadicSource is a C-variadic-argument-list stand-in: an iterator
// whose state is not heap-resident and so must be reified into a heap
// array before the GC can see it.
type VariadicSource interface {
	// Reify materializes the remaining items into a managed array and
	// returns it; subsequent iteration continues from that array.
	Reify(rt *Runtime) *Series
}

// GCSummary is one entry in a Runtime's bounded recycle history.
type GCSummary struct {
	Cycle         int
	MarkedSeries  int
	SweptSeries   int
	KilledSymbols int
	ReifiedVarargs int
}

// GC is the non-recursive mark-and-sweep collector for a Runtime.
// Re-entrancy during a cycle is forbidden; sem enforces that with a
// weight-1 semaphore rather than a bare assert, so a violation surfaces
// as ReentrancyError instead of a panic.
type GC struct {
	rt      *Runtime
	sem     *semaphore.Weighted
	cycle   int
	history []GCSummary

	variadics []VariadicSource

	// activeFrames roots live Frame values: the call-frame stack.
	// Frames register themselves via Runtime.trackFrame/untrackFrame.
	activeFrames []*Frame
}

func newGC(rt *Runtime) *GC {
	return &GC{rt: rt, sem: semaphore.NewWeighted(1)}
}

// RegisterVariadic adds src to the set of variadic sources reified at
// the top of every cycle.
func (rt *Runtime) RegisterVariadic(src VariadicSource) { rt.gc.variadics = append(rt.gc.variadics, src) }

// trackFrame/untrackFrame maintain the call-frame stack root source.
func (rt *Runtime) trackFrame(f *Frame)   { rt.gc.activeFrames = append(rt.gc.activeFrames, f) }
func (rt *Runtime) untrackFrame(f *Frame) {
	fr := rt.gc.activeFrames
	for i := len(fr) - 1; i >= 0; i-- {
		if fr[i] == f {
			rt.gc.activeFrames = append(fr[:i], fr[i+1:]...)
			return
		}
	}
}

// markQueue is the explicit, non-recursive work list this collector relies on.
type markQueue struct {
	items []*Series
}

func (q *markQueue) push(s *Series) {
	if s == nil || s.IsMarked() {
		return
	}
	s.SetFlag(SerMarked)
	q.items = append(q.items, s)
}

func (q *markQueue) pop() (*Series, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	n := len(q.items) - 1
	s := q.items[n]
	q.items = q.items[:n]
	return s, true
}

// recycle runs one full mark-and-sweep cycle.
func (g *GC) recycle() error {
	if !g.sem.TryAcquire(1) {
		return ReentrancyError{}
	}
	defer g.sem.Release(1)

	g.cycle++
	reified := g.reifyVariadics()

	q := &markQueue{}
	reachableSyms := map[*Symbol]bool{}

	for _, c := range g.rt.Stack.cells {
		g.markCell(q, reachableSyms, c)
	}
	for _, c := range g.rt.roots.cells {
		g.markCell(q, reachableSyms, *c)
	}
	for _, f := range g.activeFrames {
		g.markFrame(q, reachableSyms, f)
	}
	for _, s := range reified {
		q.push(s)
	}
	g.rt.Pool.walk(func(s *Series) {
		if s.IsManaged() && s.HasFlag(SerRoot) {
			q.push(s)
		}
	})

	marked := 0
	for {
		s, ok := q.pop()
		if !ok {
			break
		}
		marked++
		g.propagate(q, reachableSyms, s)
	}

	swept := g.sweep()
	g.reclaimHandles()
	killed := g.sweepSymbols(reachableSyms)

	g.history = append(g.history, GCSummary{
		Cycle: g.cycle, MarkedSeries: marked, SweptSeries: swept,
		KilledSymbols: killed, ReifiedVarargs: len(reified),
	})
	if limit := g.rt.opt.GCHistoryLimit; len(g.history) > limit {
		g.history = g.history[len(g.history)-limit:]
	}
	fmt.Fprintf(g.rt.opt.Trace, "rt: recycle #%d marked=%d swept=%d killed_symbols=%d\n",
		g.cycle, marked, swept, killed)
	return nil
}

func (g *GC) reifyVariadics() []*Series {
	if len(g.variadics) == 0 {
		return nil
	}
	out := make([]*Series, 0, len(g.variadics))
	for _, v := range g.variadics {
		out = append(out, v.Reify(g.rt))
	}
	return out
}

func (g *GC) markFrame(q *markQueue, syms map[*Symbol]bool, f *Frame) {
	if f == nil {
		return
	}
	if f.Binding != nil {
		q.push(f.Binding.Varlist)
		q.push(f.Binding.Keylist)
	}
	if f.Phase != nil {
		q.push(f.Phase.Paramlist)
		q.push(f.Phase.BodyHolder)
	}
	g.markCell(q, syms, f.Out)
	g.markCell(q, syms, f.Cell)
	for _, c := range f.Args {
		g.markCell(q, syms, c)
	}
	for _, a := range f.PostActions {
		q.push(a.Paramlist)
		q.push(a.BodyHolder)
	}
}

// markCell enqueues whatever series a single cell references and
// records word-family symbols as reachable, without recursing.
func (g *GC) markCell(q *markQueue, syms map[*Symbol]bool, c Cell) {
	if sym := c.Symbol(); sym != nil {
		syms[sym] = true
	}
	if base, _ := c.UnescapedKind(); base == KindParam {
		if p := c.ParamVal(); p != nil && p.Key != nil {
			syms[p.Key] = true
		}
	}
	if ctx := c.Binding(); ctx != nil {
		q.push(ctx.Varlist)
		q.push(ctx.Keylist)
	}
	for _, s := range childSeriesOf(c) {
		q.push(s)
	}
}

// propagate marks s's children per its series class.
func (g *GC) propagate(q *markQueue, syms map[*Symbol]bool, s *Series) {
	if s.HasFlag(SerArray) {
		for _, c := range s.cells {
			g.markCell(q, syms, c)
		}
	}
	if s.HasFlag(SerParamlist) {
		q.push(s.Facade())
		if meta := s.MetaContext(); meta != nil {
			q.push(meta.Varlist)
		}
	}
	if s.HasFlag(SerVarlist) {
		q.push(s.Keysource())
		if meta := s.MetaContext(); meta != nil {
			q.push(meta.Varlist)
		}
	}
	if ex := s.Exemplar(); ex != nil {
		q.push(ex)
	}
}

// childSeriesOf maps a single cell to the Series it directly
// references, covering every payload shape this module constructs.
func childSeriesOf(c Cell) []*Series {
	base, _ := c.UnescapedKind()
	switch base {
	case KindAction:
		if a := c.ActionVal(); a != nil {
			out := []*Series{a.Paramlist, a.BodyHolder}
			if ex := a.Exemplar(); ex != nil {
				out = append(out, ex)
			}
			return out
		}
	case KindFrame, KindObject, KindModule, KindError, KindPort:
		if ctx, ok := c.ptr1.(*Context); ok && ctx != nil {
			return []*Series{ctx.Varlist}
		}
	case KindQuoted:
		if s, ok := c.ptr1.(*Series); ok {
			return []*Series{s}
		}
	default:
		if s, ok := c.ptr1.(*Series); ok {
			return []*Series{s}
		}
	}
	return nil
}

// sweep frees every managed, unmarked node and clears the mark bit on
// survivors.
func (g *GC) sweep() int {
	freed := 0
	g.rt.Pool.walk(func(s *Series) {
		if !s.IsManaged() {
			return
		}
		if s.IsMarked() {
			s.ClearFlag(SerMarked)
			return
		}
		g.rt.Pool.release(s)
		freed++
	})
	return freed
}

// reclaimHandles implements the API-handle contract: once a handle's
// owning frame has gone inaccessible, the handle itself is reclaimed
// rather than kept alive by a root flag that no caller can still
// observe.
func (g *GC) reclaimHandles() {
	g.rt.Pool.walk(func(s *Series) {
		if !s.IsManaged() || !s.HasFlag(SerRoot) {
			return
		}
		owner := s.Owner()
		if owner == nil || !owner.Inaccessible() {
			return
		}
		fmt.Fprintf(g.rt.opt.Trace, "rt: reclaiming API handle owned by inaccessible frame\n")
		s.ClearFlag(SerRoot)
	})
}

// sweepSymbols kills every canon/synonym not found reachable this
// cycle and not one of the well-known protected symbols: a canonical
// symbol node persists until no cell references it and no synonym of
// it is referenced.
func (g *GC) sweepSymbols(reachable map[*Symbol]bool) int {
	killed := 0
	in := g.rt.Interner
	for _, canon := range append([]*Symbol{}, in.table...) {
		if canon == nil || canon == tombstone {
			continue
		}
		if canon.wellKnown != 0 {
			continue
		}
		// Gather the whole ring so we can decide liveness of the class
		// as a unit, then kill every unreferenced member.
		members := []*Symbol{canon}
		for w := canon.ring; w != canon; w = w.ring {
			members = append(members, w)
		}
		for _, m := range members {
			if reachable[m] {
				continue
			}
			in.Kill(m)
			killed++
		}
	}
	return killed
}
