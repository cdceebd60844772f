package rt

import "io"

// Well-known symbol indices, returned by Symbol.WellKnown.
// Index 0 is reserved for no index: WellKnown reports 0 for any symbol
// that was not registered.
const (
	symNone int = iota
	symReturn
	symLeave
	symLocalTag
	symWithTag
	symOptTag
	symEndTag
	symEllipsisTag
	symSkipTag
	symBlankTag
)

// BodyEvaluator is the contract this module consumes from the external,
// out-of-scope bytecode/AST evaluator. Dispatchers
// that need to actually run a body block call rt.Eval(frame, body)
// rather than interpreting it themselves.
type BodyEvaluator func(rt *Runtime, f *Frame, body *Cell) (Cell, error)

// literalEvaluator is the default BodyEvaluator: it has no notion of
// statements or expressions, so it simply returns the last cell of a
// block body, or a nothing! cell for an empty one. It exists so the
// dispatcher family and frame machinery are independently testable
// without wiring a real evaluator.
func literalEvaluator(rt *Runtime, f *Frame, body *Cell) (Cell, error) {
	if body.Kind() != KindBlock {
		return *body, nil
	}
	cells := body.SeriesVal().Cells()
	if len(cells) == 0 {
		var c Cell
		c.SetNothing()
		return c, nil
	}
	return cells[len(cells)-1], nil
}

// RuntimeOptions configures a Runtime, mirroring the
// Options-struct-with-defaults-applied-in-New pattern.
type RuntimeOptions struct {
	// Trace receives single-line progress notes from the GC. Defaults
	// to io.Discard.
	Trace io.Writer

	// PoolSegmentSize is the number of Series nodes allocated per
	// pool growth step. Defaults to 256.
	PoolSegmentSize int

	// PairPoolSegmentSize sizes the dedicated 2-cell pairing pool.
	// Defaults to 64.
	PairPoolSegmentSize int

	// Ballast is the allocation countdown that triggers an automatic
	// GC cycle when it reaches zero.
	// A zero value selects the default of 10000; no value turns
	// automatic recycling off.
	Ballast int

	// Eval is the BodyEvaluator injection point standing in for the
	// out-of-scope Do_Core. Defaults to literalEvaluator.
	Eval BodyEvaluator

	// GCHistoryLimit bounds how many past recycle summaries
	// Runtime.GCHistory retains. Defaults to 16.
	GCHistoryLimit int
}

// Runtime is the single context threaded through every operation in
// this module: the interner, the series pools, the data stack, and the
// GC state all live here, so two Runtimes are fully isolated.
type Runtime struct {
	opt RuntimeOptions

	Pool     *Pool
	Pairs    *PairPool
	Interner *Interner
	Stack    *DataStack
	gc       *GC

	ballastLeft int

	SymReturn    *Symbol
	SymLeave     *Symbol
	SymLocalTag  *Symbol
	SymWithTag   *Symbol
	SymOptTag    *Symbol
	SymEndTag    *Symbol
	SymEllipsis  *Symbol
	SymSkipTag   *Symbol
	SymBlankTag  *Symbol

	roots *RootSet

	typedTable map[Kind]map[string]TypedHandler
}

// New returns a fresh, isolated Runtime.
func New(opts RuntimeOptions) (*Runtime, error) {
	if opts.Trace == nil {
		opts.Trace = io.Discard
	}
	if opts.PoolSegmentSize == 0 {
		opts.PoolSegmentSize = 256
	}
	if opts.PairPoolSegmentSize == 0 {
		opts.PairPoolSegmentSize = 64
	}
	if opts.Ballast == 0 {
		opts.Ballast = 10000
	}
	if opts.Eval == nil {
		opts.Eval = literalEvaluator
	}
	if opts.GCHistoryLimit == 0 {
		opts.GCHistoryLimit = 16
	}

	rt := &Runtime{
		opt:         opts,
		Pool:        NewPool(opts.PoolSegmentSize),
		Pairs:       NewPairPool(opts.PairPoolSegmentSize),
		Interner:    NewInterner(),
		Stack:       NewDataStack(),
		ballastLeft: opts.Ballast,
		roots:       newRootSet(),
	}
	rt.gc = newGC(rt)

	var err error
	if rt.SymReturn, err = rt.Interner.registerWellKnown("return", symReturn); err != nil {
		return nil, err
	}
	if rt.SymLeave, err = rt.Interner.registerWellKnown("leave", symLeave); err != nil {
		return nil, err
	}
	if rt.SymLocalTag, err = rt.Interner.registerWellKnown("local", symLocalTag); err != nil {
		return nil, err
	}
	if rt.SymWithTag, err = rt.Interner.registerWellKnown("with", symWithTag); err != nil {
		return nil, err
	}
	if rt.SymOptTag, err = rt.Interner.registerWellKnown("opt", symOptTag); err != nil {
		return nil, err
	}
	if rt.SymEndTag, err = rt.Interner.registerWellKnown("end", symEndTag); err != nil {
		return nil, err
	}
	if rt.SymEllipsis, err = rt.Interner.registerWellKnown("...", symEllipsisTag); err != nil {
		return nil, err
	}
	if rt.SymSkipTag, err = rt.Interner.registerWellKnown("skip", symSkipTag); err != nil {
		return nil, err
	}
	if rt.SymBlankTag, err = rt.Interner.registerWellKnown("blank", symBlankTag); err != nil {
		return nil, err
	}

	return rt, nil
}

// Eval invokes the configured BodyEvaluator.
func (rt *Runtime) Eval(f *Frame, body *Cell) (Cell, error) { return rt.opt.Eval(rt, f, body) }

// Intern interns spelling through this Runtime's interner, consuming
// one ballast unit and triggering a recycle if it runs out.
func (rt *Runtime) Intern(spelling string) (*Symbol, error) {
	rt.consumeBallast()
	return rt.Interner.Intern(spelling)
}

// Canon returns the canonical member of sym's case-insensitive class.
func (rt *Runtime) Canon(sym *Symbol) *Symbol { return rt.Interner.Canon(sym) }

// consumeBallast decrements the allocation countdown and triggers an
// automatic Recycle when it reaches zero (GLOSSARY "Ballast").
func (rt *Runtime) consumeBallast() {
	if rt.opt.Ballast == 0 {
		return
	}
	rt.ballastLeft--
	if rt.ballastLeft <= 0 {
		_ = rt.Recycle()
		rt.ballastLeft = rt.opt.Ballast
	}
}

// Recycle runs one mark-and-sweep GC cycle.
func (rt *Runtime) Recycle() error { return rt.gc.recycle() }

// GCHistory returns a bounded log of recent recycle summaries.
func (rt *Runtime) GCHistory() []GCSummary { return rt.gc.history }

// PushRoot installs c as an additional, manually-tracked GC root.
// Paired with PopRoot.
func (rt *Runtime) PushRoot(c *Cell) { rt.roots.push(c) }

// PopRoot removes the most recently pushed manual root.
func (rt *Runtime) PopRoot() { rt.roots.pop() }
