package rt

import "math"

// CellFlag is a bitmask of cell-level flags.
type CellFlag uint16

const (
	FlagStack CellFlag = 1 << iota // lives on the data/C stack, not the heap
	FlagRoot                       // an API handle root
	FlagManaged                    // owned by the GC
	FlagMarked                     // set during mark, cleared on sweep of survivors
	FlagProtected                  // write-protected
	FlagEnfixed                    // was fetched as an infix operation
	FlagUnevaluated                // literal, did not pass through the evaluator
	FlagLineMarker                 // source line boundary marker (molding)
	FlagEndSentinel                // this cell denotes an END
	FlagThrown                     // this cell is a thrown control value (RETURN/UNWIND/BREAK/error)
)

// Cell is the uniform 4-word tagged value. Extra and the two
// payload words are interpreted according to Kind; Cell never branches on
// more than Kind + these three words, by design.
type Cell struct {
	kind    Kind
	flags   CellFlag
	extra   uint64 // not written by any setter in this package; cleared by Reset
	pay0    uint64 // kind-specific payload word 0
	pay1    uint64 // kind-specific payload word 1
	ptr0    interface{} // binding (*Context) for bindable kinds
	ptr1    interface{}
}

// Kind returns the cell's literal kind byte, quoting band and all.
func (c *Cell) Kind() Kind { return c.kind }

// UnescapedKind returns the kind with any depth-0..3 quoting band
// stripped, and how many levels were stripped: the explicit accessor
// that yields the unescaped kind.
func (c *Cell) UnescapedKind() (Kind, int) { return baseKind(c.kind) }

// Flags reports the cell's flag bits.
func (c *Cell) Flags() CellFlag { return c.flags }

func (c *Cell) HasFlag(f CellFlag) bool { return c.flags&f != 0 }
func (c *Cell) SetFlag(f CellFlag)      { c.flags |= f }
func (c *Cell) ClearFlag(f CellFlag)    { c.flags &^= f }

// Reset clears flags and installs kind, leaving the payload words
// zeroed; callers must populate payload words immediately after.
func (c *Cell) Reset(k Kind) {
	c.flags = 0
	c.kind = k
	c.extra, c.pay0, c.pay1 = 0, 0, 0
	c.ptr0, c.ptr1 = nil, nil
}

// Move copies all four words from src to c. The ROOT flag is never
// propagated by Move: it marks API handles specifically, and a moved
// cell is not automatically one.
func (c *Cell) Move(src *Cell) {
	*c = *src
	c.flags &^= FlagRoot
}

// Binding returns the cell's binding reference. Binding is reserved
// (always nil) for unbindable kinds.
func (c *Cell) Binding() *Context {
	if b, ok := c.ptr0.(*Context); ok {
		return b
	}
	return nil
}

// BindTo attaches binding ctx to a bindable cell. It is a programmer
// error to call this on an unbindable kind; callers are expected to
// have checked Kind().bindable() already, matching the assert-only
// discipline of the original's debug build.
func (c *Cell) BindTo(ctx *Context) {
	if !c.kind.bindable() {
		panic("rt: BindTo on unbindable kind " + c.kind.String())
	}
	c.ptr0 = ctx
}

// --- Integer / Logic / Blank / Nothing -------------------------------------

func (c *Cell) SetInteger(v int64) { c.Reset(KindInteger); c.pay0 = uint64(v) }
func (c *Cell) Integer() int64     { return int64(c.pay0) }

func (c *Cell) SetLogic(v bool) {
	c.Reset(KindLogic)
	if v {
		c.pay0 = 1
	}
}
func (c *Cell) Logic() bool { return c.pay0 != 0 }

func (c *Cell) SetDecimal(v float64) { c.Reset(KindDecimal); c.pay0 = math.Float64bits(v) }
func (c *Cell) Decimal() float64     { return math.Float64frombits(c.pay0) }

func (c *Cell) SetBlank()   { c.Reset(KindBlank) }
func (c *Cell) SetNothing() { c.Reset(KindNothing) }
func (c *Cell) SetNulled()  { c.Reset(KindNulled) }
func (c *Cell) SetEnd()     { c.Reset(KindEnd); c.SetFlag(FlagEndSentinel) }
func (c *Cell) IsEnd() bool { return c.kind == KindEnd }

// SetPair stores two doubles inline.
func (c *Cell) SetPair(x, y float64) {
	c.Reset(KindPair)
	c.pay0 = math.Float64bits(x)
	c.pay1 = math.Float64bits(y)
}
func (c *Cell) Pair() (x, y float64) {
	return math.Float64frombits(c.pay0), math.Float64frombits(c.pay1)
}

// --- Word / series+index ---------------------------------------------------

// SetWord stores a symbol+binding pair for word-class kinds.
func (c *Cell) SetWord(k Kind, sym *Symbol) {
	c.Reset(k)
	c.ptr1 = sym
}
func (c *Cell) Symbol() *Symbol {
	s, _ := c.ptr1.(*Symbol)
	return s
}

// SetSeries stores a series+index payload for any-series kinds.
func (c *Cell) SetSeries(k Kind, s *Series, index int) {
	c.Reset(k)
	c.ptr1 = s
	c.pay0 = uint64(index)
}
func (c *Cell) SeriesVal() *Series {
	s, _ := c.ptr1.(*Series)
	return s
}
func (c *Cell) Index() int     { return int(c.pay0) }
func (c *Cell) SetIndex(i int) { c.pay0 = uint64(i) }

// --- Action / paramlist+binding ---------------------------------------------

func (c *Cell) SetAction(a *Action) {
	c.Reset(KindAction)
	c.ptr1 = a
}
func (c *Cell) ActionVal() *Action {
	a, _ := c.ptr1.(*Action)
	return a
}

// --- Text-like payloads (text!, tag!, issue spellings in spec blocks) ------

// SetText stores a Go string directly for leaf text-ish kinds. This is
// a simplification of the original's UTF-8 series payload; the param
// spec dialect only needs the string content, not a mutable byte series.
func (c *Cell) SetText(k Kind, s string) {
	c.Reset(k)
	c.ptr1 = s
}
func (c *Cell) Text() string {
	s, _ := c.ptr1.(string)
	return s
}

// --- Parameter / typeset -----------------------------------------------

// SetParamCell installs p as a parameter slot.
func (c *Cell) SetParamCell(p *Param) {
	c.Reset(KindParam)
	c.ptr1 = p
}
func (c *Cell) ParamVal() *Param {
	p, _ := c.ptr1.(*Param)
	return p
}

// SetTypeset stores a bare typeset value (TYPESET! datatype), distinct
// from a parameter cell.
func (c *Cell) SetTypeset(t Typeset) {
	c.Reset(KindTypeset)
	c.pay0 = uint64(t)
}
func (c *Cell) TypesetVal() Typeset { return Typeset(c.pay0) }

// SetDatatype stores a DATATYPE! cell naming k.
func (c *Cell) SetDatatype(k Kind) {
	c.Reset(KindDatatype)
	c.pay0 = uint64(k)
}
func (c *Cell) DatatypeVal() Kind { return Kind(c.pay0) }

// --- Handle ------------------------------------------------------------

func (c *Cell) SetHandle(h interface{}) {
	c.Reset(KindHandle)
	c.ptr1 = h
}
func (c *Cell) Handle() interface{} { return c.ptr1 }

// --- Quoting ----------------

// Quote wraps c with one additional level of quoting. Depth 0..3 is
// encoded in-place on the kind byte; depth >= 4 boxes the value into a
// singular array whose one inner cell is the previous form, and every
// bindable inner cell continues to share its binding with the wrapper.
func (c *Cell) Quote(pool *Pool) {
	depth := c.QuoteDepth()
	if depth < 3 {
		c.kind += quoteBand
		return
	}
	inner := *c
	arr := NewSingularArray(pool)
	arr.cells[0] = inner
	wrapped := Cell{kind: KindQuoted, ptr1: arr}
	if inner.kind.bindable() {
		wrapped.ptr0 = inner.ptr0
	}
	*c = wrapped
}

// Unquote strips one level of quoting. Calling Unquote on a depth-0
// value is a programmer error (mirrors the original's assert that you
// never unquote past bare).
func (c *Cell) Unquote() {
	if c.kind == KindQuoted {
		arr, _ := c.ptr1.(*Series)
		*c = arr.cells[0]
		return
	}
	if c.kind < kindMax || c.kind < quoteBand {
		panic("rt: Unquote of already-bare cell")
	}
	c.kind -= quoteBand
}

// UnquoteN drops n levels of quoting at once
// (original_source/t-quoted.c: Unquotify_Core).
func (c *Cell) UnquoteN(n int) {
	for i := 0; i < n; i++ {
		c.Unquote()
	}
}

// QuoteDepth reports the current quoting depth, observable as a small
// integer.
func (c *Cell) QuoteDepth() int {
	if c.kind == KindQuoted {
		arr, _ := c.ptr1.(*Series)
		return arr.cells[0].QuoteDepth() + 1
	}
	_, depth := baseKind(c.kind)
	return depth
}

// Dequote returns the fully-unwrapped kind without mutating c
// (original_source/t-quoted.c: Dequotify).
func (c *Cell) Dequote() Kind {
	if c.kind == KindQuoted {
		arr, _ := c.ptr1.(*Series)
		return arr.cells[0].Dequote()
	}
	base, _ := baseKind(c.kind)
	return base
}
