package rt

// SeriesFlag mirrors the header bits shared between cells and series
// nodes, plus the series-class flags that distinguish array, paramlist,
// varlist and context series from each other.
type SeriesFlag uint32

const (
	SerNode SeriesFlag = 1 << iota
	SerFree
	SerCell // inline (singular) storage, as opposed to a dynamic buffer
	SerManaged
	SerRoot
	SerMarked

	SerArray     // series of cells
	SerParamlist // array whose [0] is an action archetype
	SerVarlist   // array whose [0] is a context archetype
	SerPairlist  // hash-bucket array backing a map!
	SerFileLine  // carries file/line debug info in link/misc
	SerFixedSize // cannot grow past its allocated width
	SerPowerOf2  // data buffer length is rounded to a power of 2
	SerUTF8      // byte buffer holds UTF-8 text (interned symbols, strings)
	SerInaccessible
	SerCanon // this is the canonical member of a symbol's synonym ring
)

// infoBits packs the info slot.
type infoBits struct {
	length uint32
	width  uint8
	term   bool
}

// link and misc are the polymorphic slots reused per series subclass.
// Each is represented as an interface{} wrapped by typed accessors
// below so that touching the wrong subclass's slot yields the zero value
// instead of silently reading another subclass's data.
type link struct{ v interface{} }
type misc struct{ v interface{} }

// Series is the fixed-size heap node backing every array, paramlist,
// varlist, and string-ish value. Payload storage is either the one
// inline cell (singular) or an out-of-line buffer of N cells/bytes
// (dynamic).
type Series struct {
	header SeriesFlag
	info   infoBits
	link   link
	misc   misc

	// singular: exactly one inline cell, class flag SerCell set.
	cells []Cell // len==1 for singular arrays, len==N for dynamic arrays
	bytes []byte // UTF-8 / binary payload for non-array series

	pool *Pool // owning pool, for free-list return on sweep
}

func (s *Series) HasFlag(f SeriesFlag) bool { return s.header&f != 0 }
func (s *Series) SetFlag(f SeriesFlag)      { s.header |= f }
func (s *Series) ClearFlag(f SeriesFlag)    { s.header &^= f }
func (s *Series) IsManaged() bool           { return s.HasFlag(SerManaged) }
func (s *Series) IsMarked() bool            { return s.HasFlag(SerMarked) }
func (s *Series) Manage()                   { s.SetFlag(SerManaged) }

// Len reports the number of populated cells/bytes.
func (s *Series) Len() int {
	if s.bytes != nil {
		return len(s.bytes)
	}
	return len(s.cells)
}

// --- Link slot accessors (series-class-specific) ---------------------------

// linkClass distinguishes which field of the polymorphic link/misc
// slot is legal to read, asserted at access time rather than encoded
// in the Go type system (the original's REBSER is a single C struct
// with a union; this is the closest idiomatic analogue without
// abandoning the single-struct-per-node layout).
type linkClass int

const (
	linkNone linkClass = iota
	linkFileName
	linkFacade
	linkKeysource
	linkSynonym
	linkHashlist
	linkOwner
	linkAncestor
	linkExemplar
)

func (s *Series) setLink(class linkClass, v interface{}) {
	s.link = link{v: linkTagged{class, v}}
}

func (s *Series) getLink(class linkClass) interface{} {
	lt, ok := s.link.v.(linkTagged)
	if !ok || lt.class != class {
		return nil
	}
	return lt.v
}

type linkTagged struct {
	class linkClass
	v     interface{}
}

func (s *Series) SetFileName(name string)  { s.setLink(linkFileName, name) }
func (s *Series) FileName() string         { v, _ := s.getLink(linkFileName).(string); return v }
func (s *Series) SetFacade(f *Series)      { s.setLink(linkFacade, f) }
func (s *Series) Facade() *Series          { v, _ := s.getLink(linkFacade).(*Series); return v }
func (s *Series) SetKeysource(k *Series)   { s.setLink(linkKeysource, k) }
func (s *Series) Keysource() *Series       { v, _ := s.getLink(linkKeysource).(*Series); return v }
func (s *Series) SetSynonym(sym *Symbol)   { s.setLink(linkSynonym, sym) }
func (s *Series) Synonym() *Symbol         { v, _ := s.getLink(linkSynonym).(*Symbol); return v }
func (s *Series) SetHashlist(h *Series)    { s.setLink(linkHashlist, h) }
func (s *Series) Hashlist() *Series        { v, _ := s.getLink(linkHashlist).(*Series); return v }
func (s *Series) SetOwner(ctx *Context)    { s.setLink(linkOwner, ctx) }
func (s *Series) Owner() *Context          { v, _ := s.getLink(linkOwner).(*Context); return v }
func (s *Series) SetAncestor(a *Series)    { s.setLink(linkAncestor, a) }
func (s *Series) Ancestor() *Series        { v, _ := s.getLink(linkAncestor).(*Series); return v }
func (s *Series) SetExemplar(e *Series)    { s.setLink(linkExemplar, e) }
func (s *Series) Exemplar() *Series        { v, _ := s.getLink(linkExemplar).(*Series); return v }

// --- Misc slot accessors ----------------------------------------------------

type miscClass int

const (
	miscNone miscClass = iota
	miscMetaContext
	miscLineNumber
	miscDispatcher
	miscBindIndex
	miscSchema
)

func (s *Series) setMisc(class miscClass, v interface{}) {
	s.misc = misc{v: miscTagged{class, v}}
}
func (s *Series) getMisc(class miscClass) interface{} {
	mt, ok := s.misc.v.(miscTagged)
	if !ok || mt.class != class {
		return nil
	}
	return mt.v
}

type miscTagged struct {
	class miscClass
	v     interface{}
}

func (s *Series) SetMetaContext(ctx *Context) { s.setMisc(miscMetaContext, ctx) }
func (s *Series) MetaContext() *Context       { v, _ := s.getMisc(miscMetaContext).(*Context); return v }
func (s *Series) SetLineNumber(n int)         { s.setMisc(miscLineNumber, n) }
func (s *Series) LineNumber() int             { v, _ := s.getMisc(miscLineNumber).(int); return v }
func (s *Series) SetDispatcher(d Dispatcher)  { s.setMisc(miscDispatcher, d) }
func (s *Series) DispatcherFn() Dispatcher    { v, _ := s.getMisc(miscDispatcher).(Dispatcher); return v }
func (s *Series) SetSchema(v interface{})     { s.setMisc(miscSchema, v) }
func (s *Series) Schema() interface{}         { return s.getMisc(miscSchema) }

// --- Array helpers -----------------------------------------------------------

// NewSingularArray allocates a one-cell inline array from pool.
func NewSingularArray(pool *Pool) *Series {
	s := pool.allocSeries()
	s.SetFlag(SerArray | SerCell)
	s.cells = make([]Cell, 1)
	return s
}

// NewArray allocates a dynamic array of the given initial capacity.
func NewArray(pool *Pool, capacity int) *Series {
	s := pool.allocSeries()
	s.SetFlag(SerArray)
	s.cells = make([]Cell, 0, capacity)
	return s
}

// Append adds a cell to a dynamic array, growing it.
func (s *Series) Append(c Cell) {
	if s.HasFlag(SerCell) {
		panic("rt: Append on singular series")
	}
	s.cells = append(s.cells, c)
	s.info.length = uint32(len(s.cells))
}

// At returns a pointer to the i'th cell (bounds-checked by Go's slice
// semantics, which panics on out-of-range access exactly as an
// assert-bearing debug build of the original would).
func (s *Series) At(i int) *Cell { return &s.cells[i] }

// Cells exposes the backing cell slice read-only-by-convention; callers
// that mutate it are expected to go through At/Append.
func (s *Series) Cells() []Cell { return s.cells }
