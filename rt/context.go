package rt

// Context is an object-like varlist wrapper: an array whose [0] is a
// context archetype value and whose [1..] are variable slots, sharing
// a keylist (a paramlist, for FRAME!, or a plain keylist for
// OBJECT!/MODULE!/ERROR!/PORT!) with the paramlist it was built from.
type Context struct {
	Varlist *Series
	Keylist *Series // the paramlist (or plain keylist) naming each slot
	ArchKind Kind    // OBJECT!, MODULE!, ERROR!, PORT!, or FRAME!
}

// InaccessibleError reports a read/write against a varlist whose
// owning frame has ended.
type InaccessibleError struct{}

func (InaccessibleError) Error() string { return "rt: context is inaccessible" }

// NewContext allocates a varlist of keylist's length, sets its
// archetype, and returns the wrapping Context. All variable slots
// start as KindNothing; callers fill them afterward.
func NewContext(pool *Pool, keylist *Series, archKind Kind) *Context {
	n := keylist.Len()
	varlist := NewArray(pool, n)
	for i := 0; i < n; i++ {
		var c Cell
		c.SetNothing()
		varlist.Append(c)
	}
	varlist.SetFlag(SerVarlist)
	varlist.SetKeysource(keylist)

	ctx := &Context{Varlist: varlist, Keylist: keylist, ArchKind: archKind}
	arch := varlist.At(0)
	arch.Reset(archKind)
	arch.ptr1 = ctx
	return ctx
}

// Inaccessible reports whether reads/writes against ctx must fail
// because its owning frame has ended.
func (ctx *Context) Inaccessible() bool { return ctx.Varlist.HasFlag(SerInaccessible) }

// MarkInaccessible flags ctx as inaccessible while preserving its
// identity: a dead varlist keeps its identity but never again yields
// reads or writes.
func (ctx *Context) MarkInaccessible() { ctx.Varlist.SetFlag(SerInaccessible) }

// Get returns the i'th variable slot (0-based, excluding the
// archetype at keylist index 0).
func (ctx *Context) Get(i int) (*Cell, error) {
	if ctx.Inaccessible() {
		return nil, InaccessibleError{}
	}
	return ctx.Varlist.At(i + 1), nil
}

// Len reports the number of variable slots (excluding the archetype).
func (ctx *Context) Len() int { return ctx.Varlist.Len() - 1 }

// Meta returns the meta-context stored on the varlist's misc slot, if
// any.
func (ctx *Context) Meta() *Context { return ctx.Varlist.MetaContext() }
