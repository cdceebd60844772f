package rt

// ResultCode is one of the sentinel outcomes a Dispatcher can report
// for a call.
type ResultCode int

const (
	// ResultValue means a value was placed in f.Out.
	ResultValue ResultCode = iota
	// ResultThrown means a thrown value (RETURN, UNWIND, BREAK, or a
	// true error) is in f.Out; f.Thrown is also set.
	ResultThrown
	// ResultInvisible means the caller should see no value at all.
	ResultInvisible
	// ResultRedoChecked/ResultRedoUnchecked mean f.Phase has been
	// rewritten to another action and the evaluator should invoke its
	// dispatcher next, with or without argument type-checking.
	ResultRedoChecked
	ResultRedoUnchecked
)

// Dispatcher is the per-action callback invoked with a frame to
// produce the action's result.
// This is this module's half of the Dispatcher(Frame) -> Result
// contract that the out-of-scope Do_Core evaluator supplies frames to.
type Dispatcher func(rt *Runtime, f *Frame) (ResultCode, error)

// Frame is the evaluator<->dispatcher contract object of:
// it exposes out, phase, binding, the param/arg/special cursors, and a
// scratch cell.
type Frame struct {
	Out     Cell     // result cell
	Phase   *Action  // current action (dispatchers may rewrite this)
	Binding *Context // frame's own varlist-backed context
	Cell    Cell     // scratch

	Args    []Cell  // argument values, parallel to Phase.Facade()'s params
	Special []*Cell // per-slot fill-source cursor used during pickups

	PostActions []*Action // dispatcher-pushed stack, run LIFO
	Thrown      bool

	rt *Runtime
}

// isSpecializedRefinementSlot reports whether an exemplar slot for a
// refinement parameter signals "this refinement is specialized on"
// via a REFINEMENT! sentinel cell, as opposed to plain nulled.
func isSpecializedRefinementSlot(c *Cell) bool { return c.Kind() == KindRefinement }

// fillFromExemplarSlot replicates the exemplar-slot rule shared by
// MakeFrameFor and Apply:
//   - non-refinement -> copy the exemplar slot verbatim;
//   - refinement & slot is LOGIC! -> that boolean;
//   - refinement & slot is a refinement-value or nulled -> true iff
//     specialized, else nulled.
func fillFromExemplarSlot(p *Param, slot *Cell) Cell {
	if p.Class != ParamRefinement {
		return *slot
	}
	if slot.Kind() == KindLogic {
		return *slot
	}
	var v Cell
	if isSpecializedRefinementSlot(slot) {
		v.SetLogic(true)
	} else {
		v.SetNulled()
	}
	return v
}

// MakeFrameFor allocates a non-stack varlist sized to the facade
// length, initializes its archetype, and fills argument slots from the
// exemplar (if any)
func MakeFrameFor(rt *Runtime, action *Action) (*Frame, error) {
	facade := action.Facade()
	n := ParameterCount(facade)

	ctx := NewContext(rt.Pool, facade, KindFrame)
	f := &Frame{Phase: action, Binding: ctx, Args: make([]Cell, n), rt: rt}
	rt.trackFrame(f)

	exemplar := action.Exemplar()
	for i := 0; i < n; i++ {
		p := ParamAt(facade, i)
		var val Cell
		if exemplar != nil {
			val = fillFromExemplarSlot(p, exemplar.At(i+1))
		} else {
			val.SetNulled()
		}
		f.Args[i] = val
		slot, err := ctx.Get(i)
		if err != nil {
			return nil, err
		}
		*slot = val
	}
	return f, nil
}

// Apply synthesizes a frame for action and fills it either from an
// exemplar-shaped context or from a definition block
// "apply". Exactly one of exemplar or def should be non-nil.
// For a definition block: its set-words are bound into the frame's
// context, the block is run through the Runtime's BodyEvaluator into a
// scratch cell (the result discarded), and the now-populated args are
// walked once more in type-check mode -- mirroring "re-run the
// evaluator's argument walker in type-check mode" without requiring
// the out-of-scope Do_Core to do anything beyond the BodyEvaluator
// contract.
func Apply(rt *Runtime, action *Action, exemplar *Series, def *Cell) (*Frame, error) {
	facade := action.Facade()
	n := ParameterCount(facade)

	f, err := MakeFrameFor(rt, action)
	if err != nil {
		return nil, err
	}
	f.Special = make([]*Cell, n)

	if exemplar != nil {
		for i := 0; i < n; i++ {
			slot := exemplar.At(i + 1)
			f.Special[i] = slot
			p := ParamAt(facade, i)
			val := fillFromExemplarSlot(p, slot)
			f.Args[i] = val
			ctxSlot, _ := f.Binding.Get(i)
			*ctxSlot = val
		}
		return f, nil
	}

	if def != nil {
		bindSetWordsInFrame(f, def)
		if _, err := rt.Eval(f, def); err != nil {
			return nil, err
		}
		if err := TypeCheckArgs(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// bindSetWordsInFrame attaches the frame's context as the binding of
// every set-word cell in def. A set-word naming a
// spelling outside the frame's keylist is left bound too; the lookup
// failure that implies is the evaluator's concern, not this wiring
// step's (actually performing the assignment is the evaluator's job,
// out of scope).
func bindSetWordsInFrame(f *Frame, def *Cell) {
	if def.Kind() != KindBlock {
		return
	}
	for i, c := range def.SeriesVal().Cells() {
		if c.Kind() != KindSetWord {
			continue
		}
		c.BindTo(f.Binding)
		def.SeriesVal().Cells()[i] = c
	}
}

// TypeCheckArgs walks the frame's now-populated arguments and verifies
// each against its parameter's declared typeset, when one was given.
func TypeCheckArgs(f *Frame) error {
	facade := f.Phase.Facade()
	for i := range f.Args {
		p := ParamAt(facade, i)
		if p.Types == 0 {
			continue
		}
		k, _ := f.Args[i].UnescapedKind()
		if f.Args[i].Kind() == KindNulled {
			if p.Types.Nullable() || p.Types.Endable() {
				continue
			}
			return BadMakeError{Kind: KindNulled, Input: p.Key.Spelling()}
		}
		if !p.Types.Test(k) {
			return BadMakeError{Kind: k, Input: p.Key.Spelling()}
		}
	}
	return nil
}

// Run drives the dispatch loop: it invokes the current phase's
// dispatcher, follows REDO_CHECKED/REDO_UNCHECKED by re-invoking with
// the (already rewritten) new phase, and after an ordinary value
// result, pops and runs any dispatcher-pushed post-actions LIFO.
func (f *Frame) Run(rt *Runtime) (Cell, error) {
	defer func() {
		f.Binding.MarkInaccessible()
		rt.untrackFrame(f)
	}()
	for {
		code, err := f.Phase.Dispatcher()(rt, f)
		if err != nil {
			return f.Out, err
		}
		switch code {
		case ResultThrown:
			f.Thrown = true
			return f.Out, nil
		case ResultRedoChecked, ResultRedoUnchecked:
			continue
		case ResultInvisible:
			return f.Out, nil
		default:
			if len(f.PostActions) > 0 {
				next := f.PostActions[len(f.PostActions)-1]
				f.PostActions = f.PostActions[:len(f.PostActions)-1]
				f.Phase = next
				continue
			}
			return f.Out, nil
		}
	}
}
