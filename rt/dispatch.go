package rt

// This file implements the dispatcher family: each function here
// returns a Dispatcher closed over whatever the body cell needs to
// hold for that contract.

// DatatypeDispatchError is raised by FailDispatcher, the default for
// kinds with no wired dispatch.
type DatatypeDispatchError struct{ Kind Kind }

func (e DatatypeDispatchError) Error() string {
	return "rt: " + e.Kind.String() + " does not dispatch"
}

func outValue(f *Frame, c Cell) (ResultCode, error) {
	f.Out = c
	return ResultValue, nil
}

// NoopDispatcher: body is empty; return nothing!, so hijacking an
// empty stub is cheap.
func NoopDispatcher(rt *Runtime, f *Frame) (ResultCode, error) {
	var c Cell
	c.SetNothing()
	return outValue(f, c)
}

// UncheckedDispatcher evaluates the body block; the result is whatever
// the body yields.
func UncheckedDispatcher(rt *Runtime, f *Frame) (ResultCode, error) {
	v, err := rt.Eval(f, f.Phase.Body())
	if err != nil {
		return ResultValue, err
	}
	return outValue(f, v)
}

// VoiderDispatcher evaluates the body, discards it, and returns
// nothing!.
func VoiderDispatcher(rt *Runtime, f *Frame) (ResultCode, error) {
	if _, err := rt.Eval(f, f.Phase.Body()); err != nil {
		return ResultValue, err
	}
	var c Cell
	c.SetNothing()
	return outValue(f, c)
}

// ReturnerDispatcher evaluates the body and type-checks the result
// against the action's return parameter.
func ReturnerDispatcher(rt *Runtime, f *Frame) (ResultCode, error) {
	v, err := rt.Eval(f, f.Phase.Body())
	if err != nil {
		return ResultValue, err
	}
	ret := returnParam(f.Phase.Paramlist)
	if ret != nil && ret.Types != 0 {
		k, _ := v.UnescapedKind()
		if !ret.Types.Test(k) {
			return ResultValue, BadReturnTypeError{Action: ret.Key.Spelling(), Got: k}
		}
	}
	return outValue(f, v)
}

func returnParam(paramlist *Series) *Param {
	for i := 0; i < ParameterCount(paramlist); i++ {
		if p := ParamAt(paramlist, i); p.Class == ParamReturn {
			return p
		}
	}
	return nil
}

// EliderDispatcher evaluates the body into the frame's scratch cell and
// reports invisibility, so the caller sees no value at all.
func EliderDispatcher(rt *Runtime, f *Frame) (ResultCode, error) {
	v, err := rt.Eval(f, f.Phase.Body())
	if err != nil {
		return ResultValue, err
	}
	f.Cell = v
	return ResultInvisible, nil
}

// CommenterDispatcher is the empty-body specialization of Elider.
func CommenterDispatcher(rt *Runtime, f *Frame) (ResultCode, error) {
	return ResultInvisible, nil
}

// NewDatatypeChecker returns a dispatcher whose body is a DATATYPE!
// cell; it succeeds iff argument 1's kind matches.
func NewDatatypeChecker(body Cell) (Dispatcher, error) {
	if body.Kind() != KindDatatype {
		return nil, BadMakeError{Kind: KindAction, Input: "datatype-checker body must be a datatype!"}
	}
	want := body.DatatypeVal()
	return func(rt *Runtime, f *Frame) (ResultCode, error) {
		if len(f.Args) < 1 {
			return ResultValue, BadMakeError{Kind: want, Input: "missing argument"}
		}
		k, _ := f.Args[0].UnescapedKind()
		var c Cell
		c.SetLogic(k == want)
		return outValue(f, c)
	}, nil
}

// NewTypesetChecker returns a dispatcher whose body is a typeset!
// cell; it succeeds iff argument 1's kind is a member of the set.
func NewTypesetChecker(body Cell) Dispatcher {
	ts := body.TypesetVal()
	return func(rt *Runtime, f *Frame) (ResultCode, error) {
		if len(f.Args) < 1 {
			return ResultValue, BadMakeError{Kind: KindTypeset, Input: "missing argument"}
		}
		k, _ := f.Args[0].UnescapedKind()
		var c Cell
		c.SetLogic(ts.Test(k))
		return outValue(f, c)
	}
}

// NewHijacker builds a dispatcher whose body holds an action value: it
// swaps the frame's phase to that action and redoes with checking. No
// new frame is built; the current frame and its Args are reused as
// they are.
func NewHijacker(body Cell) Dispatcher {
	return func(rt *Runtime, f *Frame) (ResultCode, error) {
		target := body.ActionVal()
		f.Phase = target
		return ResultRedoChecked, nil
	}
}

// NewAdapter builds a dispatcher whose body is [prelude-block,
// adaptee-action]: the prelude runs against the underlying frame
// (a throw aborts the adaptee), then phase swaps to the adaptee and
// redoes with checking.
func NewAdapter(bodyArr *Series) (Dispatcher, error) {
	if bodyArr.Len() != 2 {
		return nil, BadMakeError{Kind: KindAction, Input: "adapter body must be [prelude adaptee]"}
	}
	prelude := *bodyArr.At(0)
	adaptee := bodyArr.At(1).ActionVal()
	return func(rt *Runtime, f *Frame) (ResultCode, error) {
		v, err := rt.Eval(f, &prelude)
		if err != nil {
			return ResultValue, err
		}
		if isThrownValue(v) {
			f.Out = v
			return ResultThrown, nil
		}
		f.Phase = adaptee
		return ResultRedoChecked, nil
	}, nil
}

// NewEncloser builds a dispatcher whose body is [inner-action,
// outer-action]: the frame's context is wrapped in a FRAME! value,
// placed in the first argument of a fresh frame for outer, and outer
// is run on that frame; its result (or throw) becomes this frame's.
// This dispatcher does not invoke inner, and the FRAME! value carries
// only the context, not inner.
func NewEncloser(bodyArr *Series) (Dispatcher, error) {
	if bodyArr.Len() != 2 {
		return nil, BadMakeError{Kind: KindAction, Input: "encloser body must be [inner outer]"}
	}
	inner := bodyArr.At(0).ActionVal()
	outer := bodyArr.At(1).ActionVal()
	return func(rt *Runtime, f *Frame) (ResultCode, error) {
		var frameVal Cell
		frameVal.Reset(KindFrame)
		frameVal.ptr1 = f.Binding
		f.Binding.ArchKind = KindFrame
		_ = inner // inner is invoked indirectly by outer's DO of frameVal
		outerFrame, err := MakeFrameFor(rt, outer)
		if err != nil {
			return ResultValue, err
		}
		if len(outerFrame.Args) > 0 {
			outerFrame.Args[0] = frameVal
		}
		v, err := outerFrame.Run(rt)
		if err != nil {
			return ResultValue, err
		}
		if outerFrame.Thrown {
			f.Out = v
			return ResultThrown, nil
		}
		return outValue(f, v)
	}, nil
}

// NewChainer builds a dispatcher whose body is an array of actions:
// all but the first are pushed onto the frame's post-processing stack
// in reverse order, phase swaps to the first, and it redoes unchecked.
func NewChainer(chain []*Action) (Dispatcher, error) {
	if len(chain) == 0 {
		return nil, BadMakeError{Kind: KindAction, Input: "chainer body must name at least one action"}
	}
	rest := chain[1:]
	return func(rt *Runtime, f *Frame) (ResultCode, error) {
		for i := len(rest) - 1; i >= 0; i-- {
			f.PostActions = append(f.PostActions, rest[i])
		}
		f.Phase = chain[0]
		return ResultRedoUnchecked, nil
	}, nil
}

// FailDispatcher is the default for kinds with no wired dispatch.
func FailDispatcher(kind Kind) Dispatcher {
	return func(rt *Runtime, f *Frame) (ResultCode, error) {
		return ResultValue, DatatypeDispatchError{Kind: kind}
	}
}

// TypedHandler is a per-kind sub-dispatcher registered in a Runtime's
// typed-action table.
type TypedHandler func(rt *Runtime, f *Frame) (ResultCode, error)

// RegisterTypedHandler wires handler as the implementation of verb for
// values of kind k.
func (rt *Runtime) RegisterTypedHandler(k Kind, verb string, handler TypedHandler) {
	if rt.typedTable == nil {
		rt.typedTable = map[Kind]map[string]TypedHandler{}
	}
	if rt.typedTable[k] == nil {
		rt.typedTable[k] = map[string]TypedHandler{}
	}
	rt.typedTable[k][verb] = handler
}

// NewActionDispatch builds a dispatcher whose body stores a verb
// symbol; at call time it looks up the per-kind sub-dispatcher for
// argument 1's kind and calls it.
func NewActionDispatch(verb *Symbol) Dispatcher {
	return func(rt *Runtime, f *Frame) (ResultCode, error) {
		if len(f.Args) < 1 {
			return ResultValue, IllegalActionError{Verb: verb.Spelling()}
		}
		k, _ := f.Args[0].UnescapedKind()
		table := rt.typedTable[k]
		handler, ok := table[verb.Spelling()]
		if !ok {
			return ResultValue, IllegalActionError{Kind: k, Verb: verb.Spelling()}
		}
		return handler(rt, f)
	}
}

// isThrownValue reports whether v represents a thrown control value
// (RETURN/UNWIND/BREAK/error share one mechanism with a different
// tag). The Adapter uses it on its prelude's result, testing FlagThrown
// rather than inspecting Kind.
func isThrownValue(c Cell) bool { return c.HasFlag(FlagThrown) }
