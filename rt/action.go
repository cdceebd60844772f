package rt

// ActionFlags are the header flags cached on an Action at construction
// time by scanning its parameters in order.
type ActionFlags uint8

const (
	ActionDefersLookback ActionFlags = 1 << iota
	ActionQuotesFirstArg
	ActionInvisible
	ActionHasReturn
	ActionHasLeave
)

func (f ActionFlags) Has(bit ActionFlags) bool { return f&bit != 0 }

// Action is a paramlist pointer plus a body holder. The
// body holder is a singular array whose one cell is the implementation
// body; its misc slot names the dispatcher, its link slot names the
// optional exemplar. The paramlist's own link slot names the facade
// (defaulting to the paramlist itself).
type Action struct {
	Paramlist  *Series
	BodyHolder *Series
	Flags      ActionFlags
}

// Facade returns the paramlist-compatible keylist whose [0] names the
// underlying action.
func (a *Action) Facade() *Series { return a.Paramlist.Facade() }

// Exemplar returns the optional prefill context for specialization, or
// nil.
func (a *Action) Exemplar() *Series { return a.BodyHolder.Exemplar() }

// Dispatcher returns the action's current dispatch function. Hijacking
// rewrites this in place.
func (a *Action) Dispatcher() Dispatcher { return a.BodyHolder.DispatcherFn() }

// SetDispatcher rewrites the action's dispatcher, preserving its
// identity: every existing ACTION! value pointing at this *Action
// continues to route through it.
func (a *Action) SetDispatcher(d Dispatcher) { a.BodyHolder.SetDispatcher(d) }

// Body returns the implementation body cell (a block for interpreted
// actions, a handle-like cell for natives).
func (a *Action) Body() *Cell { return a.BodyHolder.At(0) }

// MakeAction packages paramlist, dispatcher, body and an optional
// exemplar into an Action, computes its cached flags, and installs the
// self-referencing archetype at paramlist[0].
func MakeAction(rt *Runtime, paramlist *Series, dispatcher Dispatcher, body Cell, exemplar *Series) (*Action, error) {
	// exemplar is archetype-plus-slots shaped, like paramlist itself, so
	// its length is ParameterCount+1, not ParameterCount: fillFromExemplarSlot
	// readers (MakeFrameFor, Apply) index exemplar.At(i+1) for i in [0,n).
	if exemplar != nil && exemplar.Len() != ParameterCount(paramlist)+1 {
		return nil, BadMakeError{Kind: KindFrame, Input: "exemplar length does not match facade"}
	}

	bodyHolder := NewSingularArray(rt.Pool)
	bodyHolder.cells[0] = body
	bodyHolder.SetDispatcher(dispatcher)
	if exemplar != nil {
		bodyHolder.SetExemplar(exemplar)
	}

	a := &Action{Paramlist: paramlist, BodyHolder: bodyHolder}
	a.Flags = computeActionFlags(paramlist)

	arch := paramlist.At(0)
	arch.SetAction(a)

	paramlist.Manage()
	bodyHolder.Manage()
	if exemplar != nil {
		exemplar.Manage()
	}

	return a, nil
}

// computeActionFlags scans paramlist in declaration order, setting:
//   DEFERS_LOOKBACK: first non-hidden, non-local param is normal.
//   QUOTES_FIRST_ARG: first non-hidden, non-local param is hard/soft-quoted.
//   INVISIBLE: a synthesized return param whose typeset bits are all zero.
//   RETURN/LEAVE: presence of a return/leave-class param.
func computeActionFlags(paramlist *Series) ActionFlags {
	var flags ActionFlags
	firstSeen := false
	for i := 0; i < ParameterCount(paramlist); i++ {
		p := ParamAt(paramlist, i)
		switch p.Class {
		case ParamLocal:
			continue
		case ParamReturn:
			flags |= ActionHasReturn
			if p.Types == 0 {
				flags |= ActionInvisible
			}
			continue
		case ParamLeave:
			flags |= ActionHasLeave
			continue
		}
		if p.Types.Hidden() {
			continue
		}
		if !firstSeen {
			firstSeen = true
			switch p.Class {
			case ParamNormal:
				flags |= ActionDefersLookback
			case ParamHardQuote, ParamSoftQuote:
				flags |= ActionQuotesFirstArg
			}
		}
	}
	return flags
}
