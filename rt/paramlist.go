package rt

import "strings"

// ParamlistFlags selects builder behavior.
type ParamlistFlags uint8

const (
	FlagReturn ParamlistFlags = 1 << iota
	FlagLeave
	FlagFakeReturn
	FlagAnyValue
	FlagKeywords
)

func (f ParamlistFlags) has(bit ParamlistFlags) bool { return f&bit != 0 }

// ActionMeta holds the optional description/return annotations
// gathered while building a paramlist.
// Per-parameter types and notes are read directly off each
// parameter's *Param (they are already first-class fields there);
// duplicating them into a second meta-context would just be two
// copies of the same data; this is a deliberate simplification
// recorded in DESIGN.md.
type ActionMeta struct {
	Description string
	ReturnType  Typeset
	ReturnNote  string
	FakeReturn  bool
}

// DuplicateVariableError reports two parameters sharing a canonical
// spelling.
type DuplicateVariableError struct{ Name string }

func (e DuplicateVariableError) Error() string {
	return "rt: duplicate variable: " + e.Name
}

type parseMode int

const (
	modeNormal parseMode = iota
	modeLocals
	modeExterns
)

// pendingAnnotation holds a type-block/note-string seen before the
// word they describe, for the "can appear either before or after"
// rule governing annotation placement.
type pendingAnnotation struct {
	types    Typeset
	hasTypes bool
	note     string
}

// BuildParamlist parses specBlock and produces a managed paramlist
// array. specBlock cells must already be in "parameter spec dialect"
// form (strings, tags, blocks, word-family cells) as produced by a
// caller's own reader; lexical scanning of source text is out of
// scope.
func BuildParamlist(rt *Runtime, specBlock []Cell, flags ParamlistFlags) (*Series, *ActionMeta, error) {
	if flags.has(FlagReturn) && flags.has(FlagLeave) {
		return nil, nil, BadSpecError{Reason: "RETURN and LEAVE are mutually exclusive"}
	}

	var (
		params     []*Param
		meta       ActionMeta
		sawAnyWord bool
		mode       = modeNormal
		pending    pendingAnnotation
	)

	attach := func(p *Param) {
		if pending.hasTypes {
			p.Types = pending.types
			pending.hasTypes = false
		}
		if pending.note != "" {
			p.Note = pending.note
			pending.note = ""
		}
	}

	for _, c := range specBlock {
		switch c.Kind() {
		case KindText:
			text := c.Text()
			if !sawAnyWord && meta.Description == "" {
				meta.Description = text
				continue
			}
			if len(params) > 0 && params[len(params)-1].Note == "" {
				params[len(params)-1].Note = text
				continue
			}
			pending.note = text

		case KindTag:
			switch c.Text() {
			case "local":
				mode = modeLocals
			case "with":
				mode = modeExterns
			default:
				return nil, nil, BadSpecError{Reason: "unexpected top-level tag <" + c.Text() + ">"}
			}

		case KindBlock:
			block := c.SeriesVal().Cells()
			lastIsRefinement := len(params) > 0 && params[len(params)-1].Class == ParamRefinement
			lastIsHardQuote := len(params) > 0 && params[len(params)-1].Class == ParamHardQuote
			if len(params) > 0 && params[len(params)-1].Types == 0 {
				ts, err := parseTypeBlock(rt, block, lastIsHardQuote, lastIsRefinement)
				if err != nil {
					return nil, nil, err
				}
				params[len(params)-1].Types = ts
				continue
			}
			ts, err := parseTypeBlock(rt, block, false, false)
			if err != nil {
				return nil, nil, err
			}
			pending.types, pending.hasTypes = ts, true

		case KindWord, KindGetWord, KindLitWord, KindIssue, KindRefinement, KindSetWord:
			sawAnyWord = true
			sym := c.Symbol()

			var class ParamClass
			switch c.Kind() {
			case KindWord:
				if mode == modeNormal {
					class = ParamNormal
				} else {
					class = ParamLocal
				}
			case KindGetWord:
				if mode != modeNormal {
					return nil, nil, BadSpecError{Reason: "hard-quote parameter not legal in local/with mode"}
				}
				class = ParamHardQuote
			case KindLitWord:
				if mode != modeNormal {
					return nil, nil, BadSpecError{Reason: "soft-quote parameter not legal in local/with mode"}
				}
				class = ParamSoftQuote
			case KindIssue:
				if mode != modeNormal {
					return nil, nil, BadSpecError{Reason: "tight parameter not legal in local/with mode"}
				}
				class = ParamTight
			case KindRefinement:
				class = ParamRefinement
				mode = modeNormal // a refinement cancels any <local>/<with> mode
			case KindSetWord:
				class = ParamLocal
			}

			if mode == modeExterns && class != ParamRefinement {
				// <with> words are externs: consumed, no paramlist slot.
				continue
			}

			p := &Param{Class: class, Key: sym}
			if c.Kind() == KindSetWord {
				switch strings.ToLower(sym.Spelling()) {
				case "return":
					p.Class = ParamReturn
				case "leave":
					p.Class = ParamLeave
				}
			}
			attach(p)
			params = append(params, p)

		default:
			return nil, nil, BadSpecError{Reason: "unexpected " + c.Kind().String() + " in spec"}
		}
	}

	if err := checkDuplicates(params); err != nil {
		return nil, nil, err
	}

	if flags.has(FlagReturn) {
		params, meta.FakeReturn = synthesizeReturn(rt, params, flags)
	} else if flags.has(FlagLeave) {
		params = synthesizeLeave(rt, params)
	}

	for _, p := range params {
		if p.Class == ParamReturn {
			meta.ReturnType = p.Types
			meta.ReturnNote = p.Note
		}
	}

	paramlist := NewArray(rt.Pool, len(params)+1)
	var arch Cell
	arch.SetNothing() // placeholder; Make_Action installs the real archetype
	paramlist.Append(arch)
	for _, p := range params {
		var pc Cell
		pc.SetParamCell(p)
		paramlist.Append(pc)
	}
	paramlist.SetFlag(SerParamlist)
	paramlist.SetFacade(paramlist)
	paramlist.Manage()

	var metaPtr *ActionMeta
	if meta.Description != "" || meta.ReturnType != 0 || meta.ReturnNote != "" || hasAnyParamMeta(params) {
		metaPtr = &meta
	}
	return paramlist, metaPtr, nil
}

func hasAnyParamMeta(params []*Param) bool {
	for _, p := range params {
		if p.Note != "" || p.Types != 0 {
			return true
		}
	}
	return false
}

// checkDuplicates builds a transient symbol->index binder, reports the
// first duplicate canonical spelling, and is fully discarded (local to
// this call, never leaked) before returning, so binder state never
// survives a failure path.
func checkDuplicates(params []*Param) error {
	seen := map[string]int{}
	for i, p := range params {
		fold := strings.ToLower(p.Key.Spelling())
		if _, ok := seen[fold]; ok {
			return DuplicateVariableError{Name: p.Key.Spelling()}
		}
		seen[fold] = i
	}
	return nil
}

// synthesizeReturn implements definitional return: an explicit return:
// parameter is reclassified in place during the main pass (see
// BuildParamlist's KindSetWord handling) and is here relocated to the
// last slot; if none was declared, one is synthesized with the default
// typeset (any value except void and action!).
func synthesizeReturn(rt *Runtime, params []*Param, flags ParamlistFlags) ([]*Param, bool) {
	idx := -1
	for i, p := range params {
		if p.Class == ParamReturn {
			idx = i
			break
		}
	}
	if idx < 0 {
		ret := &Param{Class: ParamReturn, Key: rt.SymReturn, Types: defaultReturnTypeset()}
		return append(params, ret), flags.has(FlagFakeReturn)
	}
	ret := params[idx]
	rest := append(append([]*Param{}, params[:idx]...), params[idx+1:]...)
	return append(rest, ret), flags.has(FlagFakeReturn)
}

func synthesizeLeave(rt *Runtime, params []*Param) []*Param {
	idx := -1
	for i, p := range params {
		if p.Class == ParamLeave {
			idx = i
			break
		}
	}
	if idx < 0 {
		leave := &Param{Class: ParamLeave, Key: rt.SymLeave, Types: Typeset(0).Set(KindNothing)}
		return append(params, leave)
	}
	leave := params[idx]
	rest := append(append([]*Param{}, params[:idx]...), params[idx+1:]...)
	return append(rest, leave)
}

// defaultReturnTypeset is "any-value-except-void-and-action!", the
// typeset given to a synthesized implicit return slot.
func defaultReturnTypeset() Typeset {
	var ts Typeset
	for k := range kindNames {
		if k >= kindMax || k == KindNothing || k == KindAction {
			continue
		}
		ts = ts.Set(k)
	}
	return ts
}

// ParameterCount returns the number of parameter slots in paramlist,
// i.e. its length minus the archetype slot.
func ParameterCount(paramlist *Series) int { return paramlist.Len() - 1 }

// ParamAt returns the i'th parameter (0-based, excluding archetype).
func ParamAt(paramlist *Series, i int) *Param { return paramlist.At(i + 1).ParamVal() }
