package rt

import "fmt"

// Typeset is the 64-bit bitset over built-in kinds plus pseudotype flag
// bits. Bits [0, kindMax) are datatype membership bits; bits above
// that are the pseudotype flags.
type Typeset uint64

const (
	// Datatype bits occupy [0, kindMax). Pseudotype flags start there.
	flagEndable Typeset = 1 << (iota + uint(kindMax))
	flagVariadic
	flagSkippable
	flagHidden
	flagUnbindable
	flagNoopIfBlank
	flagQuotedWord
	flagQuotedPath
	flagNullable
)

func kindBit(k Kind) Typeset {
	base, _ := baseKind(k)
	if base >= kindMax {
		panic(fmt.Sprintf("rt: kindBit of pseudotype %v", k))
	}
	return 1 << uint(base)
}

func (t Typeset) Set(k Kind) Typeset   { return t | kindBit(k) }
func (t Typeset) Clear(k Kind) Typeset { return t &^ kindBit(k) }
func (t Typeset) Test(k Kind) bool     { return t&kindBit(k) != 0 }

func (t Typeset) Union(o Typeset) Typeset     { return t | o }
func (t Typeset) Intersect(o Typeset) Typeset { return t & o }
func (t Typeset) Difference(o Typeset) Typeset { return t &^ o }
func (t Typeset) Complement() Typeset         { return ^t }
func (t Typeset) Equal(o Typeset) bool        { return t == o }

func (t Typeset) Endable() bool     { return t&flagEndable != 0 }
func (t Typeset) Variadic() bool    { return t&flagVariadic != 0 }
func (t Typeset) Skippable() bool   { return t&flagSkippable != 0 }
func (t Typeset) Hidden() bool      { return t&flagHidden != 0 }
func (t Typeset) Unbindable() bool  { return t&flagUnbindable != 0 }
func (t Typeset) NoopIfBlank() bool { return t&flagNoopIfBlank != 0 }
func (t Typeset) QuotedWord() bool  { return t&flagQuotedWord != 0 }
func (t Typeset) QuotedPath() bool  { return t&flagQuotedPath != 0 }
func (t Typeset) Nullable() bool    { return t&flagNullable != 0 }

// ParamClass is the parameter class carried in a parameter cell's
// *Param (the cell's kind byte is KindParam).
type ParamClass int

const (
	ParamNormal ParamClass = iota
	ParamTight
	ParamHardQuote
	ParamSoftQuote
	ParamRefinement
	ParamLocal
	ParamReturn
	ParamLeave
)

func (pc ParamClass) String() string {
	switch pc {
	case ParamNormal:
		return "normal"
	case ParamTight:
		return "tight"
	case ParamHardQuote:
		return "hard-quote"
	case ParamSoftQuote:
		return "soft-quote"
	case ParamRefinement:
		return "refinement"
	case ParamLocal:
		return "local"
	case ParamReturn:
		return "return"
	case ParamLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// Param is a typeset cell whose class and key spelling are stored
// alongside the bitset.
type Param struct {
	Class   ParamClass
	Key     *Symbol
	Types   Typeset
	Note    string // parameter-notes entry, if any
	Pickup  bool   // marks a refinement as mid-pickup; nothing in this package sets or reads it
}

// BadSpecError reports a malformed spec dialect token.
type BadSpecError struct{ Reason string }

func (e BadSpecError) Error() string { return "rt: bad spec: " + e.Reason }

// parseTypeBlock converts a type-block's cells into a Typeset, applying
// the following policy:
//   - bare word naming a kind -> that kind's bit
//   - <end>,<opt>,<...>,<skip>,<blank> -> pseudotype flag bits
//   - quoted word/path -> QUOTED_WORD/QUOTED_PATH bit
//   - anything else quoted -> error.
// isHardQuote indicates whether the owning parameter is hard-quoted,
// the only class <skip> is legal on.
func parseTypeBlock(rt *Runtime, block []Cell, isHardQuote, isRefinement bool) (Typeset, error) {
	var ts Typeset
	for _, c := range block {
		switch c.Kind() {
		case KindWord:
			name := c.Symbol().Spelling()
			k, ok := kindByName(name)
			if !ok {
				return 0, BadSpecError{Reason: "unknown type name " + name}
			}
			ts = ts.Set(k)
		case KindTag:
			switch c.Text() {
			case "end":
				ts |= flagEndable
			case "opt":
				if isRefinement {
					return 0, BadSpecError{Reason: "refinement may not be <opt>-typed"}
				}
				ts |= flagNullable
			case "...":
				ts |= flagVariadic
			case "skip":
				if !isHardQuote {
					return 0, BadSpecError{Reason: "<skip> is only legal on hard-quoted parameters"}
				}
				ts |= flagSkippable
			case "blank":
				ts |= flagNoopIfBlank
			default:
				return 0, BadSpecError{Reason: "unknown tag <" + c.Text() + ">"}
			}
		default:
			if depth := c.QuoteDepth(); depth > 0 {
				base := c.Dequote()
				switch base {
				case KindWord:
					ts |= flagQuotedWord
				case KindPath:
					ts |= flagQuotedPath
				default:
					return 0, BadSpecError{Reason: "quoted " + base.String() + " not legal in a type block"}
				}
				continue
			}
			return 0, BadSpecError{Reason: "unexpected " + c.Kind().String() + " in type block"}
		}
	}
	return ts, nil
}

// kindByName maps a bare spec-dialect word (without the trailing "!")
// to its Kind, e.g. "integer" -> KindInteger.
func kindByName(name string) (Kind, bool) {
	for k, full := range kindNames {
		if k >= kindMax {
			continue
		}
		if full == name+"!" {
			return k, true
		}
	}
	return 0, false
}
