package rt

// Kind is the tag byte of a Cell. Built-in kinds occupy the low range;
// values above kindMax are pseudotypes used to encode parameter classes,
// quoting depth and the end/nulled sentinels.
type Kind uint8

// Built-in datatype kinds
const (
	KindNothing Kind = iota
	KindBlank
	KindLogic
	KindInteger
	KindDecimal
	KindPercent
	KindMoney
	KindChar
	KindPair
	KindTime
	KindDate
	KindTuple
	KindBinary
	KindText
	KindFile
	KindEmail
	KindURL
	KindTag
	KindBitset
	KindImage
	KindVector
	KindBlock
	KindGroup
	KindPath
	KindSetPath
	KindGetPath
	KindWord
	KindSetWord
	KindGetWord
	KindLitWord
	KindIssue
	KindRefinement
	KindAction
	KindFrame
	KindObject
	KindModule
	KindError
	KindPort
	KindMap
	KindDatatype
	KindTypeset
	KindHandle
	KindLibrary
	KindGob
	KindEvent
	KindStruct
	KindVarargs

	kindMax // first free slot above the built-in range
)

// Pseudotypes live above kindMax. Quoted cells additionally use four
// quoting bands (depth 0..3) stacked on top of any real kind, per
// quoteBand below, so pseudotypes are placed well clear of that band.
// The highest real band code is KindVarargs(quoteBand*3) = 238, so 239
// is the first free value a uint8 Kind can still hold.
const (
	// KindQuoted marks an indirection cell for quote depth >= 4; the
	// wrapped value lives in the cell's payload as a pointer to a
	// singular array.
	KindQuoted Kind = 239 + iota
	// KindEnd marks an end-of-input sentinel cell.
	KindEnd
	// KindNulled marks the "no value" cell distinguished from blank.
	KindNulled
	// KindParam marks a parameter cell: a typeset-shaped slot whose
	// class and key spelling live in a *Param rather than overloading
	// the kind byte.
	KindParam
)

// quoteBand is the number of kind codes reserved per quoting level for
// depths 0..3.
const quoteBand = 64

// quotedKind returns the kind byte encoding base quoted depth levels 0..3.
func quotedKind(base Kind, depth int) Kind {
	return base + Kind(depth)*quoteBand
}

// baseKind strips any depth-0..3 quoting band, returning the unescaped
// kind and the depth that was stripped.
func baseKind(k Kind) (Kind, int) {
	if k >= KindQuoted {
		return k, 0 // indirection cells report depth via the wrapper, not the byte
	}
	depth := 0
	for k >= kindMax {
		k -= quoteBand
		depth++
	}
	return k, depth
}

// String names follow the datatype! convention used throughout the
// dialect (lowercase-with-bang), matching how Rebol-family runtimes name
// their built-in types in error messages and REFLECT queries.
var kindNames = map[Kind]string{
	KindNothing:    "nothing!",
	KindBlank:      "blank!",
	KindLogic:      "logic!",
	KindInteger:    "integer!",
	KindDecimal:    "decimal!",
	KindPercent:    "percent!",
	KindMoney:      "money!",
	KindChar:       "char!",
	KindPair:       "pair!",
	KindTime:       "time!",
	KindDate:       "date!",
	KindTuple:      "tuple!",
	KindBinary:     "binary!",
	KindText:       "text!",
	KindFile:       "file!",
	KindEmail:      "email!",
	KindURL:        "url!",
	KindTag:        "tag!",
	KindBitset:     "bitset!",
	KindImage:      "image!",
	KindVector:     "vector!",
	KindBlock:      "block!",
	KindGroup:      "group!",
	KindPath:       "path!",
	KindSetPath:    "set-path!",
	KindGetPath:    "get-path!",
	KindWord:       "word!",
	KindSetWord:    "set-word!",
	KindGetWord:    "get-word!",
	KindLitWord:    "lit-word!",
	KindIssue:      "issue!",
	KindRefinement: "refinement!",
	KindAction:     "action!",
	KindFrame:      "frame!",
	KindObject:     "object!",
	KindModule:     "module!",
	KindError:      "error!",
	KindPort:       "port!",
	KindMap:        "map!",
	KindDatatype:   "datatype!",
	KindTypeset:    "typeset!",
	KindHandle:     "handle!",
	KindLibrary:    "library!",
	KindGob:        "gob!",
	KindEvent:      "event!",
	KindStruct:     "struct!",
	KindVarargs:    "varargs!",
	KindQuoted:     "quoted!",
	KindEnd:        "end!",
	KindNulled:     "nulled!",
	KindParam:      "param!",
}

func (k Kind) String() string {
	base, depth := baseKind(k)
	name, ok := kindNames[base]
	if !ok {
		if k == KindQuoted || k == KindEnd || k == KindNulled || k == KindParam {
			return kindNames[k]
		}
		return "unknown!"
	}
	for ; depth > 0; depth-- {
		name = "'" + name
	}
	return name
}

// bindable reports whether cells of this kind carry a binding (held in
// the cell's ptr0 word).
func (k Kind) bindable() bool {
	base, _ := baseKind(k)
	switch base {
	case KindWord, KindSetWord, KindGetWord, KindLitWord, KindRefinement, KindIssue,
		KindBlock, KindGroup, KindPath, KindSetPath, KindGetPath,
		KindAction, KindFrame, KindObject, KindModule, KindError, KindPort:
		return true
	default:
		return false
	}
}
