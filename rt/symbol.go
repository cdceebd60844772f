package rt

import (
	"strings"

	"golang.org/x/sync/singleflight"
)

// Symbol is an interned identifier spelling. A symbol is
// either the canon of its case-insensitive class or a synonym linked
// into that canon's ring.
type Symbol struct {
	spelling string
	fold     string // case-folded spelling, used as the hash key
	ring     *Symbol // next member of the circular synonym ring
	isCanon  bool
	slot     int // table index, meaningful only when isCanon
	wellKnown int // Canon(SYM_XXX) index; 0 if not registered

	// bindIndex is the transient pair of words used during binding,
	// asserted zero outside of a binding operation.
	bindIndex [2]int
}

// Spelling returns the exact (case-preserved) bytes this symbol was
// interned with.
func (s *Symbol) Spelling() string { return s.spelling }

// WellKnown reports the compile-time Canon(SYM_XXX) index for this
// symbol's canon, or 0 if it has none.
func (s *Symbol) WellKnown() int {
	if s.isCanon {
		return s.wellKnown
	}
	return 0
}

// tombstone is the single shared deletion marker for every interner of
// every Runtime, mirroring the original's one static PG_Deleted_Canon.
// It holds no runtime-specific state and is never dereferenced for
// content, only compared by pointer identity, so sharing it
// process-wide is safe.
var tombstone = &Symbol{spelling: "\x00<deleted>"}

// primes is the hash-table size ladder from original_source/c-word.c's
// static Primes[] table, truncated to sizes realistic for an in-memory
// interner.
var primes = []int{
	7, 13, 31, 61, 127, 251, 509, 1021, 2039, 4093, 8191, 16381,
	32749, 65521, 131071, 262139, 524287, 1048573, 2097143, 4194301,
}

// getHashPrime returns the smallest table prime >= size, or 0 if size
// exceeds the ladder (original_source/c-word.c: Get_Hash_Prime).
func getHashPrime(size int) int {
	for _, p := range primes {
		if size <= p {
			return p
		}
	}
	return 0
}

// Interner is the open-addressed, linear-probed symbol table backing
// Runtime.Intern/Canon.
type Interner struct {
	table    []*Symbol // nil = empty, tombstone = deleted, else a canon
	count    int       // live canons
	tombs    int       // tombstone slots
	rehashes singleflight.Group
}

// NewInterner creates an empty interner sized for the ladder's first
// step.
func NewInterner() *Interner {
	return &Interner{table: make([]*Symbol, primes[0])}
}

func foldKey(s string) string { return strings.ToLower(s) }

func hashString(s string) uint64 {
	// FNV-1a, adequate for a linear-probed table keyed by case-folded
	// identifier spellings.
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// SizeLimitError reports that the interner cannot grow further.
type SizeLimitError struct{}

func (SizeLimitError) Error() string { return "rt: symbol table cannot grow further" }

// maybeRehash grows the table once load factor exceeds 50%, collapsing
// tombstones. Concurrent triggers on the same Interner (a future
// multi-goroutine embedder) collapse into a single physical rehash via
// singleflight.
func (in *Interner) maybeRehash() error {
	if (in.count+in.tombs)*2 <= len(in.table) {
		return nil
	}
	_, err, _ := in.rehashes.Do("rehash", func() (interface{}, error) {
		if (in.count+in.tombs)*2 <= len(in.table) {
			return nil, nil // another caller already rehashed
		}
		next := getHashPrime(len(in.table)*2 + 1)
		if next == 0 || next <= len(in.table) {
			return nil, SizeLimitError{}
		}
		old := in.table
		in.table = make([]*Symbol, next)
		in.count, in.tombs = 0, 0
		for _, canon := range old {
			if canon == nil || canon == tombstone {
				continue
			}
			in.insertCanon(canon)
		}
		return nil, nil
	})
	return err
}

func (in *Interner) insertCanon(canon *Symbol) {
	h := hashString(canon.fold)
	n := uint64(len(in.table))
	idx := int(h % n)
	for {
		if in.table[idx] == nil {
			in.table[idx] = canon
			canon.slot = idx
			in.count++
			return
		}
		idx = (idx + 1) % int(n)
	}
}

// Intern returns the stable, case-sensitive-unique symbol for bytes.
func (in *Interner) Intern(spelling string) (*Symbol, error) {
	if err := in.maybeRehash(); err != nil {
		return nil, err
	}

	fold := foldKey(spelling)
	h := hashString(fold)
	n := uint64(len(in.table))
	idx := int(h % n)
	firstTomb := -1

	for {
		slot := in.table[idx]
		switch {
		case slot == nil:
			install := idx
			if firstTomb >= 0 {
				install = firstTomb
				in.tombs--
			}
			sym := &Symbol{spelling: spelling, fold: fold, isCanon: true}
			sym.ring = sym
			in.table[install] = sym
			sym.slot = install
			in.count++
			return sym, nil

		case slot == tombstone:
			if firstTomb < 0 {
				firstTomb = idx
			}

		case slot.fold == fold:
			if slot.spelling == spelling {
				return slot, nil
			}
			// Case differs: walk the ring looking for an exact match,
			// else splice in a new synonym right after the canon.
			walker := slot.ring
			for {
				if walker.spelling == spelling {
					return walker, nil
				}
				if walker == slot {
					break
				}
				walker = walker.ring
			}
			syn := &Symbol{spelling: spelling, fold: fold}
			syn.ring = slot.ring
			slot.ring = syn
			return syn, nil
		}

		idx = (idx + 1) % int(n)
	}
}

// Canon returns the canonical member of sym's case-insensitive class.
func (in *Interner) Canon(sym *Symbol) *Symbol {
	if sym.isCanon {
		return sym
	}
	h := hashString(sym.fold)
	n := uint64(len(in.table))
	idx := int(h % n)
	for {
		slot := in.table[idx]
		if slot == nil {
			return sym // should not happen for a live synonym
		}
		if slot != tombstone && slot.fold == sym.fold {
			return slot
		}
		idx = (idx + 1) % int(n)
	}
}

// Kill removes a symbol the GC has proven unreachable. Unlinking a
// non-canon symbol from the ring never touches the table; removing a
// canon promotes the next ring member (if any) or installs a
// tombstone.
func (in *Interner) Kill(sym *Symbol) {
	if !sym.isCanon {
		// Unlink sym from whichever ring currently references it.
		canon := in.Canon(sym)
		prev := canon.ring
		for prev.ring != sym {
			prev = prev.ring
		}
		prev.ring = sym.ring
		return
	}

	if sym.ring != sym {
		// Promote the next ring member to canon in sym's place.
		next := sym.ring
		// Find the ring predecessor of sym so the ring stays closed.
		prev := sym.ring
		for prev.ring != sym {
			prev = prev.ring
		}
		prev.ring = next
		next.isCanon = true
		next.slot = sym.slot
		next.wellKnown = sym.wellKnown
		in.table[sym.slot] = next
		return
	}

	in.table[sym.slot] = tombstone
	in.tombs++
	in.count--
}

// registerWellKnown interns name and stamps its canon with index,
// reporting index 0 for anything not registered.
func (in *Interner) registerWellKnown(name string, index int) (*Symbol, error) {
	sym, err := in.Intern(name)
	if err != nil {
		return nil, err
	}
	canon := in.Canon(sym)
	canon.wellKnown = index
	return sym, nil
}
