package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternIsIdempotentForExactSpelling(t *testing.T) {
	in := NewInterner()
	a, err := in.Intern("Foo")
	require.NoError(t, err)
	b, err := in.Intern("Foo")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestInternCaseVariantsShareCanonButAreDistinct(t *testing.T) {
	in := NewInterner()
	lower, err := in.Intern("foo")
	require.NoError(t, err)
	upper, err := in.Intern("FOO")
	require.NoError(t, err)

	assert.NotSame(t, lower, upper, "case variants are distinct symbols")
	assert.Same(t, in.Canon(lower), in.Canon(upper), "case variants share one canon")
}

func TestKillPromotesNextRingMemberToCanon(t *testing.T) {
	in := NewInterner()
	canon, err := in.Intern("bar")
	require.NoError(t, err)
	syn, err := in.Intern("BAR")
	require.NoError(t, err)
	require.NotSame(t, canon, syn)

	in.Kill(canon)

	newCanon := in.Canon(syn)
	assert.Same(t, syn, newCanon, "killing the canon promotes the remaining ring member")
}

func TestKillLastRingMemberInstallsTombstone(t *testing.T) {
	in := NewInterner()
	sym, err := in.Intern("baz")
	require.NoError(t, err)
	slot := sym.slot

	in.Kill(sym)
	assert.Same(t, tombstone, in.table[slot])
}

func TestInternAfterKillReusesTombstoneSlot(t *testing.T) {
	in := NewInterner()
	sym, err := in.Intern("qux")
	require.NoError(t, err)
	slot := sym.slot
	in.Kill(sym)

	before := in.count
	fresh, err := in.Intern("qux")
	require.NoError(t, err)
	assert.NotSame(t, sym, fresh, "a killed symbol is never resurrected by identity")
	assert.Equal(t, before+1, in.count)
	assert.Equal(t, slot, fresh.slot)
}

func TestRehashPreservesAllLiveCanons(t *testing.T) {
	in := NewInterner()
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	syms := make([]*Symbol, len(names))
	for i, n := range names {
		s, err := in.Intern(n)
		require.NoError(t, err)
		syms[i] = s
	}
	for i, n := range names {
		got, err := in.Intern(n)
		require.NoError(t, err)
		assert.Same(t, syms[i], got, "rehash must not change a live symbol's identity")
	}
}

func TestRegisterWellKnownStampsCanon(t *testing.T) {
	in := NewInterner()
	sym, err := in.registerWellKnown("return", 99)
	require.NoError(t, err)
	assert.Equal(t, 99, sym.WellKnown())
}
