package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesetSetTestClear(t *testing.T) {
	var ts Typeset
	ts = ts.Set(KindInteger).Set(KindDecimal)
	assert.True(t, ts.Test(KindInteger))
	assert.True(t, ts.Test(KindDecimal))
	assert.False(t, ts.Test(KindBlock))

	ts = ts.Clear(KindDecimal)
	assert.False(t, ts.Test(KindDecimal))
}

func TestTypesetSetOperations(t *testing.T) {
	a := Typeset(0).Set(KindInteger).Set(KindDecimal)
	b := Typeset(0).Set(KindDecimal).Set(KindBlock)

	union := a.Union(b)
	assert.True(t, union.Test(KindInteger))
	assert.True(t, union.Test(KindBlock))

	inter := a.Intersect(b)
	assert.True(t, inter.Test(KindDecimal))
	assert.False(t, inter.Test(KindInteger))

	diff := a.Difference(b)
	assert.True(t, diff.Test(KindInteger))
	assert.False(t, diff.Test(KindDecimal))
}

func TestParseTypeBlockBareWords(t *testing.T) {
	rt := newTestRuntime(t)
	block := wordBlockCells(t, rt, "integer", "decimal")
	ts, err := parseTypeBlock(rt, block, false, false)
	require.NoError(t, err)
	assert.True(t, ts.Test(KindInteger))
	assert.True(t, ts.Test(KindDecimal))
}

func TestParseTypeBlockOptTag(t *testing.T) {
	rt := newTestRuntime(t)
	var tag Cell
	tag.SetText(KindTag, "opt")
	ts, err := parseTypeBlock(rt, []Cell{tag}, false, false)
	require.NoError(t, err)
	assert.True(t, ts.Nullable())
}

func TestParseTypeBlockOptOnRefinementIsError(t *testing.T) {
	rt := newTestRuntime(t)
	var tag Cell
	tag.SetText(KindTag, "opt")
	_, err := parseTypeBlock(rt, []Cell{tag}, false, true)
	assert.Error(t, err)
}

func TestParseTypeBlockSkipRequiresHardQuote(t *testing.T) {
	rt := newTestRuntime(t)
	var tag Cell
	tag.SetText(KindTag, "skip")
	_, err := parseTypeBlock(rt, []Cell{tag}, false, false)
	assert.Error(t, err)

	ts, err := parseTypeBlock(rt, []Cell{tag}, true, false)
	require.NoError(t, err)
	assert.True(t, ts.Skippable())
}

func TestParseTypeBlockUnknownTypeNameErrors(t *testing.T) {
	rt := newTestRuntime(t)
	block := wordBlockCells(t, rt, "bogus-type")
	_, err := parseTypeBlock(rt, block, false, false)
	var bad BadSpecError
	assert.ErrorAs(t, err, &bad)
}

// wordBlockCells interns names and returns word! cells for use in a
// type-block test, mirroring the shape BuildParamlist hands
// parseTypeBlock in production.
func wordBlockCells(t *testing.T, rt *Runtime, names ...string) []Cell {
	t.Helper()
	cells := make([]Cell, len(names))
	for i, n := range names {
		sym, err := rt.Intern(n)
		require.NoError(t, err)
		cells[i].SetWord(KindWord, sym)
	}
	return cells
}
