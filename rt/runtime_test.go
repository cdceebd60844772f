package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesOptionDefaults(t *testing.T) {
	rt, err := New(RuntimeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 256, rt.opt.PoolSegmentSize)
	assert.Equal(t, 64, rt.opt.PairPoolSegmentSize)
	assert.Equal(t, 10000, rt.opt.Ballast)
	assert.Equal(t, 16, rt.opt.GCHistoryLimit)
	assert.NotNil(t, rt.opt.Trace)
	assert.NotNil(t, rt.opt.Eval)
}

func TestNewRegistersWellKnownSymbols(t *testing.T) {
	rt := newTestRuntime(t)
	assert.Equal(t, "return", rt.SymReturn.Spelling())
	assert.Equal(t, symReturn, rt.SymReturn.WellKnown())
	assert.Equal(t, "leave", rt.SymLeave.Spelling())
}

func TestTwoRuntimesAreFullyIsolated(t *testing.T) {
	a := newTestRuntime(t)
	b := newTestRuntime(t)

	symA, err := a.Intern("shared-name")
	require.NoError(t, err)
	symB, err := b.Intern("shared-name")
	require.NoError(t, err)

	assert.NotSame(t, symA, symB, "separate Runtimes must never share interned symbol identity")
}

func TestLiteralEvaluatorReturnsLastBlockCell(t *testing.T) {
	rt := newTestRuntime(t)
	arr := NewArray(rt.Pool, 2)
	var a, b Cell
	a.SetInteger(1)
	b.SetInteger(2)
	arr.Append(a)
	arr.Append(b)
	var block Cell
	block.SetSeries(KindBlock, arr, 0)

	out, err := rt.Eval(nil, &block)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Integer())
}

func TestLiteralEvaluatorEmptyBlockYieldsNothing(t *testing.T) {
	rt := newTestRuntime(t)
	arr := NewArray(rt.Pool, 0)
	var block Cell
	block.SetSeries(KindBlock, arr, 0)

	out, err := rt.Eval(nil, &block)
	require.NoError(t, err)
	assert.Equal(t, KindNothing, out.Kind())
}

func TestConsumeBallastTriggersAutoRecycle(t *testing.T) {
	rt, err := New(RuntimeOptions{Ballast: 2})
	require.NoError(t, err)

	arr := NewArray(rt.Pool, 1)
	arr.Manage()

	_, err = rt.Intern("one")
	require.NoError(t, err)
	_, err = rt.Intern("two")
	require.NoError(t, err)

	found := false
	rt.Pool.walk(func(s *Series) {
		if s == arr {
			found = true
		}
	})
	assert.False(t, found, "ballast exhaustion must trigger a recycle that sweeps unreachable series")
}
