package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestAction(t *testing.T, rt *Runtime, d Dispatcher, bodyBlockCells []Cell, classes ...ParamClass) *Action {
	t.Helper()
	pl := makeTestParamlist(t, rt, classes...)
	var body Cell
	if bodyBlockCells != nil {
		arr := NewArray(rt.Pool, len(bodyBlockCells))
		for _, c := range bodyBlockCells {
			arr.Append(c)
		}
		body.SetSeries(KindBlock, arr, 0)
	} else {
		body.SetBlank()
	}
	a, err := MakeAction(rt, pl, d, body, nil)
	require.NoError(t, err)
	return a
}

func TestNoopDispatcherReturnsNothing(t *testing.T) {
	rt := newTestRuntime(t)
	a := makeTestAction(t, rt, NoopDispatcher, nil)
	f, err := MakeFrameFor(rt, a)
	require.NoError(t, err)
	out, err := f.Run(rt)
	require.NoError(t, err)
	assert.Equal(t, KindNothing, out.Kind())
}

func TestUncheckedDispatcherReturnsBodyResult(t *testing.T) {
	rt := newTestRuntime(t)
	var lit Cell
	lit.SetInteger(99)
	a := makeTestAction(t, rt, UncheckedDispatcher, []Cell{lit})
	f, err := MakeFrameFor(rt, a)
	require.NoError(t, err)
	out, err := f.Run(rt)
	require.NoError(t, err)
	assert.Equal(t, int64(99), out.Integer())
}

func TestVoiderDispatcherDiscardsBodyResult(t *testing.T) {
	rt := newTestRuntime(t)
	var lit Cell
	lit.SetInteger(5)
	a := makeTestAction(t, rt, VoiderDispatcher, []Cell{lit})
	f, err := MakeFrameFor(rt, a)
	require.NoError(t, err)
	out, err := f.Run(rt)
	require.NoError(t, err)
	assert.Equal(t, KindNothing, out.Kind())
}

func TestCommenterDispatcherIsInvisible(t *testing.T) {
	rt := newTestRuntime(t)
	a := makeTestAction(t, rt, CommenterDispatcher, nil)
	f, err := MakeFrameFor(rt, a)
	require.NoError(t, err)
	out, err := f.Run(rt)
	require.NoError(t, err)
	assert.Equal(t, KindNothing, out.Kind(), "invisible result leaves f.Out untouched, which starts nothing!")
}

func TestDatatypeCheckerRejectsNonDatatypeBody(t *testing.T) {
	var notDatatype Cell
	notDatatype.SetInteger(1)
	_, err := NewDatatypeChecker(notDatatype)
	assert.Error(t, err)
}

func TestDatatypeCheckerChecksArgKind(t *testing.T) {
	var body Cell
	body.SetDatatype(KindInteger)
	d, err := NewDatatypeChecker(body)
	require.NoError(t, err)

	rt := newTestRuntime(t)
	f := &Frame{Args: make([]Cell, 1)}
	f.Args[0].SetInteger(1)
	_, err = d(rt, f)
	require.NoError(t, err)
	assert.True(t, f.Out.Logic())

	f.Args[0].SetBlank()
	_, err = d(rt, f)
	require.NoError(t, err)
	assert.False(t, f.Out.Logic())
}

func TestChainerPopsPostActionsInDeclarationOrder(t *testing.T) {
	rt := newTestRuntime(t)

	var order []string
	makeStep := func(name string) *Action {
		pl := makeTestParamlist(t, rt)
		d := func(rt *Runtime, f *Frame) (ResultCode, error) {
			order = append(order, name)
			var out Cell
			out.SetWord(KindWord, mustIntern(t, rt, name))
			return outValue(f, out)
		}
		var body Cell
		body.SetBlank()
		a, err := MakeAction(rt, pl, d, body, nil)
		require.NoError(t, err)
		return a
	}

	fAction := makeStep("f")
	gAction := makeStep("g")
	hAction := makeStep("h")

	chainDispatcher, err := NewChainer([]*Action{fAction, gAction, hAction})
	require.NoError(t, err)
	chainPl := makeTestParamlist(t, rt)
	var body Cell
	body.SetBlank()
	chainAction, err := MakeAction(rt, chainPl, chainDispatcher, body, nil)
	require.NoError(t, err)

	frame, err := MakeFrameFor(rt, chainAction)
	require.NoError(t, err)
	_, err = frame.Run(rt)
	require.NoError(t, err)

	assert.Equal(t, []string{"f", "g", "h"}, order, "post-actions must run in declaration order (LIFO pop of a reverse push)")
}

func mustIntern(t *testing.T, rt *Runtime, s string) *Symbol {
	t.Helper()
	sym, err := rt.Intern(s)
	require.NoError(t, err)
	return sym
}
