package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSingularArray(t *testing.T) {
	pool := NewPool(4)
	s := NewSingularArray(pool)
	assert.True(t, s.HasFlag(SerArray))
	assert.True(t, s.HasFlag(SerCell))
	assert.Equal(t, 1, s.Len())
}

func TestNewArrayAppendGrows(t *testing.T) {
	pool := NewPool(4)
	s := NewArray(pool, 0)
	var c Cell
	c.SetInteger(1)
	s.Append(c)
	c.SetInteger(2)
	s.Append(c)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, int64(1), s.At(0).Integer())
	assert.Equal(t, int64(2), s.At(1).Integer())
}

func TestAppendOnSingularPanics(t *testing.T) {
	pool := NewPool(4)
	s := NewSingularArray(pool)
	var c Cell
	c.SetBlank()
	assert.Panics(t, func() { s.Append(c) })
}

func TestLinkSlotAccessorsRejectWrongClass(t *testing.T) {
	pool := NewPool(4)
	paramlist := NewArray(pool, 1)
	facade := NewArray(pool, 1)
	paramlist.SetFacade(facade)

	assert.Same(t, facade, paramlist.Facade())
	// Touching a different link-class accessor on the same node must not
	// see the facade value: the tagged union is asserted by class.
	assert.Nil(t, paramlist.Keysource())
}

func TestMiscSlotAccessorsRejectWrongClass(t *testing.T) {
	pool := NewPool(4)
	s := NewArray(pool, 1)
	s.SetLineNumber(42)
	assert.Equal(t, 42, s.LineNumber())
	assert.Nil(t, s.Schema())
}

func TestExemplarLivesOnLinkSlot(t *testing.T) {
	pool := NewPool(4)
	bodyHolder := NewSingularArray(pool)
	exemplar := NewArray(pool, 2)
	bodyHolder.SetExemplar(exemplar)
	assert.Same(t, exemplar, bodyHolder.Exemplar())
	assert.Nil(t, bodyHolder.MetaContext(), "exemplar must not be confused with the misc-slot meta-context")
}
