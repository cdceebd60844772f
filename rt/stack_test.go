package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataStackPushPopOrder(t *testing.T) {
	d := NewDataStack()
	var a, b Cell
	a.SetInteger(1)
	b.SetInteger(2)
	d.Push(a)
	d.Push(b)

	require.Equal(t, 2, d.Len())
	assert.Equal(t, int64(2), d.Pop().Integer())
	assert.Equal(t, int64(1), d.Pop().Integer())
	assert.Equal(t, 0, d.Len())
}

func TestDataStackDropToRestoresBalance(t *testing.T) {
	d := NewDataStack()
	var c Cell
	c.SetBlank()
	d.Push(c)
	mark := d.Mark()
	d.Push(c)
	d.Push(c)
	d.DropTo(mark)
	assert.Equal(t, mark, d.Len())
}

func TestDataStackSliceReturnsPushOrder(t *testing.T) {
	d := NewDataStack()
	mark := d.Mark()
	for i := int64(1); i <= 3; i++ {
		var c Cell
		c.SetInteger(i)
		d.Push(c)
	}
	slice := d.Slice(mark)
	require.Len(t, slice, 3)
	assert.Equal(t, int64(1), slice[0].Integer())
	assert.Equal(t, int64(3), slice[2].Integer())
}

func TestDataStackPeek(t *testing.T) {
	d := NewDataStack()
	var a, b Cell
	a.SetInteger(10)
	b.SetInteger(20)
	d.Push(a)
	d.Push(b)
	assert.Equal(t, int64(20), d.Peek(0).Integer())
	assert.Equal(t, int64(10), d.Peek(1).Integer())
}
