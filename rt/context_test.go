package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextSlotsStartNothing(t *testing.T) {
	pool := NewPool(4)
	keylist := NewArray(pool, 2)
	var arch, param Cell
	arch.SetNothing()
	keylist.Append(arch)
	param.SetParamCell(&Param{Class: ParamNormal})
	keylist.Append(param)

	ctx := NewContext(pool, keylist, KindObject)
	require.Equal(t, keylist.Len()-1, ctx.Len())
	slot, err := ctx.Get(0)
	require.NoError(t, err)
	assert.Equal(t, KindNothing, slot.Kind())
}

func TestContextInaccessibleBlocksGet(t *testing.T) {
	pool := NewPool(4)
	keylist := NewArray(pool, 1)
	var arch Cell
	arch.SetNothing()
	keylist.Append(arch)
	ctx := NewContext(pool, keylist, KindFrame)
	ctx.MarkInaccessible()

	_, err := ctx.Get(0)
	assert.Error(t, err)
	assert.IsType(t, InaccessibleError{}, err)
	assert.True(t, ctx.Inaccessible())
}
