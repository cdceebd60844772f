package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAllocGrowsInSegments(t *testing.T) {
	pool := NewPool(2)
	s1 := pool.allocSeries()
	s2 := pool.allocSeries()
	s3 := pool.allocSeries() // forces a second segment
	assert.NotSame(t, s1, s2)
	assert.NotSame(t, s2, s3)
	assert.Equal(t, 3, pool.LiveCount())
}

func TestPoolReleaseReturnsToFreeList(t *testing.T) {
	pool := NewPool(4)
	s := pool.allocSeries()
	require.Equal(t, 1, pool.LiveCount())
	pool.release(s)
	assert.Equal(t, 0, pool.LiveCount())
	assert.True(t, s.HasFlag(SerFree))
}

func TestPoolWalkSkipsFreeNodes(t *testing.T) {
	pool := NewPool(4)
	a := pool.allocSeries()
	_ = pool.allocSeries()
	pool.release(a)

	var seen int
	pool.walk(func(s *Series) { seen++ })
	assert.Equal(t, 1, seen)
}

func TestPairPoolAllocatesTwoCells(t *testing.T) {
	pp := NewPairPool(4)
	pairing := pp.AllocPairing()
	assert.Equal(t, 2, pairing.Len())
	assert.True(t, pairing.HasFlag(SerArray | SerCell))
}
