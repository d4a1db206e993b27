package task

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupJoinsAllChildren(t *testing.T) {
	t.Parallel()

	var g Group
	var count atomic.Int64
	for i := 0; i < 100; i++ {
		g.Spawn(func() { count.Add(1) })
	}
	g.Wait()
	assert.Equal(t, int64(100), count.Load())
}

func TestForCoversEveryIndexOnce(t *testing.T) {
	t.Parallel()

	n := 10_000
	hits := make([]atomic.Int32, n)
	For(n, 128, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			hits[i].Add(1)
		}
	})
	for i := range hits {
		require.Equal(t, int32(1), hits[i].Load(), "index %d", i)
	}
}

func TestForInlineBelowGrain(t *testing.T) {
	t.Parallel()

	calls := 0
	For(10, 100, func(lo, hi int) {
		calls++
		assert.Equal(t, 0, lo)
		assert.Equal(t, 10, hi)
	})
	assert.Equal(t, 1, calls)
}

func TestSlotsGrantExclusiveIDs(t *testing.T) {
	t.Parallel()

	s := NewSlots(4)
	assert.Equal(t, 4, s.Count())

	held := make([]atomic.Int32, 4)
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := s.Acquire()
			require.Equal(t, int32(1), held[id].Add(1))
			held[id].Add(-1)
			s.Release(id)
		}()
	}
	wg.Wait()
}
