package scan

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusiveEmpty(t *testing.T) {
	t.Parallel()

	out := make([]int64, 1)
	Exclusive(nil, out, func(int) int64 { return 1 }, 4)
	assert.Equal(t, int64(0), out[0])
}

func TestExclusiveSmall(t *testing.T) {
	t.Parallel()

	in := []int{1, -1, 1, 1, -1}
	out := make([]int64, len(in)+1)
	Exclusive(in, out, func(v int) int64 { return int64(v) }, 4)
	assert.Equal(t, []int64{0, 1, 0, 1, 2, 1}, out)
}

func TestExclusiveMatchesSerial(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	n := 100_000
	in := make([]int, n)
	for i := range in {
		in[i] = rng.Intn(5) - 2
	}
	delta := func(v int) int64 { return int64(v) }

	serial := make([]int64, n+1)
	Exclusive(in, serial, delta, 1)

	parallel := make([]int64, n+1)
	Exclusive(in, parallel, delta, 8)

	assert.Equal(t, serial, parallel)
}
