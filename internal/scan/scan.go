// Package scan implements exclusive prefix sums, including a two-pass
// parallel variant for large inputs.
package scan

import "paretoq/internal/task"

// serialCutoff is the input size below which the two-pass parallel scan is
// not worth its synchronization overhead.
const serialCutoff = 1 << 14

// Exclusive fills out with the exclusive prefix sum of delta over in:
// out[0] = 0 and out[i+1] = out[i] + delta(in[i]). out must have length
// len(in)+1. Inputs above the serial cutoff are scanned with an upsweep over
// per-block sums followed by a downsweep writing final values.
func Exclusive[T any](in []T, out []int64, delta func(T) int64, workers int) {
	n := len(in)
	out[0] = 0
	if n == 0 {
		return
	}
	if workers < 2 || n < serialCutoff {
		sum := int64(0)
		for i := 0; i < n; i++ {
			sum += delta(in[i])
			out[i+1] = sum
		}
		return
	}

	blocks := workers
	blockSize := (n + blocks - 1) / blocks
	partials := make([]task.Padded[int64], blocks)

	task.For(n, blockSize, func(lo, hi int) {
		sum := int64(0)
		for i := lo; i < hi; i++ {
			sum += delta(in[i])
		}
		partials[lo/blockSize].V = sum
	})

	base := int64(0)
	for b := range partials {
		sum := partials[b].V
		partials[b].V = base
		base += sum
	}

	task.For(n, blockSize, func(lo, hi int) {
		sum := partials[lo/blockSize].V
		for i := lo; i < hi; i++ {
			sum += delta(in[i])
			out[i+1] = sum
		}
	})
}
