// Package task provides the fork/join execution helpers used by the tree:
// spawn-and-join groups, chunked parallel loops, and leased worker slots
// backing per-worker scratch state.
package task

import (
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
)

// Group is a fork/join scope. A task spawns children into its group and must
// Wait for all of them before completing itself.
type Group struct {
	eg errgroup.Group
}

// Spawn runs fn on its own goroutine as a child of the group.
func (g *Group) Spawn(fn func()) {
	g.eg.Go(func() error {
		fn()
		return nil
	})
}

// Wait blocks until every spawned child has completed.
func (g *Group) Wait() {
	_ = g.eg.Wait()
}

// For runs fn over [0, n) split into chunks of grain elements (the last chunk
// may be shorter), executing chunks concurrently and joining before returning. With n <= grain
// the loop body runs inline on the caller.
func For(n, grain int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if grain < 1 {
		grain = 1
	}
	if n <= grain {
		fn(0, n)
		return
	}
	var g Group
	for lo := 0; lo < n; lo += grain {
		hi := lo + grain
		if hi > n {
			hi = n
		}
		lo, hi := lo, hi
		g.Spawn(func() { fn(lo, hi) })
	}
	g.Wait()
}

// Slots hands out worker identifiers in [0, n). A held slot grants exclusive
// use of the per-worker state indexed by it.
type Slots struct {
	ids chan int
	n   int
}

// NewSlots creates a slot pool with n worker identifiers.
func NewSlots(n int) *Slots {
	if n < 1 {
		n = 1
	}
	s := &Slots{ids: make(chan int, n), n: n}
	for i := 0; i < n; i++ {
		s.ids <- i
	}
	return s
}

// Acquire blocks until a worker slot is free and returns its id.
func (s *Slots) Acquire() int {
	return <-s.ids
}

// Release returns a slot obtained from Acquire.
func (s *Slots) Release(id int) {
	s.ids <- id
}

// Count returns the number of worker slots.
func (s *Slots) Count() int {
	return s.n
}

// Padded wraps a value with trailing padding so adjacent array elements land
// on distinct cache lines, keeping single-writer cells free of false sharing.
type Padded[T any] struct {
	V T
	_ cpu.CacheLinePad
}
