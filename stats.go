package paretoq

import "sync/atomic"

// treeStats tracks structural counters. The leaf and inner counters are
// updated from concurrent rewrite tasks and therefore atomic; the item count
// is only written between parallel phases.
type treeStats struct {
	itemCount int
	leaves    atomic.Int64
	inner     atomic.Int64
}

// TreeStats is a snapshot of basic statistics about the tree.
type TreeStats struct {
	// ItemCount is the number of keys in the tree.
	ItemCount int

	// Leaves is the number of leaf nodes.
	Leaves int

	// InnerNodes is the number of inner nodes.
	InnerNodes int

	// AvgLeafFill is the average leaf fill relative to the maximum leaf size.
	AvgLeafFill float64
}

// Nodes returns the total number of nodes.
func (s TreeStats) Nodes() int {
	return s.Leaves + s.InnerNodes
}

// Stats returns a snapshot of the current tree statistics.
func (t *Tree[K]) Stats() TreeStats {
	s := TreeStats{
		ItemCount:  t.stats.itemCount,
		Leaves:     int(t.stats.leaves.Load()),
		InnerNodes: int(t.stats.inner.Load()),
	}
	if s.Leaves > 0 {
		s.AvgLeafFill = float64(s.ItemCount) / float64(s.Leaves*t.leafMax)
	}
	return s
}
