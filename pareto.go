package paretoq

import (
	"encoding/binary"
	"math"
	"sort"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"paretoq/internal/task"
)

// NodeID identifies a graph node.
type NodeID uint32

// Label is a temporary label of the bi-objective search: a node together
// with the two accumulated path weights. Labels order lexicographically by
// (FirstWeight, SecondWeight, Node).
type Label struct {
	Node         NodeID
	FirstWeight  uint32
	SecondWeight uint32
}

// LabelLess is the strict total order used by the Pareto queue.
func LabelLess(a, b Label) bool {
	if a.FirstWeight != b.FirstWeight {
		return a.FirstWeight < b.FirstWeight
	}
	if a.SecondWeight != b.SecondWeight {
		return a.SecondWeight < b.SecondWeight
	}
	return a.Node < b.Node
}

func labelMin(l Label) MinKey {
	return MinKey{FirstWeight: l.FirstWeight, SecondWeight: l.SecondWeight}
}

// Edge is an outgoing edge with its two weights.
type Edge struct {
	Target       NodeID
	FirstWeight  uint32
	SecondWeight uint32
}

// Graph is the read-only view of the graph the queue derives candidate
// labels from. The queue holds only a borrowed reference.
type Graph interface {
	NumberOfNodes() int
	ForEachOutEdge(node NodeID, fn func(Edge))
}

// GraphEdge is one input edge for NewAdjacencyGraph.
type GraphEdge struct {
	Source NodeID
	Edge
}

// AdjacencyGraph is a compact adjacency-array Graph: all edges in one slice,
// indexed per node by a first-out offset table.
type AdjacencyGraph struct {
	firstOut []int32
	edges    []Edge
}

// NewAdjacencyGraph builds an adjacency array over numNodes nodes from an
// arbitrary-order edge list.
func NewAdjacencyGraph(numNodes int, edges []GraphEdge) *AdjacencyGraph {
	sorted := make([]GraphEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Source < sorted[j].Source
	})
	g := &AdjacencyGraph{
		firstOut: make([]int32, numNodes+1),
		edges:    make([]Edge, len(sorted)),
	}
	for i, e := range sorted {
		g.edges[i] = e.Edge
		g.firstOut[e.Source+1]++
	}
	for i := 1; i <= numNodes; i++ {
		g.firstOut[i] += g.firstOut[i-1]
	}
	return g
}

func (g *AdjacencyGraph) NumberOfNodes() int {
	return len(g.firstOut) - 1
}

func (g *AdjacencyGraph) ForEachOutEdge(node NodeID, fn func(Edge)) {
	for _, e := range g.edges[g.firstOut[node]:g.firstOut[node+1]] {
		fn(e)
	}
}

// workerState is the scratch owned by one worker slot: scheduled deletions,
// extracted minima, per-target candidate buffers, and the targets this worker
// was first to touch in the current round.
type workerState struct {
	updates    []Operation[Label]
	minima     []Label
	candidates [][]Label
	affected   []NodeID
}

// ParetoQueue stores all temporary labels in a weight-balanced B+-tree with
// per-slot aggregate minima and extracts the Pareto-minimal labels in
// parallel. Minima are written into per-worker buffers together with the
// deletions and neighbor-derived candidate labels the outer search merges
// into its next batch.
type ParetoQueue struct {
	tree  *Tree[Label]
	graph Graph

	sentinel MinKey

	workers int
	slots   *task.Slots
	states  []task.Padded[workerState]

	// counters[target] claims write positions in the bufferList row of a
	// target; the worker claiming position zero owns the target for this
	// round and registers it as affected.
	counters   []atomic.Int32
	bufferList []*[]Label
}

// NewParetoQueue creates an empty queue over the given graph.
func NewParetoQueue(graph Graph, options ...Option) (*ParetoQueue, error) {
	tree, err := newTree[Label](LabelLess, labelMin, options)
	if err != nil {
		return nil, err
	}
	numNodes := graph.NumberOfNodes()
	workers := tree.opts.maxWorkers
	q := &ParetoQueue{
		tree:  tree,
		graph: graph,
		sentinel: MinKey{
			FirstWeight:  0,
			SecondWeight: math.MaxUint32,
		},
		workers:    workers,
		slots:      task.NewSlots(workers),
		states:     make([]task.Padded[workerState], workers),
		counters:   make([]atomic.Int32, numNodes),
		bufferList: make([]*[]Label, numNodes*workers),
	}
	for i := range q.states {
		q.states[i].V.candidates = make([][]Label, numNodes)
	}
	return q, nil
}

// Init seeds the queue with a single label.
func (q *ParetoQueue) Init(l Label) {
	q.tree.ApplyTypedUpdates([]Operation[Label]{{Type: OpInsert, Data: l}}, InsertsOnly)
}

// ApplyUpdates applies a sorted batch of label insertions and deletions.
func (q *ParetoQueue) ApplyUpdates(batch []Operation[Label]) {
	q.tree.ApplyUpdates(batch)
}

// ApplyTypedUpdates applies a batch whose composition is already known.
func (q *ParetoQueue) ApplyTypedUpdates(batch []Operation[Label], batchType BatchType) {
	q.tree.ApplyTypedUpdates(batch, batchType)
}

func (q *ParetoQueue) Empty() bool {
	return q.tree.Empty()
}

func (q *ParetoQueue) Size() int {
	return q.tree.Size()
}

// Verify checks the underlying tree invariants, including slot minima.
func (q *ParetoQueue) Verify() error {
	return q.tree.Verify()
}

// Stats returns the underlying tree statistics.
func (q *ParetoQueue) Stats() TreeStats {
	return q.tree.Stats()
}

// FindParetoMinima extracts the Pareto frontier of the stored labels into
// the per-worker buffers. Subtrees that survive the prefix-minimum pruning
// are visited as parallel tasks until the traversal drops below the
// configured recursion end level, where it continues serially on the current
// worker.
func (q *ParetoQueue) FindParetoMinima() {
	if q.tree.root == nil {
		return
	}
	q.findTask(q.tree.root, q.sentinel)
}

func (q *ParetoQueue) findTask(n *node[Label], prefix MinKey) {
	if n.isLeaf() || n.level < q.tree.opts.recursionEndLevel {
		q.findAndDistribute(n, prefix)
		return
	}
	var g task.Group
	min := prefix
	for i := range n.slots {
		s := &n.slots[i]
		if paretoCandidate(s.min, min) {
			child, p := s.child, min
			g.Spawn(func() { q.findTask(child, p) })
			min = s.min
		}
	}
	g.Wait()
}

// findAndDistribute scans a subtree serially while it is likely still in
// cache, then schedules each found minimum for deletion and distributes its
// neighbor-derived candidates into the per-target buffers.
func (q *ParetoQueue) findAndDistribute(n *node[Label], prefix MinKey) {
	id := q.slots.Acquire()
	defer q.slots.Release(id)
	st := &q.states[id].V

	start := len(st.minima)
	st.minima = q.tree.findParetoMinima(n, prefix, st.minima)

	for _, min := range st.minima[start:] {
		st.updates = append(st.updates, Operation[Label]{Type: OpDelete, Data: min})

		q.graph.ForEachOutEdge(min.Node, func(e Edge) {
			target := e.Target
			if len(st.candidates[target]) == 0 {
				pos := q.counters[target].Add(1) - 1
				q.bufferList[int(target)*q.workers+int(pos)] = &st.candidates[target]
				if pos == 0 {
					// We were the first, so we are responsible.
					st.affected = append(st.affected, target)
				}
			}
			st.candidates[target] = append(st.candidates[target], Label{
				Node:         target,
				FirstWeight:  min.FirstWeight + e.FirstWeight,
				SecondWeight: min.SecondWeight + e.SecondWeight,
			})
		})
	}
}

// Minima returns the labels extracted by the last FindParetoMinima round,
// sorted by the queue order.
func (q *ParetoQueue) Minima() []Label {
	var out []Label
	for w := range q.states {
		out = append(out, q.states[w].V.minima...)
	}
	sort.Slice(out, func(i, j int) bool { return LabelLess(out[i], out[j]) })
	return out
}

// PendingUpdates returns the deletions scheduled by the last round as a
// batch sorted by the queue order, ready to be applied.
func (q *ParetoQueue) PendingUpdates() []Operation[Label] {
	var out []Operation[Label]
	for w := range q.states {
		out = append(out, q.states[w].V.updates...)
	}
	sort.Slice(out, func(i, j int) bool { return LabelLess(out[i].Data, out[j].Data) })
	return out
}

// AffectedNodes returns every node that received at least one candidate in
// the last round, each exactly once, in ascending order.
func (q *ParetoQueue) AffectedNodes() []NodeID {
	var out []NodeID
	for w := range q.states {
		out = append(out, q.states[w].V.affected...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Candidates gathers the candidate labels collected for one target node
// across all workers, sorted by the queue order.
func (q *ParetoQueue) Candidates(target NodeID) []Label {
	count := int(q.counters[target].Load())
	base := int(target) * q.workers
	var out []Label
	for pos := 0; pos < count; pos++ {
		out = append(out, *q.bufferList[base+pos]...)
	}
	sort.Slice(out, func(i, j int) bool { return LabelLess(out[i], out[j]) })
	return out
}

// Reset clears all per-worker buffers, candidate rows, and target counters
// for the next round.
func (q *ParetoQueue) Reset() {
	for w := range q.states {
		st := &q.states[w].V
		for _, target := range st.affected {
			count := int(q.counters[target].Load())
			base := int(target) * q.workers
			for pos := 0; pos < count; pos++ {
				vec := q.bufferList[base+pos]
				*vec = (*vec)[:0]
				q.bufferList[base+pos] = nil
			}
			q.counters[target].Store(0)
		}
		st.affected = st.affected[:0]
		st.updates = st.updates[:0]
		st.minima = st.minima[:0]
	}
}

// Fingerprint hashes the stored labels in queue order. Two queues holding the
// same label set produce the same fingerprint regardless of how many workers
// built them.
func (q *ParetoQueue) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [12]byte
	q.tree.forEach(func(l Label) {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(l.Node))
		binary.LittleEndian.PutUint32(buf[4:8], l.FirstWeight)
		binary.LittleEndian.PutUint32(buf[8:12], l.SecondWeight)
		_, _ = d.Write(buf[:])
	})
	return d.Sum64()
}
