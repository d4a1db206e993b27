package paretoq

import "paretoq/internal/task"

// updateRange describes the slice of the running batch that targets one
// subtree, together with the subtree's post-update weight and whether that
// weight leaves the balance bounds of its level.
type updateRange struct {
	rebalance bool
	weight    int
	begin     int
	end       int
}

func (u updateRange) hasUpdates() bool {
	return u.begin != u.end
}

// spawnGrain is the minimum number of batch operations a subtree must
// receive before its update runs on its own task.
const spawnGrain = 64

// update applies upd to the subtree owned by s. With reg == nil the subtree
// is patched in place, locally rebuilding child runs that leave their weight
// bounds. With reg != nil the subtree is being consumed by an enclosing
// rewrite: its post-update keys are streamed into the region's leaves
// starting at rank, and the node itself is released once its children have
// joined.
func (t *Tree[K]) update(s *slot[K], rank int, upd updateRange, reg *region[K]) {
	n := s.child
	if n.isLeaf() {
		if reg != nil {
			t.rewriteLeaf(n, rank, upd, reg)
			t.freeNode(n)
		} else {
			t.patchLeaf(s, upd)
		}
		return
	}

	subUpds := t.partitionUpdates(n, upd)

	if reg != nil {
		t.updateSubtreeRange(n, 0, len(n.slots), rank, subUpds, reg)
		t.freeNode(n)
		return
	}

	rebalance := false
	for i := range subUpds {
		rebalance = rebalance || subUpds[i].rebalance
	}
	if !rebalance {
		t.updateSubtreeRange(n, 0, len(n.slots), 0, subUpds, nil)
		s.router = n.slots[len(n.slots)-1].router
		t.setMinFromInner(s, n)
		return
	}
	t.rebalanceChildren(s, n, subUpds)
}

// partitionUpdates distributes the update range of an inner node across its
// children by binary search against the routers, and flags every child whose
// post-update weight leaves the bounds of its level.
func (t *Tree[K]) partitionUpdates(inner *node[K], upd updateRange) []updateRange {
	subUpds := make([]updateRange, len(inner.slots))
	minW := t.minWeight(inner.level - 1)
	maxW := t.maxWeight(inner.level - 1)

	begin := upd.begin
	last := len(inner.slots) - 1
	for i := 0; i < last; i++ {
		end := t.findLower(begin, upd.end, inner.slots[i].router)
		subUpds[i] = t.describeUpdate(inner.slots[i].weight, minW, maxW, begin, end)
		begin = end
	}
	subUpds[last] = t.describeUpdate(inner.slots[last].weight, minW, maxW, begin, upd.end)
	return subUpds
}

func (t *Tree[K]) describeUpdate(weight, minW, maxW, begin, end int) updateRange {
	w := weight + t.weightDeltaOf(begin, end)
	return updateRange{
		rebalance: w < minW || w > maxW,
		weight:    w,
		begin:     begin,
		end:       end,
	}
}

// findLower returns the first index in [lo, hi) whose operation key is
// greater than key, so updates with keys up to and including a router stay
// with that router's child.
func (t *Tree[K]) findLower(lo, hi int, key K) int {
	for lo < hi {
		mid := lo + (hi-lo)/2
		if t.less(key, t.updates[mid].Data) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return hi
}

// updateSubtreeRange recurses into the children [begin, end) of inner,
// forking heavy children onto their own tasks and joining before returning.
// Children whose post-update weight is zero are released without recursion.
func (t *Tree[K]) updateSubtreeRange(inner *node[K], begin, end, rank int, subUpds []updateRange, reg *region[K]) {
	var g task.Group
	subtreeRank := rank
	for i := begin; i < end; i++ {
		u := subUpds[i]
		if u.weight == 0 {
			t.clearRecursive(inner.slots[i].child)
		} else if reg != nil || u.hasUpdates() {
			s := &inner.slots[i]
			s.weight = u.weight
			if u.end-u.begin >= spawnGrain {
				r := subtreeRank
				g.Spawn(func() { t.update(s, r, u, reg) })
			} else {
				t.update(s, subtreeRank, u, reg)
			}
		}
		subtreeRank += u.weight
	}
	g.Wait()
}

// rebalanceChildren rebuilds an inner node whose children cannot all be
// patched in place. Maximal runs of slots that need rebalancing (extended
// while the accumulated weight stays below one designated subtree) are
// streamed into fresh leaves and rebuilt; slots outside runs are carried
// over, patched when they have updates.
func (t *Tree[K]) rebalanceChildren(s *slot[K], inner *node[K], subUpds []updateRange) {
	designated := t.designatedSubtreeSize(inner.level)
	result := t.allocateInner(inner.level)
	var g task.Group

	in, out := 0, 0
	for in < len(inner.slots) {
		runStart := in
		runWeight := 0
		open := false
		for in < len(inner.slots) && (subUpds[in].rebalance ||
			(open && runWeight != 0 && runWeight < designated)) {
			open = true
			runWeight += subUpds[in].weight
			in++
		}
		switch {
		case open && runWeight == 0:
			for i := runStart; i < in; i++ {
				t.clearRecursive(inner.slots[i].child)
			}
		case open:
			count := t.numSubtrees(runWeight, designated)
			result.slots = result.slots[:out+count]
			runSlots := result.slots[out : out+count]
			out += count
			first, limit, w := runStart, in, runWeight
			g.Spawn(func() {
				reg := t.allocateNewLeaves(w)
				t.updateSubtreeRange(inner, first, limit, 0, subUpds, reg)
				t.buildSubtrees(runSlots, inner.level-1, reg, 0, w)
			})
		default:
			result.slots = result.slots[:out+1]
			result.slots[out] = inner.slots[in]
			result.slots[out].weight = subUpds[in].weight
			if subUpds[in].hasUpdates() {
				rs := &result.slots[out]
				u := subUpds[in]
				if u.end-u.begin >= spawnGrain {
					g.Spawn(func() { t.update(rs, 0, u, nil) })
				} else {
					t.update(rs, 0, u, nil)
				}
			}
			out++
			in++
		}
	}
	g.Wait()

	s.router = result.slots[out-1].router
	t.setMinFromInner(s, result)
	t.freeNode(inner)
	s.child = result
}

// patchLeaf merges a leaf's keys with its update range into a spare leaf and
// swaps the two, so the slot ends up owning the merged leaf and the old leaf
// becomes the next spare. The enclosing decision process guarantees the
// merged size stays within leaf bounds.
func (t *Tree[K]) patchLeaf(s *slot[K], upd updateRange) {
	spare, _ := t.spareLeaves.Get().(*node[K])
	if spare == nil {
		spare = t.allocateLeafNoCount()
	}
	leaf := s.child
	out := spare.keys[:0]
	in := 0

	for i := upd.begin; i < upd.end; i++ {
		op := t.updates[i]
		switch op.Type {
		case OpDelete:
			// The key is known to be present, stop copying when we hit it.
			for t.less(leaf.keys[in], op.Data) {
				out = append(out, leaf.keys[in])
				in++
			}
			in++
		case OpInsert:
			for in < len(leaf.keys) && t.less(leaf.keys[in], op.Data) {
				out = append(out, leaf.keys[in])
				in++
			}
			out = append(out, op.Data)
		}
	}
	out = append(out, leaf.keys[in:]...)

	spare.keys = out
	s.child = spare
	s.router = out[len(out)-1]
	t.setMinFromLeaf(s, spare)

	leaf.keys = leaf.keys[:0]
	t.spareLeaves.Put(leaf)
}
