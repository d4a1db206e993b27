package paretoq

import "fmt"

type verifyStats struct {
	items  int
	leaves int
	inner  int
}

// Verify walks the whole tree and checks every structural invariant: leaf
// order, router correctness, weight bounds per level, exact weight counts,
// node statistics, and aggregated slot minima when minimum tracking is
// enabled.
//
// One documented relaxation applies: when the last subtree of an inner node
// underflows and no right sibling exists to rebalance against, its weight may
// sit below the lower bound of its level. Verify tolerates that for the last
// slot of each inner node only.
func (t *Tree[K]) Verify() error {
	if t.root == nil {
		if t.stats.itemCount != 0 {
			return ErrVerifyItemCount
		}
		return nil
	}
	var v verifyStats
	if _, _, _, err := t.verifyNode(t.root, &v); err != nil {
		return err
	}
	if v.items != t.stats.itemCount {
		return fmt.Errorf("%w: counted %d, recorded %d", ErrVerifyItemCount, v.items, t.stats.itemCount)
	}
	if v.leaves != int(t.stats.leaves.Load()) || v.inner != int(t.stats.inner.Load()) {
		return fmt.Errorf("%w: counted %d/%d, recorded %d/%d", ErrVerifyNodeCount,
			v.leaves, v.inner, t.stats.leaves.Load(), t.stats.inner.Load())
	}
	return nil
}

func (t *Tree[K]) verifyNode(n *node[K], v *verifyStats) (minKey, maxKey K, min MinKey, err error) {
	if n.isLeaf() {
		v.leaves++
		v.items += len(n.keys)
		if len(n.keys) == 0 {
			err = fmt.Errorf("%w: empty leaf", ErrVerifyWeightCount)
			return
		}
		for i := 1; i < len(n.keys); i++ {
			if !t.less(n.keys[i-1], n.keys[i]) {
				err = ErrVerifyLeafOrder
				return
			}
		}
		if len(n.keys) > t.maxWeight(0) {
			err = fmt.Errorf("%w: leaf holds %d keys, max %d", ErrVerifyWeight, len(n.keys), t.maxWeight(0))
			return
		}
		minKey = n.keys[0]
		maxKey = n.keys[len(n.keys)-1]
		if t.minOf != nil {
			min = t.minOf(n.keys[0])
			for _, k := range n.keys[1:] {
				if m := t.minOf(k); m.SecondWeight < min.SecondWeight {
					min = m
				}
			}
		}
		return
	}

	v.inner++
	if len(n.slots) == 0 {
		err = fmt.Errorf("%w: empty inner node", ErrVerifyWeightCount)
		return
	}
	minW := t.minWeight(n.level - 1)
	maxW := t.maxWeight(n.level - 1)

	for i := range n.slots {
		s := &n.slots[i]
		if i > 0 && !t.less(n.slots[i-1].router, s.router) {
			err = ErrVerifyRouter
			return
		}
		if s.child.level != n.level-1 {
			err = ErrVerifyLevel
			return
		}
		if s.weight > maxW {
			err = fmt.Errorf("%w: level %d weight %d above %d", ErrVerifyWeight, n.level-1, s.weight, maxW)
			return
		}
		if s.weight < minW && i != len(n.slots)-1 {
			err = fmt.Errorf("%w: level %d weight %d below %d", ErrVerifyWeight, n.level-1, s.weight, minW)
			return
		}

		before := v.items
		subMin, subMax, subMinKey, subErr := t.verifyNode(s.child, v)
		if subErr != nil {
			err = subErr
			return
		}
		if v.items-before != s.weight {
			err = fmt.Errorf("%w: slot weight %d, counted %d", ErrVerifyWeightCount, s.weight, v.items-before)
			return
		}
		if t.less(s.router, subMax) || t.less(subMax, s.router) {
			err = ErrVerifyRouter
			return
		}
		if i > 0 && !t.less(n.slots[i-1].router, subMin) {
			err = ErrVerifyKeySeparation
			return
		}
		if t.minOf != nil && s.min != subMinKey {
			err = ErrVerifyMinimum
			return
		}

		if i == 0 {
			minKey = subMin
			min = subMinKey
		} else if t.minOf != nil && subMinKey.SecondWeight < min.SecondWeight {
			min = subMinKey
		}
	}
	maxKey = n.slots[len(n.slots)-1].router
	return
}
