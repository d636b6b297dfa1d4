package boxtree

import (
	"math"

	"github.com/hupe1980/boxtree/internal/pool"
)

// Validate checks the structural invariants of the tree and returns an
// error wrapping ErrInvariant describing the first violation found:
//
//   - every node holds at most Fanout slots and only the root may be empty
//   - every item bound is finite with min <= max on each axis
//   - every branch slot encloses the bounds of the child below it
//   - no node is reachable twice and every pool node is reachable or free
//
// Validate is meant for tests and debugging; it visits the whole tree.
func (t *Tree[T]) Validate() error {
	ctx := pool.Get(t.dims)
	defer pool.Put(ctx)

	slotMin, slotMax := make([]float32, t.dims), make([]float32, t.dims)
	childMin, childMax := make([]float32, t.dims), make([]float32, t.dims)

	reachable := 0
	ctx.Push(t.root)
	for {
		ref, ok := ctx.Pop()
		if !ok {
			break
		}

		if ref < 0 || int(ref) >= len(t.nodes) || t.nodes[ref] == nil {
			return invariantf("dangling node reference %d", ref)
		}
		if ctx.MarkVisited(uint32(ref)) {
			return invariantf("node %d is reachable twice", ref)
		}
		reachable++

		n := t.nodes[ref]
		if n.count > t.fanout {
			return invariantf("node %d holds %d slots, fanout is %d", ref, n.count, t.fanout)
		}
		if n.count == 0 && ref != t.root {
			return invariantf("node %d is empty", ref)
		}

		for i := range n.count {
			t.slot(n, i, slotMin, slotMax)
			if n.leaf {
				for d := range t.dims {
					lo, hi := float64(slotMin[d]), float64(slotMax[d])
					if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
						return invariantf("leaf %d slot %d has invalid bound on axis %d: [%v, %v]", ref, i, d, slotMin[d], slotMax[d])
					}
				}
				continue
			}

			c := n.children[i]
			if c < 0 || int(c) >= len(t.nodes) || t.nodes[c] == nil {
				return invariantf("branch %d slot %d references missing node %d", ref, i, c)
			}
			if t.nodes[c].count == 0 {
				return invariantf("node %d is empty", c)
			}

			t.nodeBounds(c, childMin, childMax)
			for d := range t.dims {
				if slotMin[d] > childMin[d] || slotMax[d] < childMax[d] {
					return invariantf("branch %d slot %d does not enclose child %d on axis %d", ref, i, c, d)
				}
			}
			ctx.Push(c)
		}
	}

	for _, f := range t.free {
		if ctx.IsVisited(uint32(f)) {
			return invariantf("node %d is both free and reachable", f)
		}
	}
	if reachable+len(t.free) != len(t.nodes) {
		return invariantf("%d nodes reachable and %d free, pool holds %d", reachable, len(t.free), len(t.nodes))
	}

	return nil
}
