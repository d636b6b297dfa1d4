package boxtree

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/boxtree/internal/conv"
	"github.com/hupe1980/boxtree/internal/simd"
)

// mergeOverlap is the percent overlap above which a merged subtree always
// descends into the overlapping child rather than taking a free slot.
const mergeOverlap = 0.5

// Merge moves all items of other into t, leaving other empty. Both trees
// must have the same dimensions and fanout.
//
// The subtree with the larger surface area receives the other one. A branch
// receiver places the incoming subtree into the child it overlaps by more
// than half, else into a free slot, else into the nearest (no overlap) or
// most overlapping child, recursing with the larger of the two as receiver.
// Leaves combine when the items fit into one node, otherwise both become
// children of a new two-way branch.
func (t *Tree[T]) Merge(other *Tree[T]) error {
	if other == t {
		return fmt.Errorf("%w: tree merged into itself", ErrIncompatible)
	}
	if other.dims != t.dims {
		return incompatible("dimensions", t.dims, other.dims)
	}
	if other.fanout != t.fanout {
		return incompatible("fanout", t.fanout, other.fanout)
	}
	if other.Empty() {
		return nil
	}

	received := other.Size()
	src := t.graft(other)

	if t.Empty() {
		t.release(t.root)
		t.root = src
	} else {
		t.mergeRoots(src)
	}

	t.logger.LogMerge(context.Background(), received)
	return nil
}

// graft moves every node of other into t's pool and returns the new
// reference of other's root. other is left empty.
func (t *Tree[T]) graft(other *Tree[T]) nodeRef {
	remap := make([]nodeRef, len(other.nodes))
	adopted := make([]nodeRef, 0, len(other.nodes)-len(other.free))

	stack := []nodeRef{other.root}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := other.nodes[r]
		if !n.leaf {
			stack = append(stack, n.children[:n.count]...)
		}
		remap[r] = t.adopt(n)
		adopted = append(adopted, remap[r])
	}

	for _, ref := range adopted {
		n := t.nodes[ref]
		if n.leaf {
			continue
		}
		for i, c := range n.children[:n.count] {
			n.children[i] = remap[c]
		}
	}

	root := remap[other.root]
	other.Clear()
	return root
}

// adopt stores a node taken from another tree and returns its reference.
func (t *Tree[T]) adopt(n *node[T]) nodeRef {
	if k := len(t.free); k > 0 {
		ref := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[ref] = n
		return ref
	}

	ref, err := conv.IntToInt32(len(t.nodes))
	if err != nil {
		assertf("node pool exhausted: %v", err)
	}
	t.nodes = append(t.nodes, n)
	return ref
}

// mergeRoots merges the subtree src, already stored in t's pool, with the
// non-empty root.
func (t *Tree[T]) mergeRoots(src nodeRef) {
	start := time.Now()

	srcMin, srcMax := make([]float32, t.dims), make([]float32, t.dims)
	dstMin, dstMax := make([]float32, t.dims), make([]float32, t.dims)
	t.nodeBounds(src, srcMin, srcMax)
	t.nodeBounds(t.root, dstMin, dstMax)
	srcSA := simd.SurfaceArea(srcMin, srcMax)
	dstSA := simd.SurfaceArea(dstMin, dstMax)

	if dstSA >= srcSA {
		t.merge(t.root, src, srcMin, srcMax, srcSA)
	} else {
		t.merge(src, t.root, dstMin, dstMax, dstSA)
		t.root = src
	}

	t.metrics.RecordMerge(time.Since(start))
}

// merge moves the subtree src, bounded by [srcMin, srcMax], into the subtree
// dst. dst keeps its reference.
func (t *Tree[T]) merge(dst, src nodeRef, srcMin, srcMax []float32, srcSA float32) {
	n := t.nodes[dst]

	if n.leaf {
		s := t.nodes[src]
		if s.leaf && n.count+s.count <= t.fanout {
			lo, hi := make([]float32, t.dims), make([]float32, t.dims)
			for i := range s.count {
				t.slot(s, i, lo, hi)
				t.appendItem(n, s.items[i], lo, hi)
			}
			t.release(src)
			return
		}
		t.branchMerge(dst, src, srcMin, srcMax)
		return
	}

	var areas, overlap [MaxFanout]float32
	b := t.view(n)
	simd.SurfaceAreas(b, areas[:])
	simd.PercentOverlap(b, srcMin, srcMax, srcSA, areas[:], overlap[:])

	var idx int
	best := argmax(overlap[:n.count])
	switch {
	case overlap[best] > mergeOverlap:
		idx = best
	case n.count < t.fanout:
		t.appendChild(n, src, srcMin, srcMax)
		return
	case overlap[best] == 0:
		var dists [MaxFanout]float32
		simd.BoxDistancesSqr(b, srcMin, srcMax, dists[:])
		idx = argmin(dists[:n.count])
	default:
		idx = best
	}

	child := n.children[idx]
	if childSA := areas[idx]; childSA > srcSA {
		t.merge(child, src, srcMin, srcMax, srcSA)
	} else {
		lo, hi := make([]float32, t.dims), make([]float32, t.dims)
		t.slot(n, idx, lo, hi)
		t.merge(src, child, lo, hi, childSA)
		n.children[idx] = src
	}

	t.growSlot(n, idx, srcMin, srcMax)
}

// branchMerge turns dst into a two-way branch over src and the old contents
// of dst.
func (t *Tree[T]) branchMerge(dst, src nodeRef, srcMin, srcMax []float32) {
	moved := t.alloc(false)
	t.swap(dst, moved)

	lo, hi := make([]float32, t.dims), make([]float32, t.dims)
	t.nodeBounds(moved, lo, hi)

	n := t.nodes[dst]
	t.appendChild(n, src, srcMin, srcMax)
	t.appendChild(n, moved, lo, hi)
}
