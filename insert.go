package boxtree

import (
	"time"

	"github.com/hupe1980/boxtree/internal/simd"
)

// Insert adds item with the bound [mins, maxs].
//
// The item descends into the child with the largest percent overlap. When
// no child overlaps it becomes a new single-item leaf child; when the node
// it lands in is full, the nearest enclosing node with an overlapping path
// is rebuilt around it. Ancestor slot bounds only grow.
//
// Insert panics if the bound is invalid or has non-finite coordinates.
func (t *Tree[T]) Insert(item T, mins, maxs []float32) {
	t.checkBox(mins, maxs)
	start := time.Now()
	splits := t.splits

	sa := simd.SurfaceArea(mins, maxs)
	if !t.insert(t.root, &item, mins, maxs, sa) {
		t.rebuild(t.root, &pendingItem[T]{item: item, mins: mins, maxs: maxs})
	}

	t.metrics.RecordInsert(t.splits != splits, time.Since(start))
}

// insert places item below ref. It reports false when ref has no room and
// the caller has to rebuild.
func (t *Tree[T]) insert(ref nodeRef, item *T, mins, maxs []float32, sa float32) bool {
	n := t.nodes[ref]

	if n.leaf {
		if n.count >= t.fanout {
			return false
		}
		t.appendItem(n, *item, mins, maxs)
		return true
	}

	var areas, overlap [MaxFanout]float32
	b := t.view(n)
	simd.SurfaceAreas(b, areas[:])
	simd.PercentOverlap(b, mins, maxs, sa, areas[:], overlap[:])

	best := argmax(overlap[:n.count])
	if overlap[best] > 0 {
		if t.insert(n.children[best], item, mins, maxs, sa) {
			t.growSlot(n, best, mins, maxs)
		} else {
			t.rebuild(ref, &pendingItem[T]{item: *item, mins: mins, maxs: maxs})
		}
		return true
	}

	if n.count >= t.fanout {
		return false
	}

	leaf := t.alloc(true)
	t.appendItem(t.nodes[leaf], *item, mins, maxs)
	t.appendChild(n, leaf, mins, maxs)
	return true
}

// argmax returns the index of the first maximum.
func argmax(values []float32) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// argmin returns the index of the first minimum.
func argmin(values []float32) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[best] {
			best = i
		}
	}
	return best
}
