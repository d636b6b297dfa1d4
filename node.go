package boxtree

import (
	"github.com/hupe1980/boxtree/internal/conv"
	"github.com/hupe1980/boxtree/internal/mem"
	"github.com/hupe1980/boxtree/internal/simd"
)

// nodeRef indexes Tree.nodes.
type nodeRef = int32

// node is either a leaf holding up to K items or a branch holding up to K
// child references. Slot bounds are stored axis-major: the box of slot i on
// axis d is [mins[d*K+i], maxs[d*K+i]]. For a leaf the slot bound is the
// item's bound; for a branch it encloses every item below the child.
type node[T any] struct {
	leaf     bool
	count    int
	mins     []float32
	maxs     []float32
	children []nodeRef
	items    []T
}

// alloc returns a fresh, empty node, reusing a released one if possible.
func (t *Tree[T]) alloc(leaf bool) nodeRef {
	var ref nodeRef
	if k := len(t.free); k > 0 {
		ref = t.free[k-1]
		t.free = t.free[:k-1]
	} else {
		r, err := conv.IntToInt32(len(t.nodes))
		if err != nil {
			assertf("node pool exhausted: %v", err)
		}
		ref = r
		t.nodes = append(t.nodes, nil)
	}

	n := t.nodes[ref]
	if n == nil {
		n = &node[T]{
			mins: mem.AllocAlignedFloat32(t.dims * t.fanout),
			maxs: mem.AllocAlignedFloat32(t.dims * t.fanout),
		}
		t.nodes[ref] = n
	}

	n.leaf = leaf
	n.count = 0
	if leaf && n.items == nil {
		n.items = make([]T, t.fanout)
	}
	if !leaf && n.children == nil {
		n.children = make([]nodeRef, t.fanout)
	}

	return ref
}

// release returns a node to the free list. Its children are not released.
func (t *Tree[T]) release(ref nodeRef) {
	n := t.nodes[ref]
	if n.items != nil {
		clear(n.items)
	}
	n.count = 0
	t.free = append(t.free, ref)
}

// releaseSubtree releases ref and every node below it.
func (t *Tree[T]) releaseSubtree(ref nodeRef) {
	n := t.nodes[ref]
	if !n.leaf {
		for _, c := range n.children[:n.count] {
			t.releaseSubtree(c)
		}
	}
	t.release(ref)
}

// releaseChildren releases every node below ref and empties ref itself.
func (t *Tree[T]) releaseChildren(ref nodeRef) {
	n := t.nodes[ref]
	if !n.leaf {
		for _, c := range n.children[:n.count] {
			t.releaseSubtree(c)
		}
	} else {
		clear(n.items)
	}
	n.count = 0
}

// swap exchanges the contents behind two references.
func (t *Tree[T]) swap(a, b nodeRef) {
	t.nodes[a], t.nodes[b] = t.nodes[b], t.nodes[a]
}

func (t *Tree[T]) view(n *node[T]) simd.Bounds {
	return simd.Bounds{Mins: n.mins, Maxs: n.maxs, Stride: t.fanout, Count: n.count, Dims: t.dims}
}

// setSlot writes the bound of slot i.
func (t *Tree[T]) setSlot(n *node[T], i int, mins, maxs []float32) {
	for d := range t.dims {
		n.mins[d*t.fanout+i] = mins[d]
		n.maxs[d*t.fanout+i] = maxs[d]
	}
}

// growSlot extends the bound of slot i to enclose [mins, maxs].
func (t *Tree[T]) growSlot(n *node[T], i int, mins, maxs []float32) {
	for d := range t.dims {
		j := d*t.fanout + i
		n.mins[j] = min(n.mins[j], mins[d])
		n.maxs[j] = max(n.maxs[j], maxs[d])
	}
}

// slot copies the bound of slot i into mins and maxs.
func (t *Tree[T]) slot(n *node[T], i int, mins, maxs []float32) {
	for d := range t.dims {
		mins[d] = n.mins[d*t.fanout+i]
		maxs[d] = n.maxs[d*t.fanout+i]
	}
}

// nodeBounds writes the union of all slot bounds of a non-empty node.
func (t *Tree[T]) nodeBounds(ref nodeRef, mins, maxs []float32) {
	simd.AxialMinMax(t.view(t.nodes[ref]), mins, maxs)
}

// appendItem adds an item to a leaf with room.
func (t *Tree[T]) appendItem(n *node[T], item T, mins, maxs []float32) {
	n.items[n.count] = item
	t.setSlot(n, n.count, mins, maxs)
	n.count++
}

// appendChild attaches a child to a branch with room.
func (t *Tree[T]) appendChild(n *node[T], child nodeRef, mins, maxs []float32) {
	n.children[n.count] = child
	t.setSlot(n, n.count, mins, maxs)
	n.count++
}
