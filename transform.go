package boxtree

// TransformFunc is called once per item with a copy of its bound. It may
// modify the item and the bound; returning true stores the bound.
type TransformFunc[T any] func(item *T, mins, maxs []float32) bool

// Transform calls fn for every item and refits the tree: every branch slot
// is recomputed as the exact union of its child's slots. The shape of the
// tree is unchanged, so heavy movement may call for Rebuild.
//
// Transform panics if fn stores an invalid or non-finite bound.
func (t *Tree[T]) Transform(fn TransformFunc[T]) {
	lo, hi := make([]float32, t.dims), make([]float32, t.dims)
	t.transform(t.root, fn, lo, hi)
}

func (t *Tree[T]) transform(ref nodeRef, fn TransformFunc[T], lo, hi []float32) {
	n := t.nodes[ref]

	if n.leaf {
		for i := range n.count {
			t.slot(n, i, lo, hi)
			if fn(&n.items[i], lo, hi) {
				t.checkBox(lo, hi)
				t.setSlot(n, i, lo, hi)
			}
		}
		return
	}

	for i, c := range n.children[:n.count] {
		t.transform(c, fn, lo, hi)
		t.nodeBounds(c, lo, hi)
		t.setSlot(n, i, lo, hi)
	}
}
