package boxtree

import (
	"iter"
	"math"

	"github.com/hupe1980/boxtree/internal/pool"
)

// Visitor receives an item and its bound. The bound slices are only valid
// during the call. Returning false stops the traversal.
type Visitor[T any] func(item *T, mins, maxs []float32) bool

// BoundsFunc fills mins and maxs (one value per axis) with the bound of item.
type BoundsFunc[T any] func(item *T, mins, maxs []float32)

// Each adapts a function that visits every item to a Visitor.
func Each[T any](fn func(item *T)) Visitor[T] {
	return func(item *T, _, _ []float32) bool {
		fn(item)
		return true
	}
}

// Tree is a dynamic bounding volume hierarchy over items of type T, each
// with an axis-aligned bound in D dimensions.
//
// Nodes live in a pool owned by the tree and reference each other by index.
// The root always exists; an empty tree has an empty leaf root.
//
// Tree is not safe for concurrent use. Read-only operations (queries,
// Iterate, Clip) may run concurrently with each other.
type Tree[T any] struct {
	dims    int
	fanout  int
	nodes   []*node[T]
	free    []nodeRef
	root    nodeRef
	splits  int
	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty tree.
func New[T any](optFns ...Option) (*Tree[T], error) {
	o, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}

	t := &Tree[T]{
		dims:    o.dims,
		fanout:  o.fanout,
		logger:  o.logger.WithDimension(o.dims).WithFanout(o.fanout),
		metrics: o.metricsCollector,
	}
	t.root = t.alloc(true)

	return t, nil
}

// Dimensions returns the number of axes D.
func (t *Tree[T]) Dimensions() int {
	return t.dims
}

// Fanout returns the node capacity K.
func (t *Tree[T]) Fanout() int {
	return t.fanout
}

// Empty reports whether the tree holds no items.
func (t *Tree[T]) Empty() bool {
	n := t.nodes[t.root]
	return n.leaf && n.count == 0
}

// Clear removes all items and drops the node pool.
func (t *Tree[T]) Clear() {
	t.nodes = nil
	t.free = nil
	t.root = t.alloc(true)
}

// Size returns the number of items. It walks the tree.
func (t *Tree[T]) Size() int {
	return t.subtreeSize(t.root)
}

func (t *Tree[T]) subtreeSize(ref nodeRef) int {
	ctx := pool.Get(t.dims)
	defer pool.Put(ctx)

	size := 0
	ctx.Push(ref)
	for {
		r, ok := ctx.Pop()
		if !ok {
			return size
		}
		n := t.nodes[r]
		if n.leaf {
			size += n.count
			continue
		}
		for _, c := range n.children[:n.count] {
			ctx.Push(c)
		}
	}
}

// Bounds returns the union of all item bounds. ok is false for an empty tree.
func (t *Tree[T]) Bounds() (mins, maxs []float32, ok bool) {
	if t.Empty() {
		return nil, nil, false
	}
	mins = make([]float32, t.dims)
	maxs = make([]float32, t.dims)
	t.nodeBounds(t.root, mins, maxs)
	return mins, maxs, true
}

// Iterate calls visit for every item in depth-first pre-order until visit
// returns false.
func (t *Tree[T]) Iterate(visit Visitor[T]) {
	t.walk(t.root, visit)
}

// All returns an iterator over pointers to all items, in Iterate order.
func (t *Tree[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		t.walk(t.root, func(item *T, _, _ []float32) bool {
			return yield(item)
		})
	}
}

// walk visits every item below ref. It reports false if visit stopped early.
func (t *Tree[T]) walk(ref nodeRef, visit Visitor[T]) bool {
	ctx := pool.Get(t.dims)
	defer pool.Put(ctx)

	mins, maxs := ctx.CurrentBox(0)
	ctx.Push(ref)
	for {
		r, ok := ctx.Pop()
		if !ok {
			return true
		}

		n := t.nodes[r]
		if n.leaf {
			for i := range n.count {
				t.slot(n, i, mins, maxs)
				if !visit(&n.items[i], mins, maxs) {
					return false
				}
			}
			continue
		}

		for i := n.count - 1; i >= 0; i-- {
			ctx.Push(n.children[i])
		}
	}
}

// TreeStats describes the shape of a tree.
type TreeStats struct {
	Items     int // Number of items
	Leaves    int // Number of leaf nodes
	Branches  int // Number of branch nodes
	Depth     int // Nodes on the longest root-to-leaf path
	PoolNodes int // Allocated node slots, including free ones
	FreeNodes int // Released node slots awaiting reuse
}

// Stats computes statistics by walking the tree.
func (t *Tree[T]) Stats() TreeStats {
	s := TreeStats{
		PoolNodes: len(t.nodes),
		FreeNodes: len(t.free),
	}
	t.stats(t.root, 1, &s)
	return s
}

func (t *Tree[T]) stats(ref nodeRef, depth int, s *TreeStats) {
	n := t.nodes[ref]
	s.Depth = max(s.Depth, depth)
	if n.leaf {
		s.Leaves++
		s.Items += n.count
		return
	}
	s.Branches++
	for _, c := range n.children[:n.count] {
		t.stats(c, depth+1, s)
	}
}

// checkBox panics unless mins and maxs describe a valid box of the tree's
// dimension with finite coordinates.
func (t *Tree[T]) checkBox(mins, maxs []float32) {
	if len(mins) != t.dims || len(maxs) != t.dims {
		assertf("bound has %d/%d coordinates, tree has %d dimensions", len(mins), len(maxs), t.dims)
	}
	for d := range t.dims {
		lo, hi := float64(mins[d]), float64(maxs[d])
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			assertf("non-finite bound on axis %d: [%v, %v]", d, mins[d], maxs[d])
		}
		if mins[d] > maxs[d] {
			assertf("invalid bound on axis %d: min %v > max %v", d, mins[d], maxs[d])
		}
	}
}

// checkLen panics unless v has exactly n values.
func checkLen(what string, v []float32, n int) {
	if len(v) != n {
		assertf("%s has %d values, want %d", what, len(v), n)
	}
}
