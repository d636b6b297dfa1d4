package boxtree

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/boxtree/internal/arena"
	"github.com/hupe1980/boxtree/internal/kmeans"
	"github.com/hupe1980/boxtree/internal/simd"
)

// Load creates a tree and bulk-loads the items of seq into it.
func Load[T any](seq iter.Seq[T], bounds BoundsFunc[T], optFns ...Option) (*Tree[T], error) {
	t, err := New[T](optFns...)
	if err != nil {
		return nil, err
	}
	t.BulkLoad(seq, bounds)
	return t, nil
}

// BulkLoad adds all items of seq. The items are first built into a balanced
// tree by recursive k-means partitioning; an empty tree adopts that build,
// a non-empty tree merges it in.
//
// BulkLoad panics if bounds yields an invalid or non-finite box.
func (t *Tree[T]) BulkLoad(seq iter.Seq[T], bounds BoundsFunc[T]) {
	start := time.Now()

	var items []T
	for item := range seq {
		items = append(items, item)
	}
	if len(items) == 0 {
		return
	}

	b := t.newBuilder(len(items))
	for i := range items {
		b.setBounds(i, func(mins, maxs []float32) { bounds(&items[i], mins, maxs) })
	}

	ref := b.build(items)
	t.logger.LogBulkLoad(context.Background(), len(items), b.nodes, time.Since(start))
	t.metrics.RecordBulkLoad(len(items), time.Since(start))

	if t.Empty() {
		t.release(t.root)
		t.root = ref
		return
	}
	t.mergeRoots(ref)
}

// Rebuild bulk-loads all items of the tree again, restoring a balanced
// shape after many inserts, merges or transforms.
func (t *Tree[T]) Rebuild() {
	if t.Empty() {
		return
	}
	t.rebuild(t.root, nil)
}

// rebuild replaces the subtree at ref with a balanced build of its items,
// plus extra if given. The reference keeps its identity.
func (t *Tree[T]) rebuild(ref nodeRef, extra *pendingItem[T]) {
	count := t.subtreeSize(ref)
	if extra != nil {
		count++
		t.splits++
	}

	b := t.newBuilder(count)
	items := make([]T, 0, count)
	if extra != nil {
		b.copyBounds(0, extra.mins, extra.maxs)
		items = append(items, extra.item)
	}

	// Gather items and bounds in walk order, then drop the old nodes below ref.
	t.walk(ref, func(item *T, mins, maxs []float32) bool {
		b.copyBounds(len(items), mins, maxs)
		items = append(items, *item)
		return true
	})
	t.releaseChildren(ref)

	built := b.build(items)
	t.swap(ref, built)
	t.release(built)

	t.logger.LogSplit(context.Background(), count)
}

type pendingItem[T any] struct {
	item T
	mins []float32
	maxs []float32
}

// builder stages the bounds of a working set in scratch memory and builds
// a balanced subtree from it.
type builder[T any] struct {
	t       *Tree[T]
	scratch *arena.Scratch
	mins    [][]float32 // [axis][item]
	maxs    [][]float32 // [axis][item]
	box     []float32   // 2*dims staging for one bound
	nodes   int
}

// loadBudget returns the scratch needed to build count items: the staged
// bounds plus the largest partitioning step, which is the first one since
// every step releases its scratch before recursing.
func loadBudget(count, k, dims int) arena.Budget {
	var b arena.Budget
	for range 2 * dims {
		b.AddFloats(count)
	}
	b.AddFloats(2 * dims)
	b.AddUints(count) // indices
	b.AddUints(count) // permutation cycle marks
	b.AddUints(k)     // partitions
	return b.Plus(kmeans.WorkMemSize(count, k, dims))
}

func (t *Tree[T]) newBuilder(count int) *builder[T] {
	s := arena.New(loadBudget(count, t.fanout, t.dims))
	b := &builder[T]{
		t:       t,
		scratch: s,
		mins:    make([][]float32, t.dims),
		maxs:    make([][]float32, t.dims),
	}
	for d := range t.dims {
		b.mins[d] = s.Floats(count)
		b.maxs[d] = s.Floats(count)
	}
	b.box = s.Floats(2 * t.dims)
	return b
}

// setBounds stages the bound of item i produced by fill and checks it.
func (b *builder[T]) setBounds(i int, fill func(mins, maxs []float32)) {
	dims := b.t.dims
	lo, hi := b.box[:dims], b.box[dims:]
	clear(b.box)
	fill(lo, hi)
	b.t.checkBox(lo, hi)
	b.copyBounds(i, lo, hi)
}

func (b *builder[T]) copyBounds(i int, mins, maxs []float32) {
	for d := range b.t.dims {
		b.mins[d][i] = mins[d]
		b.maxs[d][i] = maxs[d]
	}
}

// build builds a subtree over items, whose bounds are staged at the same
// positions, and returns its root.
func (b *builder[T]) build(items []T) nodeRef {
	return b.load(items, b.mins, b.maxs)
}

func (b *builder[T]) load(items []T, mins, maxs [][]float32) nodeRef {
	t := b.t
	count := len(items)
	b.nodes++

	if count <= t.fanout {
		ref := t.alloc(true)
		n := t.nodes[ref]
		for i := range items {
			n.items[i] = items[i]
			for d := range t.dims {
				n.mins[d*t.fanout+i] = mins[d][i]
				n.maxs[d*t.fanout+i] = maxs[d][i]
			}
		}
		n.count = count
		return ref
	}

	s := b.scratch
	mark := s.Mark()
	indices := s.Uints(count)
	marks := s.Uints(count)
	partitions := s.Uints(t.fanout)

	res := kmeans.PartitionBoxes(t.fanout, mins, maxs, indices, partitions, s)
	t.logger.LogPartition(context.Background(), count, res.Groups, res.Iterations, res.Converged, res.Fallback)
	t.metrics.RecordPartition(res.Converged, res.Iterations)

	permute(items, indices, marks)

	var ends [MaxFanout]uint32
	copy(ends[:], partitions)
	s.Release(mark)

	ref := t.alloc(false)
	n := t.nodes[ref]
	lo, hi := make([]float32, t.dims), make([]float32, t.dims)
	subMins, subMaxs := make([][]float32, t.dims), make([][]float32, t.dims)

	begin := uint32(0)
	for _, end := range ends[:t.fanout] {
		if end == begin {
			continue
		}
		for d := range t.dims {
			subMins[d] = mins[d][begin:end]
			subMaxs[d] = maxs[d][begin:end]
		}

		child := b.load(items[begin:end], subMins, subMaxs)
		simd.AxialMinMax(t.view(t.nodes[child]), lo, hi)
		t.appendChild(n, child, lo, hi)
		begin = end
	}

	return ref
}

// permute reorders items so that items[p] becomes the item previously at
// indices[p]. marks is scratch of the same length.
func permute[T any](items []T, indices, marks []uint32) {
	clear(marks)
	for start := range items {
		if marks[start] != 0 {
			continue
		}

		tmp := items[start]
		cur := start
		for {
			marks[cur] = 1
			src := int(indices[cur])
			if src == start {
				items[cur] = tmp
				break
			}
			items[cur] = items[src]
			cur = src
		}
	}
}
