package cull

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/boxtree"
)

// PairKey packs an id pair into one roaring64 value.
func PairKey(a, b uint32) uint64 {
	return uint64(a)<<32 | uint64(b)
}

// SplitPair unpacks a value built by PairKey.
func SplitPair(key uint64) (a, b uint32) {
	return uint32(key >> 32), uint32(key) //nolint:gosec // intended truncation
}

// Collisions returns every pair of distinct overlapping items of tree,
// packed with the smaller id first.
func Collisions(tree *boxtree.Tree[uint32], eps float32) *roaring64.Bitmap {
	bm := roaring64.New()
	tree.SelfClip(eps, boxtree.Pairs(func(a, b *uint32) {
		x, y := *a, *b
		if x > y {
			x, y = y, x
		}
		bm.Add(PairKey(x, y))
	}))
	return bm
}

// Contacts returns every overlapping (lhs id, rhs id) pair between two
// trees. The trees must share their dimensions.
func Contacts(lhs, rhs *boxtree.Tree[uint32], eps float32) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	err := boxtree.Clip(lhs, rhs, eps, boxtree.Pairs(func(a, b *uint32) {
		bm.Add(PairKey(*a, *b))
	}))
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// Pairs iterates the id pairs of a pair set in ascending key order.
func Pairs(pairs *roaring64.Bitmap) iter.Seq2[uint32, uint32] {
	return func(yield func(uint32, uint32) bool) {
		it := pairs.Iterator()
		for it.HasNext() {
			if !yield(SplitPair(it.Next())) {
				return
			}
		}
	}
}

// Involved returns every id that occurs on either side of a pair.
func Involved(pairs *roaring64.Bitmap) *roaring.Bitmap {
	bm := roaring.New()
	for a, b := range Pairs(pairs) {
		bm.Add(a)
		bm.Add(b)
	}
	return bm
}
