package boxtree

import (
	"slices"
	"testing"

	"github.com/hupe1980/boxtree/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRange builds a tree over boxes[lo:hi] whose items are the global
// indices.
func buildRange(t *testing.T, boxes []testutil.Box, lo, hi int, optFns ...Option) *Tree[int] {
	t.Helper()

	tree, err := New[int](optFns...)
	require.NoError(t, err)
	tree.BulkLoad(slices.Values(seq(hi)[lo:]), boundsOf(boxes))
	require.NoError(t, tree.Validate())
	return tree
}

func shifted(boxes []testutil.Box, by float32) []testutil.Box {
	out := make([]testutil.Box, len(boxes))
	for i, b := range boxes {
		out[i] = testutil.Box{Min: slices.Clone(b.Min), Max: slices.Clone(b.Max)}
		for d := range b.Min {
			out[i].Min[d] += by
			out[i].Max[d] += by
		}
	}
	return out
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		na, nb int
		offset float32 // shift of the second tree's boxes
	}{
		{"SmallIntoLarge", 500, 20, 0},
		{"LargeIntoSmall", 20, 500, 0},
		{"Equal", 200, 200, 0},
		{"LeavesCombine", 3, 4, 0},
		{"LeavesOverflow", 10, 10, 0},
		{"Disjoint", 300, 300, 1000},
		{"DisjointSmall", 300, 5, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := testutil.NewRNG(int64(tt.na*1000 + tt.nb))
			boxes := rng.Boxes(tt.na, 3, 0, 100, 6)
			boxes = append(boxes, shifted(rng.Boxes(tt.nb, 3, 0, 100, 6), tt.offset)...)

			a := buildRange(t, boxes, 0, tt.na)
			b := buildRange(t, boxes, tt.na, tt.na+tt.nb)

			require.NoError(t, a.Merge(b))
			require.NoError(t, a.Validate())
			require.NoError(t, b.Validate())

			assert.True(t, b.Empty())
			assert.Equal(t, tt.na+tt.nb, a.Size())
			assert.Equal(t, seq(len(boxes)), items(a))

			stats := a.Stats()
			assert.Equal(t, stats.Leaves+stats.Branches, stats.PoolNodes-stats.FreeNodes)

			for range 10 {
				checkQueries(t, rng, a, boxes)
			}
		})
	}
}

func TestMergeRepeated(t *testing.T) {
	rng := testutil.NewRNG(21)
	boxes := rng.Boxes(600, 2, 0, 100, 4)

	tree, err := New[int](WithDimensions(2), WithFanout(4))
	require.NoError(t, err)

	for lo := 0; lo < len(boxes); lo += 50 {
		other := buildRange(t, boxes, lo, lo+50, WithDimensions(2), WithFanout(4))
		require.NoError(t, tree.Merge(other))
		require.NoError(t, tree.Validate())
	}

	assert.Equal(t, seq(len(boxes)), items(tree))
	for range 10 {
		checkQueries(t, rng, tree, boxes)
	}

	// The emptied trees stay usable.
	other := buildRange(t, boxes, 0, 10, WithDimensions(2), WithFanout(4))
	require.NoError(t, tree.Merge(other))
	other.Insert(7, boxes[7].Min, boxes[7].Max)
	assert.Equal(t, []int{7}, items(other))
}

func TestMergeEdgeCases(t *testing.T) {
	rng := testutil.NewRNG(4)
	boxes := rng.Boxes(50, 3, 0, 10, 2)

	t.Run("IntoEmpty", func(t *testing.T) {
		empty, err := New[int]()
		require.NoError(t, err)

		require.NoError(t, empty.Merge(buildRange(t, boxes, 0, 50)))
		require.NoError(t, empty.Validate())
		assert.Equal(t, seq(50), items(empty))
	})

	t.Run("EmptyOther", func(t *testing.T) {
		tree := buildRange(t, boxes, 0, 50)
		empty, err := New[int]()
		require.NoError(t, err)

		require.NoError(t, tree.Merge(empty))
		assert.Equal(t, 50, tree.Size())
	})

	t.Run("Self", func(t *testing.T) {
		tree := buildRange(t, boxes, 0, 50)
		assert.ErrorIs(t, tree.Merge(tree), ErrIncompatible)
		assert.Equal(t, 50, tree.Size())
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		tree := buildRange(t, boxes, 0, 50)
		other, err := New[int](WithDimensions(2))
		require.NoError(t, err)
		other.Insert(1, []float32{0, 0}, []float32{1, 1})

		assert.ErrorIs(t, tree.Merge(other), ErrIncompatible)
		assert.Equal(t, 1, other.Size())
	})

	t.Run("FanoutMismatch", func(t *testing.T) {
		tree := buildRange(t, boxes, 0, 50)
		other := buildRange(t, boxes, 0, 5, WithFanout(4))

		assert.ErrorIs(t, tree.Merge(other), ErrIncompatible)
		assert.Equal(t, 5, other.Size())
	})
}

func TestBulkLoadIntoNonEmpty(t *testing.T) {
	rng := testutil.NewRNG(31)
	boxes := rng.Boxes(700, 3, 0, 100, 5)

	tree := build(t, byInsert, boxes[:200], WithFanout(8))
	tree.BulkLoad(slices.Values(seq(700)[200:]), boundsOf(boxes))
	require.NoError(t, tree.Validate())

	assert.Equal(t, seq(700), items(tree))
	for range 10 {
		checkQueries(t, rng, tree, boxes)
	}

	t.Run("EmptySequence", func(t *testing.T) {
		tree.BulkLoad(slices.Values([]int{}), boundsOf(boxes))
		assert.Equal(t, 700, tree.Size())
	})

	t.Run("Load", func(t *testing.T) {
		loaded, err := Load(ids(len(boxes)), boundsOf(boxes), WithFanout(32))
		require.NoError(t, err)
		require.NoError(t, loaded.Validate())
		assert.Equal(t, 32, loaded.Fanout())
		assert.Equal(t, seq(700), items(loaded))

		_, err = Load(ids(1), boundsOf(boxes), WithFanout(1))
		assert.Error(t, err)
	})
}
