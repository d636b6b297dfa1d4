package cull

import (
	"testing"

	"github.com/hupe1980/boxtree"
	"github.com/hupe1980/boxtree/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, boxes []testutil.Box, optFns ...boxtree.Option) *boxtree.Tree[uint32] {
	t.Helper()

	seq := func(yield func(uint32) bool) {
		for i := range boxes {
			if !yield(uint32(i)) { //nolint:gosec // test sizes fit
				return
			}
		}
	}
	tree, err := boxtree.Load(seq, func(id *uint32, mins, maxs []float32) {
		copy(mins, boxes[*id].Min)
		copy(maxs, boxes[*id].Max)
	}, optFns...)
	require.NoError(t, err)
	return tree
}

func toUint32(ids []int) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id) //nolint:gosec // test sizes fit
	}
	return out
}

func TestVisible(t *testing.T) {
	rng := testutil.NewRNG(42)
	boxes := rng.Boxes(800, 3, 0, 100, 6)
	tree := load(t, boxes, boxtree.WithFanout(8))

	t.Run("BoxVolume", func(t *testing.T) {
		for range 10 {
			view := rng.Box(3, 0, 80, 40)
			got := Visible(tree, BoxPlanes(view.Min, view.Max), 0)
			want := testutil.BruteRange(boxes, view.Min, view.Max, 0)
			assert.Equal(t, toUint32(want), got.ToArray())
		}
	})

	t.Run("RandomPlanes", func(t *testing.T) {
		for range 10 {
			planes := make([][]float32, 4)
			inside := map[int]int{}
			for i := range planes {
				planes[i] = append(rng.Point(3, -1, 1), rng.Float32Range(-60, 20))
				for _, id := range testutil.BruteHalfSpace(boxes, planes[i], 0.1) {
					inside[id]++
				}
			}

			want := []uint32{}
			for id := range boxes {
				if inside[id] == len(planes) {
					want = append(want, uint32(id)) //nolint:gosec // test sizes fit
				}
			}

			got := Visible(tree, planes, 0.1)
			assert.Equal(t, len(want), int(got.GetCardinality()))
			assert.ElementsMatch(t, want, got.ToArray())
		}
	})

	t.Run("NoPlanes", func(t *testing.T) {
		assert.Equal(t, uint64(len(boxes)), Visible(tree, nil, 0).GetCardinality())
	})

	t.Run("NothingVisible", func(t *testing.T) {
		planes := BoxPlanes([]float32{500, 500, 500}, []float32{600, 600, 600})
		assert.True(t, Visible(tree, planes, 0).IsEmpty())
	})
}

func TestBoxPlanes(t *testing.T) {
	planes := BoxPlanes([]float32{1, 2}, []float32{3, 4})
	assert.Equal(t, [][]float32{
		{1, 0, 1},
		{-1, 0, -3},
		{0, 1, 2},
		{0, -1, -4},
	}, planes)
}

func TestPairKey(t *testing.T) {
	for _, p := range [][2]uint32{{0, 0}, {1, 2}, {2, 1}, {1<<32 - 1, 7}, {7, 1<<32 - 1}} {
		a, b := SplitPair(PairKey(p[0], p[1]))
		assert.Equal(t, p[0], a)
		assert.Equal(t, p[1], b)
	}
	assert.Less(t, PairKey(1, 1<<32-1), PairKey(2, 0))
}

func TestCollisions(t *testing.T) {
	rng := testutil.NewRNG(7)
	boxes := rng.Boxes(400, 2, 0, 100, 8)
	tree := load(t, boxes, boxtree.WithDimensions(2), boxtree.WithFanout(4))

	got := Collisions(tree, 0)

	want := testutil.BruteSelfPairs(boxes, 0)
	require.Equal(t, uint64(len(want)), got.GetCardinality())

	i := 0
	for a, b := range Pairs(got) {
		assert.Equal(t, want[i], [2]int{int(a), int(b)})
		i++
	}

	involved := Involved(got)
	for _, p := range want {
		assert.True(t, involved.Contains(uint32(p[0]))) //nolint:gosec // test sizes fit
		assert.True(t, involved.Contains(uint32(p[1]))) //nolint:gosec // test sizes fit
	}
}

func TestContacts(t *testing.T) {
	rng := testutil.NewRNG(8)
	lhsBoxes := rng.Boxes(300, 3, 0, 100, 8)
	rhsBoxes := rng.Boxes(200, 3, 0, 100, 8)

	lhs := load(t, lhsBoxes, boxtree.WithFanout(16))
	rhs := load(t, rhsBoxes, boxtree.WithFanout(4))

	got, err := Contacts(lhs, rhs, 0.25)
	require.NoError(t, err)

	want := testutil.BrutePairs(lhsBoxes, rhsBoxes, 0.25)
	var pairs [][2]int
	for a, b := range Pairs(got) {
		pairs = append(pairs, [2]int{int(a), int(b)})
	}
	assert.Equal(t, want, pairs)

	t.Run("DimensionMismatch", func(t *testing.T) {
		flat := load(t, rng.Boxes(10, 2, 0, 10, 1), boxtree.WithDimensions(2))
		_, err := Contacts(lhs, flat, 0)
		assert.ErrorIs(t, err, boxtree.ErrIncompatible)
	})
}
