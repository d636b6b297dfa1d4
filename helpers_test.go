package boxtree

import (
	"iter"
	"slices"
	"testing"

	"github.com/hupe1980/boxtree/testutil"
	"github.com/stretchr/testify/require"
)

// boundsOf returns a BoundsFunc for int items indexing boxes.
func boundsOf(boxes []testutil.Box) BoundsFunc[int] {
	return func(item *int, mins, maxs []float32) {
		copy(mins, boxes[*item].Min)
		copy(maxs, boxes[*item].Max)
	}
}

func ids(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range n {
			if !yield(i) {
				return
			}
		}
	}
}

type buildMode string

const (
	byInsert   buildMode = "Insert"
	byBulkLoad buildMode = "BulkLoad"
	byMixed    buildMode = "Mixed"
)

// build creates a tree over boxes whose items are the box indices.
func build(t testing.TB, mode buildMode, boxes []testutil.Box, optFns ...Option) *Tree[int] {
	t.Helper()

	tree, err := New[int](optFns...)
	require.NoError(t, err)

	switch mode {
	case byInsert:
		for i, b := range boxes {
			tree.Insert(i, b.Min, b.Max)
		}
	case byBulkLoad:
		tree.BulkLoad(ids(len(boxes)), boundsOf(boxes))
	case byMixed:
		half := len(boxes) / 2
		tree.BulkLoad(ids(half), boundsOf(boxes))
		for i := half; i < len(boxes); i++ {
			tree.Insert(i, boxes[i].Min, boxes[i].Max)
		}
	}

	require.NoError(t, tree.Validate())
	return tree
}

// collect runs a query and returns the sorted items it visited.
func collect(run func(Visitor[int])) []int {
	got := []int{}
	run(func(item *int, _, _ []float32) bool {
		got = append(got, *item)
		return true
	})
	slices.Sort(got)
	return got
}

func items(tree *Tree[int]) []int {
	got := slices.Collect(func(yield func(int) bool) {
		for item := range tree.All() {
			if !yield(*item) {
				return
			}
		}
	})
	slices.Sort(got)
	return got
}

func seq(n int) []int {
	return slices.Collect(ids(n))
}
