package kmeans

import (
	"testing"

	"github.com/hupe1980/boxtree/internal/arena"
	"github.com/hupe1980/boxtree/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stage(boxes []testutil.Box) (mins, maxs [][]float32) {
	dims := boxes[0].Dims()
	mins = make([][]float32, dims)
	maxs = make([][]float32, dims)
	for d := range dims {
		mins[d] = make([]float32, len(boxes))
		maxs[d] = make([]float32, len(boxes))
		for i, b := range boxes {
			mins[d][i] = b.Min[d]
			maxs[d][i] = b.Max[d]
		}
	}
	return mins, maxs
}

func partitionAll(t *testing.T, k int, boxes []testutil.Box) ([][]float32, [][]float32, []uint32, []uint32, Result) {
	t.Helper()

	mins, maxs := stage(boxes)
	indices := make([]uint32, len(boxes))
	partitions := make([]uint32, k)
	s := arena.New(WorkMemSize(len(boxes), k, len(mins)))

	res := PartitionBoxes(k, mins, maxs, indices, partitions, s)

	return mins, maxs, indices, partitions, res
}

func TestPartitionBoxes_FourClusters(t *testing.T) {
	centers := [][]float32{{-10, -10}, {10, -10}, {-10, 10}, {10, 10}}

	for seed := int64(1); seed <= 8; seed++ {
		rng := testutil.NewRNG(seed)
		boxes, labels := rng.ClusteredBoxes(centers, 50, 1, 1)
		rng.Shuffle(len(boxes), func(i, j int) {
			boxes[i], boxes[j] = boxes[j], boxes[i]
			labels[i], labels[j] = labels[j], labels[i]
		})

		_, _, indices, partitions, res := partitionAll(t, 4, boxes)

		require.True(t, res.Converged, "seed %d", seed)
		require.False(t, res.Fallback)
		assert.Equal(t, 4, res.Groups)

		begin := uint32(0)
		for m := range 4 {
			end := partitions[m]
			require.Equal(t, uint32(50), end-begin, "seed %d group %d", seed, m)

			label := labels[indices[begin]]
			for p := begin; p < end; p++ {
				assert.Equal(t, label, labels[indices[p]], "seed %d group %d", seed, m)
			}
			begin = end
		}
	}
}

func TestPartitionBoxes_Permutation(t *testing.T) {
	rng := testutil.NewRNG(4711)
	boxes := rng.Boxes(300, 3, -50, 50, 8)

	mins, maxs, indices, partitions, res := partitionAll(t, 7, boxes)

	assert.Equal(t, uint32(len(boxes)), partitions[6])
	assert.LessOrEqual(t, res.Iterations, MaxIterations)
	assert.GreaterOrEqual(t, res.Iterations, 1)

	seen := make([]bool, len(boxes))
	for p, src := range indices {
		require.False(t, seen[src], "index %d repeated", src)
		seen[src] = true

		for d := range 3 {
			assert.Equal(t, boxes[src].Min[d], mins[d][p])
			assert.Equal(t, boxes[src].Max[d], maxs[d][p])
		}
	}

	for m := 1; m < 7; m++ {
		assert.LessOrEqual(t, partitions[m-1], partitions[m])
	}
}

func TestPartitionBoxes_Fallback(t *testing.T) {
	boxes := make([]testutil.Box, 20)
	for i := range boxes {
		boxes[i] = testutil.Box{Min: []float32{1, 1}, Max: []float32{2, 2}}
	}

	_, _, indices, partitions, res := partitionAll(t, 4, boxes)

	assert.True(t, res.Fallback)
	assert.Equal(t, 4, res.Groups)
	assert.Equal(t, []uint32{5, 10, 15, 20}, partitions)
	for i, v := range indices {
		assert.Equal(t, uint32(i), v)
	}
}

func TestPartitionBoxes_FallbackUneven(t *testing.T) {
	boxes := make([]testutil.Box, 7)
	for i := range boxes {
		boxes[i] = testutil.Box{Min: []float32{0}, Max: []float32{0}}
	}

	_, _, _, partitions, res := partitionAll(t, 3, boxes)

	assert.True(t, res.Fallback)
	assert.Equal(t, 3, res.Groups)
	assert.Equal(t, []uint32{3, 6, 7}, partitions)
}

func TestPartitionBoxes_SingleGroup(t *testing.T) {
	rng := testutil.NewRNG(1)
	boxes := rng.Boxes(10, 2, 0, 1, 1)

	_, _, _, partitions, res := partitionAll(t, 1, boxes)

	assert.True(t, res.Converged)
	assert.False(t, res.Fallback)
	assert.Equal(t, 1, res.Groups)
	assert.Equal(t, []uint32{10}, partitions)
}

func TestPartitionBoxes_ScratchRewound(t *testing.T) {
	rng := testutil.NewRNG(2)
	boxes := rng.Boxes(40, 3, 0, 10, 1)
	mins, maxs := stage(boxes)
	s := arena.New(WorkMemSize(40, 4, 3))

	before := s.Mark()
	PartitionBoxes(4, mins, maxs, make([]uint32, 40), make([]uint32, 4), s)

	assert.Equal(t, before, s.Mark())
	assert.LessOrEqual(t, s.Stats().FloatsPeak, s.Stats().FloatsReserved)
	assert.LessOrEqual(t, s.Stats().UintsPeak, s.Stats().UintsReserved)
}

func TestPartitionBoxes_Panics(t *testing.T) {
	rng := testutil.NewRNG(3)
	boxes := rng.Boxes(4, 2, 0, 1, 1)
	mins, maxs := stage(boxes)
	s := arena.New(WorkMemSize(4, 8, 2))

	tests := []struct {
		name string
		fn   func()
	}{
		{"k zero", func() { PartitionBoxes(0, mins, maxs, make([]uint32, 4), make([]uint32, 1), s) }},
		{"k above count", func() { PartitionBoxes(5, mins, maxs, make([]uint32, 4), make([]uint32, 5), s) }},
		{"short partitions", func() { PartitionBoxes(3, mins, maxs, make([]uint32, 4), make([]uint32, 2), s) }},
		{"axis mismatch", func() { PartitionBoxes(2, mins, maxs[:1], make([]uint32, 4), make([]uint32, 2), s) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}

func TestBoxesDistance(t *testing.T) {
	mins := [][]float32{{0}, {0}}
	maxs := [][]float32{{4}, {2}}
	s := arena.New(arena.Budget{Floats: 64})
	b := newBoxes(mins, maxs, 1, s)

	means := [][]float32{{1, 3, 7}, {1, 1, 6}}

	// (1,1): penetration 1 on both axes.
	assert.InDelta(t, -1, b.distance(0, means, 0), 1e-6)
	// (3,1): closest face is x=4 at 1, y faces at 1.
	assert.InDelta(t, -1, b.distance(0, means, 1), 1e-6)
	// (7,6): outside by (3,4).
	assert.InDelta(t, 5, b.distance(0, means, 2), 1e-6)

	assert.InDelta(t, 8, b.Masses[0], 1e-6)
	assert.InDelta(t, 16, b.WeightedCenters[0][0], 1e-6)
	assert.InDelta(t, 8, b.WeightedCenters[1][0], 1e-6)
}

func TestBoxesDegenerateMass(t *testing.T) {
	mins := [][]float32{{1}, {1}, {1}}
	maxs := [][]float32{{1}, {1}, {1}}
	s := arena.New(arena.Budget{Floats: 64})
	b := newBoxes(mins, maxs, 1, s)

	assert.Equal(t, float32(massEpsilon), b.Masses[0])
}

func BenchmarkPartitionBoxes(b *testing.B) {
	rng := testutil.NewRNG(4711)
	boxes := rng.Boxes(4096, 3, -100, 100, 4)
	mins, maxs := stage(boxes)
	indices := make([]uint32, len(boxes))
	partitions := make([]uint32, 16)
	s := arena.New(WorkMemSize(len(boxes), 16, 3))

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		PartitionBoxes(16, mins, maxs, indices, partitions, s)
	}
}
