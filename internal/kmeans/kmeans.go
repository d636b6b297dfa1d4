package kmeans

import (
	"fmt"
	"math"

	"github.com/hupe1980/boxtree/internal/arena"
	"github.com/hupe1980/boxtree/internal/conv"
)

// MaxIterations caps the number of Lloyd rounds. Hitting the cap leaves a
// usable but lower-quality partition.
const MaxIterations = 64

const maxFloat32 = math.MaxFloat32

// Result describes the outcome of PartitionBoxes.
type Result struct {
	// Converged is false when MaxIterations was reached with assignments still moving.
	Converged bool
	// Iterations is the number of Lloyd rounds executed.
	Iterations int
	// Groups is the number of non-empty ranges in the output.
	Groups int
	// Fallback is true when clustering collapsed and the boxes were chunked instead.
	Fallback bool
}

// WorkMemSize returns the scratch budget PartitionBoxes needs for boxCount
// boxes, k clusters and dims axes.
func WorkMemSize(boxCount, k, dims int) arena.Budget {
	var b arena.Budget

	b.AddFloats(boxCount) // masses
	for range dims {
		b.AddFloats(boxCount) // weighted centers
		b.AddFloats(k)        // means
	}
	b.AddFloats(k)        // mean masses
	b.AddUints(boxCount)  // nearest means
	b.AddFloats(boxCount) // nearest distances
	b.AddUints(boxCount)  // permutation, seed candidates
	b.AddFloats(boxCount) // float gather buffer
	b.AddUints(boxCount)  // uint gather buffer
	b.AddUints(k)         // group counts

	return b
}

// PartitionBoxes clusters the boxes described by the per-axis arrays mins and
// maxs into k groups and reorders them in place into k contiguous ranges.
//
// The number of boxes is len(indices). On return indices[p] holds the
// original position of the box now at position p, and partitions[m] is the
// exclusive end of range m (ranges may be empty). The scratch must have room
// for WorkMemSize(len(indices), k, len(mins)); it is rewound before returning.
//
// PartitionBoxes panics when k is outside [1, len(indices)] or the arrays are
// too short.
func PartitionBoxes(k int, mins, maxs [][]float32, indices, partitions []uint32, s *arena.Scratch) Result {
	n := len(indices)
	if _, err := conv.IntToUint32(n); err != nil {
		panic(fmt.Sprintf("kmeans: %v", err))
	}
	if k < 1 || k > n {
		panic(fmt.Sprintf("kmeans: k=%d out of range for %d boxes", k, n))
	}
	if len(partitions) < k {
		panic(fmt.Sprintf("kmeans: partitions has %d slots, need %d", len(partitions), k))
	}
	if len(mins) == 0 || len(mins) != len(maxs) {
		panic(fmt.Sprintf("kmeans: invalid axis count (mins=%d maxs=%d)", len(mins), len(maxs)))
	}
	for d := range mins {
		if len(mins[d]) < n || len(maxs[d]) < n {
			panic(fmt.Sprintf("kmeans: axis %d holds fewer than %d boxes", d, n))
		}
	}

	mark := s.Mark()
	defer s.Release(mark)

	p := newPartitioner(k, mins, maxs, n, s)
	p.seed()

	for i := range indices {
		indices[i] = uint32(i) //nolint:gosec // n fits in uint32
	}

	res := Result{Iterations: MaxIterations}

	for it := 0; it < MaxIterations; it++ {
		p.partition(indices, partitions)
		p.computeMeans(partitions)

		if !p.updateNearest() {
			res.Converged = true
			res.Iterations = it + 1
			break
		}
	}

	res.Groups = countGroups(partitions[:k])
	if res.Groups <= 1 && k > 1 {
		res.Groups = chunk(n, k, partitions)
		res.Fallback = true
	}

	return res
}

type partitioner struct {
	k        int
	boxes    *Boxes
	means    [][]float32 // [axis][mean]
	meanMass []float32   // zero marks a mean whose group emptied
	nearest  []uint32
	dists    []float32
	perm     []uint32
	fbuf     []float32
	ubuf     []uint32
	counts   []uint32
}

func newPartitioner(k int, mins, maxs [][]float32, n int, s *arena.Scratch) *partitioner {
	dims := len(mins)
	p := &partitioner{
		k:     k,
		boxes: newBoxes(mins, maxs, n, s),
		means: make([][]float32, dims),
	}

	for d := range dims {
		p.means[d] = s.Floats(k)
	}
	p.meanMass = s.Floats(k)
	p.nearest = s.Uints(n)
	p.dists = s.Floats(n)
	p.perm = s.Uints(n)
	p.fbuf = s.Floats(n)
	p.ubuf = s.Uints(n)
	p.counts = s.Uints(k)

	return p
}

func (p *partitioner) setMean(box, m int) {
	b := p.boxes
	for d := range b.Dims() {
		p.means[d][m] = b.WeightedCenters[d][box] / b.Masses[box]
	}
}

// seed picks the initial means by farthest-point selection: mean 0 is the
// centroid of box 0 and every further mean is the centroid of the box whose
// nearest-mean distance is currently the largest.
func (p *partitioner) seed() {
	b := p.boxes
	n := b.Count

	p.setMean(0, 0)
	for i := 0; i < n; i++ {
		p.nearest[i] = 0
		p.dists[i] = b.distance(i, p.means, 0)
	}

	candidates := p.perm[:n-1]
	for i := range candidates {
		candidates[i] = uint32(i + 1) //nolint:gosec // n fits in uint32
	}

	for m := 1; m < p.k; m++ {
		live := candidates[:n-m]

		far := 0
		for c := 1; c < len(live); c++ {
			if p.dists[live[c]] > p.dists[live[far]] {
				far = c
			}
		}

		p.setMean(int(live[far]), m)
		live[far] = live[len(live)-1]

		// Ties move to the new mean so that boxes containing other boxes
		// do not pin every seed to the first group.
		mm := uint32(m) //nolint:gosec // m < k <= n
		for i := 0; i < n; i++ {
			if d := b.distance(i, p.means, m); d <= p.dists[i] {
				p.dists[i] = d
				p.nearest[i] = mm
			}
		}
	}

	for m := range p.k {
		p.meanMass[m] = 1
	}
}

// partition stably reorders all per-box arrays (and indices) by nearest mean
// and writes the range ends into partitions.
func (p *partitioner) partition(indices, partitions []uint32) {
	b := p.boxes
	n := b.Count
	counts := p.counts

	clear(counts)
	for i := 0; i < n; i++ {
		counts[p.nearest[i]]++
	}

	var end uint32
	for m := range p.k {
		begin := end
		end += counts[m]
		partitions[m] = end
		counts[m] = begin
	}

	for i := 0; i < n; i++ {
		m := p.nearest[i]
		p.perm[counts[m]] = uint32(i) //nolint:gosec // n fits in uint32
		counts[m]++
	}

	p.gatherFloats(b.Masses)
	p.gatherFloats(p.dists)
	for d := range b.Dims() {
		p.gatherFloats(b.Mins[d])
		p.gatherFloats(b.Maxs[d])
		p.gatherFloats(b.WeightedCenters[d])
	}
	p.gatherUints(p.nearest)
	p.gatherUints(indices)
}

func (p *partitioner) gatherFloats(values []float32) {
	n := p.boxes.Count
	for dst, src := range p.perm[:n] {
		p.fbuf[dst] = values[src]
	}
	copy(values[:n], p.fbuf[:n])
}

func (p *partitioner) gatherUints(values []uint32) {
	n := p.boxes.Count
	for dst, src := range p.perm[:n] {
		p.ubuf[dst] = values[src]
	}
	copy(values[:n], p.ubuf[:n])
}

// computeMeans recomputes every mean as the mass-weighted centroid of its range.
func (p *partitioner) computeMeans(partitions []uint32) {
	b := p.boxes
	begin := 0

	for m := range p.k {
		end := int(partitions[m])
		if begin == end {
			p.meanMass[m] = 0
			continue
		}

		var mass float32
		for _, v := range b.Masses[begin:end] {
			mass += v
		}

		inv := 1 / mass
		for d := range b.Dims() {
			var sum float32
			for _, v := range b.WeightedCenters[d][begin:end] {
				sum += v
			}
			p.means[d][m] = sum * inv
		}

		p.meanMass[m] = mass
		begin = end
	}
}

// updateNearest reassigns every box to its nearest live mean. Ties keep the
// current assignment. It reports whether any assignment changed.
func (p *partitioner) updateNearest() bool {
	b := p.boxes
	changed := false

	for i := 0; i < b.Count; i++ {
		best := p.nearest[i]
		bestDist := b.distance(i, p.means, int(best))

		for m := range p.k {
			mm := uint32(m) //nolint:gosec // m < k
			if mm == best || p.meanMass[m] == 0 {
				continue
			}
			if d := b.distance(i, p.means, m); d < bestDist {
				best, bestDist = mm, d
			}
		}

		if best != p.nearest[i] {
			p.nearest[i] = best
			changed = true
		}
		p.dists[i] = bestDist
	}

	return changed
}

func countGroups(partitions []uint32) int {
	var begin uint32
	groups := 0
	for _, end := range partitions {
		if end != begin {
			groups++
			begin = end
		}
	}
	return groups
}

// chunk splits n boxes into at most k contiguous ranges of equal size.
func chunk(n, k int, partitions []uint32) int {
	per := (n + k - 1) / k
	groups := 0

	for m := range k {
		partitions[m] = uint32(min(per*(m+1), n)) //nolint:gosec // bounded by n
		if per*m < n {
			groups++
		}
	}

	return groups
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
