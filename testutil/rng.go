package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Float32Range returns a pseudo-random number in [minVal, maxVal).
func (r *RNG) Float32Range(minVal, maxVal float32) float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVal + r.rand.Float32()*(maxVal-minVal)
}

// Shuffle pseudo-randomizes the order of n elements.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(n, swap)
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// Point returns a random point with coordinates in [minVal, maxVal).
func (r *RNG) Point(dims int, minVal, maxVal float32) []float32 {
	p := make([]float32, dims)
	r.FillUniformRange(p, minVal, maxVal)
	return p
}

// Box returns a random box whose minimum corner lies in [minVal, maxVal)
// and whose extent on every axis is in [0, maxExtent).
func (r *RNG) Box(dims int, minVal, maxVal, maxExtent float32) Box {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boxLocked(dims, minVal, maxVal, maxExtent)
}

func (r *RNG) boxLocked(dims int, minVal, maxVal, maxExtent float32) Box {
	b := Box{Min: make([]float32, dims), Max: make([]float32, dims)}
	span := maxVal - minVal
	for d := range dims {
		b.Min[d] = minVal + r.rand.Float32()*span
		b.Max[d] = b.Min[d] + r.rand.Float32()*maxExtent
	}
	return b
}

// Boxes generates num random boxes (see Box).
func (r *RNG) Boxes(num, dims int, minVal, maxVal, maxExtent float32) []Box {
	r.mu.Lock()
	defer r.mu.Unlock()

	boxes := make([]Box, num)
	for i := range boxes {
		boxes[i] = r.boxLocked(dims, minVal, maxVal, maxExtent)
	}
	return boxes
}

// ClusteredBoxes generates perCluster boxes around every center. Box centers
// deviate from their cluster center by at most spread per axis and box
// extents are below extent. The returned labels give the cluster of each box.
func (r *RNG) ClusteredBoxes(centers [][]float32, perCluster int, spread, extent float32) ([]Box, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	boxes := make([]Box, 0, len(centers)*perCluster)
	labels := make([]int, 0, len(centers)*perCluster)

	for c, center := range centers {
		dims := len(center)
		for range perCluster {
			b := Box{Min: make([]float32, dims), Max: make([]float32, dims)}
			for d := range dims {
				mid := center[d] + (r.rand.Float32()*2-1)*spread
				half := r.rand.Float32() * extent * 0.5
				b.Min[d] = mid - half
				b.Max[d] = mid + half
			}
			boxes = append(boxes, b)
			labels = append(labels, c)
		}
	}

	return boxes, labels
}
