package arena

import (
	"fmt"

	"github.com/hupe1980/boxtree/internal/mem"
)

// Budget is the number of float32 and uint32 elements a Scratch must hold.
// Every request is rounded up to whole cache lines, so budgets must be
// accumulated with AddFloats/AddUints rather than plain sums.
type Budget struct {
	Floats int
	Uints  int
}

// AddFloats reserves room for one float32 slice of length n.
func (b *Budget) AddFloats(n int) {
	b.Floats += mem.RoundUp(n)
}

// AddUints reserves room for one uint32 slice of length n.
func (b *Budget) AddUints(n int) {
	b.Uints += mem.RoundUp(n)
}

// Plus returns the combined budget of b and o.
func (b Budget) Plus(o Budget) Budget {
	return Budget{Floats: b.Floats + o.Floats, Uints: b.Uints + o.Uints}
}

// Mark is a position in a Scratch that can be released back to.
type Mark struct {
	floats int
	uints  int
}

// Stats tracks scratch usage.
type Stats struct {
	FloatsReserved int // Capacity of the float slab
	UintsReserved  int // Capacity of the uint slab
	FloatsPeak     int // High-water mark of the float slab
	UintsPeak      int // High-water mark of the uint slab
	Allocs         int // Total allocations served
}

// Scratch is a bump allocator over two aligned slabs, acquired once per
// bulk build and dropped as a whole afterwards.
//
// Scratch is not safe for concurrent use.
type Scratch struct {
	floats []float32
	uints  []uint32
	fOff   int
	uOff   int
	stats  Stats
}

// New creates a Scratch sized for the given budget.
func New(b Budget) *Scratch {
	return &Scratch{
		floats: mem.AllocAlignedFloat32(b.Floats),
		uints:  mem.AllocAlignedUint32(b.Uints),
		stats: Stats{
			FloatsReserved: b.Floats,
			UintsReserved:  b.Uints,
		},
	}
}

// Floats returns a zeroed, 64-byte aligned float32 slice of length n.
// It panics if the budget is exhausted; budgets are computed up front, so
// running out is a sizing bug.
func (s *Scratch) Floats(n int) []float32 {
	size := mem.RoundUp(n)
	if s.fOff+size > len(s.floats) {
		panic(fmt.Sprintf("arena: float budget exceeded (%d + %d > %d)", s.fOff, size, len(s.floats)))
	}

	out := s.floats[s.fOff : s.fOff+n : s.fOff+n]
	clear(out)

	s.fOff += size
	s.stats.FloatsPeak = max(s.stats.FloatsPeak, s.fOff)
	s.stats.Allocs++

	return out
}

// Uints returns a zeroed, 64-byte aligned uint32 slice of length n.
func (s *Scratch) Uints(n int) []uint32 {
	size := mem.RoundUp(n)
	if s.uOff+size > len(s.uints) {
		panic(fmt.Sprintf("arena: uint budget exceeded (%d + %d > %d)", s.uOff, size, len(s.uints)))
	}

	out := s.uints[s.uOff : s.uOff+n : s.uOff+n]
	clear(out)

	s.uOff += size
	s.stats.UintsPeak = max(s.stats.UintsPeak, s.uOff)
	s.stats.Allocs++

	return out
}

// Mark returns the current allocation position.
func (s *Scratch) Mark() Mark {
	return Mark{floats: s.fOff, uints: s.uOff}
}

// Release rewinds the allocator to m. Slices handed out after m must not be used afterwards.
func (s *Scratch) Release(m Mark) {
	s.fOff = m.floats
	s.uOff = m.uints
}

// Stats returns usage statistics.
func (s *Scratch) Stats() Stats {
	return s.stats
}
