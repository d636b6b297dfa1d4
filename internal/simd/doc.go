// Package simd provides the per-node kernels of the tree: each one tests or
// measures all children of a node at once and returns a bit mask or fills a
// value array.
//
// Child bounds are stored axis-major ("structure of arrays"): the minimum of
// child i on axis d lives at Mins[d*Stride+i].
//
// # Dispatch
//
// OverlapMask and SlabMask dispatch on the ISA picked at init:
//
//   - generic, neon: blocks of four boxes, skipping blocks with no live bits
//   - avx2, avx512: straight-line overlap tests over 8 or 16 boxes, and a
//     slab test without block skipping
//
// Every kernel family returns the same masks. Set BOXTREE_SIMD to one of
// generic, neon, avx2 or avx512 to force an ISA the CPU supports.
//
// # Operations
//
//   - Masks: OverlapMask, SlabMask, PlaneMask, HalfSpaceMask
//   - Values: SurfaceAreas, PercentOverlap, BoxDistancesSqr, AxialMinMax
package simd
