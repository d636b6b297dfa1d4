// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides 64-byte aligned slabs so that per-child bound arrays and scratch
// buffers start on a cache line. Kernels in internal/simd process child
// bounds in fixed-width blocks and never straddle two lines for small fanouts.
package mem
