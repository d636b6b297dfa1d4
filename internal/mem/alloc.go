package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of every slab (one cache line, AVX-512 friendly).
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (uintptr(ptr) & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AllocAlignedFloat32 allocates a zeroed float32 slice of the given length with 64-byte alignment.
func AllocAlignedFloat32(n int) []float32 {
	return allocAligned[float32](n)
}

// AllocAlignedUint32 allocates a zeroed uint32 slice of the given length with 64-byte alignment.
func AllocAlignedUint32(n int) []uint32 {
	return allocAligned[uint32](n)
}

// RoundUp rounds n up to the number of 4-byte elements that fill whole cache lines.
func RoundUp(n int) int {
	const perLine = Alignment / 4
	return (n + perLine - 1) &^ (perLine - 1)
}

func allocAligned[E float32 | uint32](n int) []E {
	if n <= 0 {
		return nil
	}

	var zero E
	byteSlice := AllocAligned(n * int(unsafe.Sizeof(zero)))

	// AllocAligned guarantees 64-byte alignment, which also satisfies 4-byte element alignment.
	ptr := unsafe.Pointer(&byteSlice[0]) //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*E)(ptr), n)    //nolint:gosec // unsafe is required for memory alignment
}
