package mem

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	sizes := []int{1, 10, 63, 64, 65, 100, 1024}

	for _, size := range sizes {
		buf := AllocAligned(size)
		assert.Len(t, buf, size)

		addr := uintptr(unsafe.Pointer(&buf[0]))
		assert.Equal(t, uintptr(0), addr%Alignment, "Address %d should be aligned to %d for size %d", addr, Alignment, size)
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestAllocAlignedFloat32(t *testing.T) {
	sizes := []int{1, 10, 16, 17, 100, 1024}

	for _, size := range sizes {
		buf := AllocAlignedFloat32(size)
		assert.Len(t, buf, size)

		addr := uintptr(unsafe.Pointer(&buf[0]))
		assert.Equal(t, uintptr(0), addr%Alignment, "Address %d should be aligned to %d for size %d", addr, Alignment, size)

		for _, v := range buf {
			assert.Zero(t, v)
		}
	}

	assert.Nil(t, AllocAlignedFloat32(0))
	assert.Nil(t, AllocAlignedFloat32(-1))
}

func TestAllocAlignedUint32(t *testing.T) {
	sizes := []int{1, 3, 16, 33, 512}

	for _, size := range sizes {
		buf := AllocAlignedUint32(size)
		assert.Len(t, buf, size)

		addr := uintptr(unsafe.Pointer(&buf[0]))
		assert.Equal(t, uintptr(0), addr%Alignment)
	}

	assert.Nil(t, AllocAlignedUint32(0))
}

func TestRoundUp(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{1, 16},
		{16, 16},
		{17, 32},
		{100, 112},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundUp(tt.in), "RoundUp(%d)", tt.in)
	}
}

func BenchmarkAllocAlignedFloat32(b *testing.B) {
	sizes := []int{16, 64, 256, 1024}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = AllocAlignedFloat32(size)
			}
		})
	}
}
