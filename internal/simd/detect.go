package simd

import (
	"os"

	"golang.org/x/sys/cpu"
)

// hostFeatures reads x/sys/cpu; the flags of other architectures stay false.
func hostFeatures() cpuFeatures {
	return cpuFeatures{
		neon:   cpu.ARM64.HasASIMD,
		avx2:   cpu.X86.HasAVX2 && cpu.X86.HasFMA,
		avx512: cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW,
	}
}

func init() {
	isa, ok := selectISA(hostFeatures(), os.Getenv(EnvOverride))
	overridden = ok
	setISA(isa)
}
