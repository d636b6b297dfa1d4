package simd

import "strings"

// ISA names the kernel family the mask functions dispatch to.
type ISA uint8

const (
	// Generic walks children in blocks of four with per-box branches.
	Generic ISA = iota
	// NEON uses the Generic kernels; 128-bit registers hold four floats.
	NEON
	// AVX2 uses the unrolled kernels eight boxes at a time.
	AVX2
	// AVX512 uses the unrolled kernels sixteen boxes at a time.
	AVX512
)

var isaNames = [...]string{
	Generic: "generic",
	NEON:    "neon",
	AVX2:    "avx2",
	AVX512:  "avx512",
}

func (i ISA) String() string {
	if int(i) < len(isaNames) {
		return isaNames[i]
	}
	return "unknown"
}

// ParseISA maps a case-insensitive ISA name to its value.
func ParseISA(s string) (ISA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range isaNames {
		if name == s {
			return ISA(i), true //nolint:gosec // i < len(isaNames)
		}
	}
	return Generic, false
}

// EnvOverride names the environment variable that forces an ISA.
const EnvOverride = "BOXTREE_SIMD"

// cpuFeatures is what the host CPU offers the kernels.
type cpuFeatures struct {
	neon   bool
	avx2   bool // with FMA
	avx512 bool // F and BW
}

func (f cpuFeatures) supports(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return f.neon
	case AVX2:
		return f.avx2
	case AVX512:
		return f.avx512
	default:
		return false
	}
}

func (f cpuFeatures) widest() ISA {
	switch {
	case f.avx512:
		return AVX512
	case f.avx2:
		return AVX2
	case f.neon:
		return NEON
	default:
		return Generic
	}
}

// selectISA returns the override when it names an ISA the CPU supports,
// and the widest supported ISA otherwise. The bool reports whether the
// override was taken.
func selectISA(f cpuFeatures, override string) (ISA, bool) {
	if isa, ok := ParseISA(override); ok && f.supports(isa) {
		return isa, true
	}
	return f.widest(), false
}

// Set once by init in detect.go.
var (
	activeISA  ISA
	overridden bool
	lanes      = 4

	overlapMask = overlapBlocked
	slabMask    = slabBlocked
)

// setISA switches the block width and the mask kernels together.
func setISA(isa ISA) {
	activeISA = isa
	switch isa {
	case AVX512:
		lanes, overlapMask, slabMask = 16, overlapUnrolled(16), slabBranchless
	case AVX2:
		lanes, overlapMask, slabMask = 8, overlapUnrolled(8), slabBranchless
	default:
		lanes, overlapMask, slabMask = 4, overlapBlocked, slabBlocked
	}
}

// ActiveISA returns the ISA the kernels dispatch to.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden reports whether BOXTREE_SIMD selected the active ISA.
func IsOverridden() bool {
	return overridden
}

// Lanes returns how many boxes a kernel block covers.
func Lanes() int {
	return lanes
}
