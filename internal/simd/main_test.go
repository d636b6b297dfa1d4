package simd

import (
	"fmt"
	"os"
	"runtime"
	"testing"
)

// TestMain prints which kernels the package dispatches to, so CI logs show
// whether BOXTREE_SIMD took effect.
func TestMain(m *testing.M) {
	fmt.Printf("simd: %s/%s isa=%s override=%v (%s=%q) lanes=%d\n",
		runtime.GOOS, runtime.GOARCH, ActiveISA(), IsOverridden(), EnvOverride, os.Getenv(EnvOverride), Lanes())
	fmt.Printf("simd: host neon=%v avx2=%v avx512=%v\n", hostFeatures().neon, hostFeatures().avx2, hostFeatures().avx512)

	os.Exit(m.Run())
}
