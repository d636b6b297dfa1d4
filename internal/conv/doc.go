// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between Go's int and the fixed-width index types used for
// box permutations (uint32) and node references (int32).
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices below the fanout), use direct type casts instead to avoid overhead.
package conv
