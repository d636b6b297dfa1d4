// Package testutil provides testing utilities for boxtree.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random boxes and brute-force oracles
// that every tree query and pair enumeration can be checked against.
//
// # Random Box Generation
//
//	rng := testutil.NewRNG(seed)
//	boxes := rng.Boxes(1000, 3, -100, 100, 5)
//
// # Ground Truth
//
//	want := testutil.BruteRange(boxes, qMin, qMax, eps)
//	pairs := testutil.BruteSelfPairs(boxes, eps)
package testutil
