// Package arena provides the scratch allocator used while bulk-loading trees.
//
// A bulk load (and every Split, which is a bulk load of one subtree) needs a
// working set proportional to the number of boxes: staged per-axis bounds,
// partitioner state and permutation buffers. The size is known before the
// build starts, so one Scratch is acquired per top-level call and nested
// steps rewind it with Mark/Release instead of freeing piecemeal.
//
// # Safety
//
// Exceeding the precomputed Budget panics. Slices returned after a Mark are
// invalid once the Scratch is released back to that Mark.
package arena
