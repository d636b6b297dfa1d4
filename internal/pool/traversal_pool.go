// Package pool provides object pools for allocation-free tree traversals.
// Uses sync.Pool for automatic memory reuse and bitsets for visited tracking.
package pool

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

const (
	// DefaultStackCapacity is the initial capacity of the node stack.
	DefaultStackCapacity = 256

	// DefaultFrameCapacity is the initial capacity of the pair-frame stack.
	DefaultFrameCapacity = 256

	// DefaultMaxNodes is the initial capacity of the visited bitset.
	DefaultMaxNodes = 4096

	// maxRetainedFrames bounds what a context keeps when returned to the pool.
	maxRetainedFrames = 1 << 16
)

// Frame is one pending node pair of a dual-tree traversal. The bounds of
// both nodes travel with the frame in the context's box buffer.
type Frame struct {
	LHS int32
	RHS int32
}

// TraversalContext contains reusable buffers for one traversal.
// It is not safe for concurrent use.
type TraversalContext struct {
	// Nodes is the node stack of single-tree traversals.
	Nodes []int32

	frames []Frame
	boxes  []float32 // 4*dims floats per frame: lhsMin, lhsMax, rhsMin, rhsMax
	dims   int

	// Current holds the boxes of the frame returned by the last PopFrame.
	Current []float32

	visited  *bitset.BitSet
	maxNodes uint32
}

var traversalPool = sync.Pool{
	New: func() any {
		return &TraversalContext{
			Nodes:    make([]int32, 0, DefaultStackCapacity),
			frames:   make([]Frame, 0, DefaultFrameCapacity),
			visited:  bitset.New(DefaultMaxNodes),
			maxNodes: DefaultMaxNodes,
		}
	},
}

// Get retrieves a TraversalContext from the pool, reset for boxes of dims axes.
func Get(dims int) *TraversalContext {
	ctx := traversalPool.Get().(*TraversalContext)
	ctx.Reset(dims)
	return ctx
}

// Put returns a TraversalContext to the pool for reuse.
func Put(ctx *TraversalContext) {
	if cap(ctx.frames) > maxRetainedFrames {
		ctx.frames = make([]Frame, 0, DefaultFrameCapacity)
		ctx.boxes = nil
	}
	if ctx.visited.Len() > DefaultMaxNodes*64 {
		ctx.visited = bitset.New(DefaultMaxNodes)
		ctx.maxNodes = DefaultMaxNodes
	}
	traversalPool.Put(ctx)
}

// Reset clears the context for a traversal over boxes of dims axes.
func (c *TraversalContext) Reset(dims int) {
	c.Nodes = c.Nodes[:0]
	c.frames = c.frames[:0]
	c.boxes = c.boxes[:0]
	c.dims = dims
	if cap(c.Current) < 4*dims {
		c.Current = make([]float32, 4*dims)
	}
	c.Current = c.Current[:4*dims]
	c.visited.ClearAll()
}

// Push pushes a node reference.
func (c *TraversalContext) Push(ref int32) {
	c.Nodes = append(c.Nodes, ref)
}

// Pop pops a node reference. ok is false when the stack is empty.
func (c *TraversalContext) Pop() (ref int32, ok bool) {
	n := len(c.Nodes)
	if n == 0 {
		return 0, false
	}
	ref = c.Nodes[n-1]
	c.Nodes = c.Nodes[:n-1]
	return ref, true
}

// PushFrame pushes a node pair together with both node bounds.
func (c *TraversalContext) PushFrame(f Frame, lhsMin, lhsMax, rhsMin, rhsMax []float32) {
	c.frames = append(c.frames, f)
	c.boxes = append(c.boxes, lhsMin[:c.dims]...)
	c.boxes = append(c.boxes, lhsMax[:c.dims]...)
	c.boxes = append(c.boxes, rhsMin[:c.dims]...)
	c.boxes = append(c.boxes, rhsMax[:c.dims]...)
}

// PopFrame pops a node pair and copies its bounds into Current, laid out as
// lhsMin, lhsMax, rhsMin, rhsMax. ok is false when no frame is left.
func (c *TraversalContext) PopFrame() (f Frame, ok bool) {
	n := len(c.frames)
	if n == 0 {
		return Frame{}, false
	}
	f = c.frames[n-1]
	c.frames = c.frames[:n-1]

	off := len(c.boxes) - 4*c.dims
	copy(c.Current, c.boxes[off:])
	c.boxes = c.boxes[:off]

	return f, true
}

// CurrentBox returns one of the boxes of the frame last popped:
// side 0 is lhs, side 1 is rhs.
func (c *TraversalContext) CurrentBox(side int) (mins, maxs []float32) {
	off := side * 2 * c.dims
	return c.Current[off : off+c.dims], c.Current[off+c.dims : off+2*c.dims]
}

// Pending returns the number of frames on the stack.
func (c *TraversalContext) Pending() int {
	return len(c.frames)
}

// EnsureVisitedCapacity ensures the visited bitset can track up to ref.
func (c *TraversalContext) EnsureVisitedCapacity(ref uint32) {
	if ref >= c.maxNodes {
		newSize := max(ref+1, c.maxNodes*2)
		grown := bitset.New(uint(newSize))
		grown.InPlaceUnion(c.visited)
		c.visited = grown
		c.maxNodes = newSize
	}
}

// MarkVisited marks a node as visited.
// Returns true if the node was already visited, false otherwise.
func (c *TraversalContext) MarkVisited(ref uint32) bool {
	c.EnsureVisitedCapacity(ref)
	if c.visited.Test(uint(ref)) {
		return true
	}
	c.visited.Set(uint(ref))
	return false
}

// IsVisited checks if a node has been visited.
func (c *TraversalContext) IsVisited(ref uint32) bool {
	if ref >= c.maxNodes {
		return false
	}
	return c.visited.Test(uint(ref))
}

// TraversalStats describes the buffers of a TraversalContext.
type TraversalStats struct {
	VisitedCapacity uint32
	VisitedCount    uint
	NodeStackCap    int
	FrameStackCap   int
}

// Stats returns current statistics about this TraversalContext.
func (c *TraversalContext) Stats() TraversalStats {
	return TraversalStats{
		VisitedCapacity: c.maxNodes,
		VisitedCount:    c.visited.Count(),
		NodeStackCap:    cap(c.Nodes),
		FrameStackCap:   cap(c.frames),
	}
}
