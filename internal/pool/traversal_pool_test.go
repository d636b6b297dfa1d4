package pool

import (
	"sync"
	"testing"
)

func TestTraversalContext_NodeStack(t *testing.T) {
	ctx := Get(3)
	defer Put(ctx)

	if _, ok := ctx.Pop(); ok {
		t.Fatal("new context should have an empty stack")
	}

	ctx.Push(1)
	ctx.Push(2)

	if ref, ok := ctx.Pop(); !ok || ref != 2 {
		t.Errorf("expected 2, got %d (ok=%v)", ref, ok)
	}
	if ref, ok := ctx.Pop(); !ok || ref != 1 {
		t.Errorf("expected 1, got %d (ok=%v)", ref, ok)
	}
}

func TestTraversalContext_Frames(t *testing.T) {
	ctx := Get(2)
	defer Put(ctx)

	ctx.PushFrame(Frame{LHS: 1, RHS: 2}, []float32{0, 1}, []float32{2, 3}, []float32{4, 5}, []float32{6, 7})
	ctx.PushFrame(Frame{LHS: 3, RHS: 4}, []float32{10, 11}, []float32{12, 13}, []float32{14, 15}, []float32{16, 17})

	if ctx.Pending() != 2 {
		t.Fatalf("expected 2 pending frames, got %d", ctx.Pending())
	}

	f, ok := ctx.PopFrame()
	if !ok || f.LHS != 3 || f.RHS != 4 {
		t.Fatalf("unexpected frame %+v", f)
	}

	// Pushing after a pop must not clobber the popped boxes.
	ctx.PushFrame(Frame{LHS: 5, RHS: 6}, []float32{20, 21}, []float32{22, 23}, []float32{24, 25}, []float32{26, 27})

	mins, maxs := ctx.CurrentBox(1)
	if mins[0] != 14 || mins[1] != 15 || maxs[0] != 16 || maxs[1] != 17 {
		t.Errorf("rhs box clobbered: %v %v", mins, maxs)
	}

	ctx.PopFrame()
	f, _ = ctx.PopFrame()
	mins, maxs = ctx.CurrentBox(0)
	if f.LHS != 1 || mins[0] != 0 || maxs[1] != 3 {
		t.Errorf("unexpected bottom frame %+v %v %v", f, mins, maxs)
	}

	if _, ok := ctx.PopFrame(); ok {
		t.Error("stack should be empty")
	}
}

func TestTraversalContext_Visited(t *testing.T) {
	ctx := Get(3)
	defer Put(ctx)

	if ctx.MarkVisited(0) {
		t.Error("First visit should return false")
	}
	if !ctx.MarkVisited(0) {
		t.Error("Second visit should return true")
	}

	large := uint32(DefaultMaxNodes * 3)
	ctx.MarkVisited(large)

	if !ctx.IsVisited(0) || !ctx.IsVisited(large) {
		t.Error("marks should survive growth")
	}
	if ctx.Stats().VisitedCapacity <= large {
		t.Errorf("capacity should exceed %d", large)
	}
}

func TestTraversalContext_Reset(t *testing.T) {
	ctx := Get(3)
	ctx.Push(7)
	ctx.MarkVisited(9)
	ctx.PushFrame(Frame{}, make([]float32, 3), make([]float32, 3), make([]float32, 3), make([]float32, 3))
	Put(ctx)

	ctx = Get(4)
	defer Put(ctx)

	if len(ctx.Nodes) != 0 || ctx.Pending() != 0 {
		t.Error("Pooled context should be reset")
	}
	if ctx.IsVisited(9) {
		t.Error("Pooled context should have no visited nodes")
	}
	if len(ctx.Current) != 16 {
		t.Errorf("Current should hold 4*dims floats, got %d", len(ctx.Current))
	}
}

func TestTraversalContext_Concurrent(t *testing.T) {
	const numGoroutines = 32
	const opsPerGoroutine = 200

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()

			for range opsPerGoroutine {
				ctx := Get(3)
				for k := range 50 {
					ctx.Push(int32(k))
					ctx.MarkVisited(uint32(k))
				}

				if ctx.Stats().VisitedCount != 50 {
					t.Errorf("Expected 50 visited, got %d", ctx.Stats().VisitedCount)
				}

				Put(ctx)
			}
		}()
	}

	wg.Wait()
}

func BenchmarkTraversalContext_Get(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		ctx := Get(3)
		Put(ctx)
	}
}
