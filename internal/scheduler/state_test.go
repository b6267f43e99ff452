package scheduler

import "testing"

func TestCycleStateOverlap(t *testing.T) {
	var s CycleState

	n, ok := s.TryBegin()
	if !ok || n != 1 {
		t.Fatalf("TryBegin = (%d, %v), want (1, true)", n, ok)
	}
	if _, ok := s.TryBegin(); ok {
		t.Fatal("second TryBegin succeeded while a cycle is in flight")
	}
	s.End()
	if n, ok := s.TryBegin(); !ok || n != 2 {
		t.Fatalf("after End, TryBegin = (%d, %v), want (2, true)", n, ok)
	}
}

// With a threshold of 3, the session survives cycles 1-3 and is replaced at
// the start of cycle 4.
func TestRecycleThreshold(t *testing.T) {
	var s CycleState
	const threshold = 3

	recycledAt := 0
	for cycle := 1; cycle <= 4; cycle++ {
		if _, ok := s.TryBegin(); !ok {
			t.Fatalf("cycle %d could not begin", cycle)
		}
		if s.ShouldRecycle(threshold) {
			if recycledAt != 0 {
				t.Fatalf("second recycle at cycle %d", cycle)
			}
			recycledAt = cycle
			s.MarkRecycled()
		}
		s.End()
	}

	if recycledAt != 4 {
		t.Fatalf("recycled at cycle %d, want 4", recycledAt)
	}
}

func TestRecycleCounterResets(t *testing.T) {
	var s CycleState
	const threshold = 2

	var recycles []int
	for cycle := 1; cycle <= 7; cycle++ {
		s.TryBegin()
		if s.ShouldRecycle(threshold) {
			recycles = append(recycles, cycle)
			s.MarkRecycled()
		}
		s.End()
	}

	want := []int{3, 5, 7}
	if len(recycles) != len(want) {
		t.Fatalf("recycled at %v, want %v", recycles, want)
	}
	for i := range want {
		if recycles[i] != want[i] {
			t.Fatalf("recycled at %v, want %v", recycles, want)
		}
	}
}

func TestShutdownFlag(t *testing.T) {
	var s CycleState
	if s.ShuttingDown() {
		t.Fatal("fresh state reports shutting down")
	}
	s.RequestShutdown()
	if !s.ShuttingDown() {
		t.Fatal("shutdown flag not raised")
	}
	// Shutdown does not prevent an already-claimed cycle from finishing.
	if _, ok := s.TryBegin(); !ok {
		t.Fatal("TryBegin blocked by shutdown flag")
	}
	s.End()
	if s.Completed() != 1 {
		t.Fatalf("Completed = %d, want 1", s.Completed())
	}
}
