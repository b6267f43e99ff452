package scheduler

import "sync"

// CycleState is the scheduler-owned, process-lifetime bookkeeping: cycle
// counters, the busy flag that prevents overlapping cycles, and the
// shutdown flag polled between sources. It is an explicit value owned by
// the Scheduler so the daemon loop stays testable in isolation.
type CycleState struct {
	mu           sync.Mutex
	cycle        int // completed cycles since process start
	sinceRecycle int // completed cycles since the last session recycle
	busy         bool
	shuttingDown bool
}

// TryBegin claims the busy flag for a new cycle. Returns the 1-based cycle
// number and false when a cycle is already in flight.
func (s *CycleState) TryBegin() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return 0, false
	}
	s.busy = true
	return s.cycle + 1, true
}

// End releases the busy flag and counts the cycle as completed.
func (s *CycleState) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.cycle++
	s.sinceRecycle++
}

// ShouldRecycle reports whether the shared session is due for recycling at
// the start of the next cycle: true once threshold cycles have completed
// since the last recycle.
func (s *CycleState) ShouldRecycle(threshold int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sinceRecycle >= threshold
}

// MarkRecycled resets the recycle counter.
func (s *CycleState) MarkRecycled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinceRecycle = 0
}

// RequestShutdown raises the shutdown flag. Checked between sources, so an
// in-progress source runs to completion first.
func (s *CycleState) RequestShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuttingDown = true
}

// ShuttingDown reports whether shutdown has been requested.
func (s *CycleState) ShuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuttingDown
}

// Busy reports whether a cycle is currently in flight.
func (s *CycleState) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Completed returns the number of completed cycles.
func (s *CycleState) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle
}
