package layout

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/score"
)

// Scheduler coalesces staff-changed notifications into a single relayout.
// Layout itself is single threaded: every access to the layout, or to the
// segments it reads, must go through Do so it is serialised with the
// debounced relayout.
type Scheduler struct {
	mu        sync.Mutex
	layout    *HLayout
	pending   map[score.StaffID]*score.Staff
	debounced func(f func())
	passes    int
}

func NewScheduler(h *HLayout, delay time.Duration) *Scheduler {
	return &Scheduler{
		layout:    h,
		pending:   make(map[score.StaffID]*score.Staff),
		debounced: debounce.New(delay),
	}
}

// StaffChanged marks a staff for rescanning and schedules a relayout.
func (s *Scheduler) StaffChanged(staff *score.Staff) {
	s.mu.Lock()
	s.pending[staff.ID] = staff
	s.mu.Unlock()
	s.debounced(s.Flush)
}

// Flush runs any pending relayout now.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}

func (s *Scheduler) flushLocked() {
	if len(s.pending) == 0 {
		return
	}
	// Other staves' bars carry widths reconciled against the old content,
	// so every staff is rescanned, not just the changed ones.
	changed := len(s.pending)
	s.layout.LayoutAll()
	s.pending = make(map[score.StaffID]*score.Staff)
	s.passes++
	logging.Layout.Debugf("relayout pass %d for %d changed staves, total width %d",
		s.passes, changed, s.layout.TotalWidth())
}

// Do runs f with exclusive access to the layout.
func (s *Scheduler) Do(f func(h *HLayout)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.layout)
}

// Current flushes pending work and runs f against the up to date layout.
func (s *Scheduler) Current(f func(h *HLayout)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	f(s.layout)
}

func (s *Scheduler) Passes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}
