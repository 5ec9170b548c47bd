package promise

import "sync"

// manualScheduler queues drain requests instead of running them, so
// tests step through queue turns deterministically.
type manualScheduler struct {
	mu     sync.Mutex
	queued []func()
}

func (s *manualScheduler) schedule(drain func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queued = append(s.queued, drain)
}

func (s *manualScheduler) drain() bool {
	s.mu.Lock()
	if len(s.queued) == 0 {
		s.mu.Unlock()
		return false
	}
	next := s.queued[0]
	s.queued = s.queued[1:]
	s.mu.Unlock()

	next()

	return true
}

func (s *manualScheduler) drainAll() (drains int) {
	for s.drain() {
		drains++
	}

	return drains
}

// newTestRuntime returns a runtime driven by a manual scheduler.
func newTestRuntime(opts ...Option) (*Runtime, *manualScheduler) {
	scheduler := &manualScheduler{}
	rt := NewRuntime(append([]Option{WithScheduler(scheduler.schedule)}, opts...)...)

	return rt, scheduler
}
