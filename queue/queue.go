// Package queue implements the job queue driving deferred promise work:
// an ordered buffer of zero-argument jobs, drained in FIFO order one turn
// at a time by an external "run soon" scheduling primitive.
package queue

import (
	"sync"

	"go.uber.org/zap"
)

// Job is a deferred zero-argument unit of work.
type Job func()

// ScheduleFunc requests that drain runs as soon as possible after the
// current synchronous work completes. The queue issues at most one request
// per accumulation cycle.
type ScheduleFunc func(drain func())

type Option func(*Queue)

// WithSchedule replaces the default scheduling primitive (a fresh
// goroutine per drain). Tests use this to drive drains deterministically.
func WithSchedule(schedule ScheduleFunc) Option {
	return func(q *Queue) {
		q.schedule = schedule
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// Queue buffers jobs between drains. It has two phases: accumulating
// (jobs pushed, no drain running) and draining. Jobs enqueued while a
// drain is running are not spliced into it; they run on a later drain.
type Queue struct {
	mu        sync.Mutex
	jobs      []Job
	scheduled bool
	draining  bool
	schedule  ScheduleFunc
	logger    *zap.Logger
}

func New(opts ...Option) *Queue {
	q := &Queue{
		schedule: func(drain func()) { go drain() },
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Enqueue appends job to the buffer and, unless a drain request is
// already in flight, issues exactly one.
func (q *Queue) Enqueue(job Job) {
	if job == nil {
		panic("queue: cannot enqueue a nil job")
	}

	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	request := !q.scheduled
	q.scheduled = true
	buffered := len(q.jobs)
	q.mu.Unlock()

	if request {
		q.logger.Debug("drain requested", zap.Int("buffered", buffered))
		q.schedule(q.Run)
	}
}

// Run drains the jobs buffered so far, strictly in FIFO order, then
// returns. Calling Run while a drain is in progress is a no-op: the
// in-progress drain picks the buffered jobs up when it finishes.
func (q *Queue) Run() {
	q.mu.Lock()
	q.scheduled = false
	if q.draining || len(q.jobs) == 0 {
		q.mu.Unlock()
		return
	}
	q.draining = true
	batch := q.jobs
	q.jobs = nil
	q.mu.Unlock()

	for _, job := range batch {
		q.runJob(job)
	}

	q.mu.Lock()
	q.draining = false
	// A request consumed by the re-entrancy guard above leaves its jobs
	// buffered with nothing in flight; re-issue for them here.
	request := len(q.jobs) > 0 && !q.scheduled
	if request {
		q.scheduled = true
	}
	q.mu.Unlock()

	q.logger.Debug("drain finished", zap.Int("jobs", len(batch)))

	if request {
		q.schedule(q.Run)
	}
}

// runJob isolates job panics so a single failing job cannot abort the
// remaining jobs of the drain.
func (q *Queue) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("job panicked during drain", zap.Any("panic", r))
		}
	}()

	job()
}
