// Package promise implements JavaScript-style promises on top of an
// explicit job queue: continuations registered with Then never run in
// the turn that scheduled them, and always run in registration order.
package promise

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v2"
	"go.uber.org/zap"

	"github.com/asyncq/go-promise/queue"
)

// Runtime owns the job queue shared by every promise it creates, and
// tracks rejected promises that nothing has attached a handler to.
type Runtime struct {
	jobs        *queue.Queue
	logger      *zap.Logger
	schedule    queue.ScheduleFunc
	nextID      atomic.Uint64
	unhandled   *xsync.MapOf[uint64, error]
	onUnhandled func(reason error)
}

type Option func(*Runtime)

func WithLogger(logger *zap.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithScheduler replaces the queue's "run soon" primitive. The default
// runs each drain on a fresh goroutine.
func WithScheduler(schedule queue.ScheduleFunc) Option {
	return func(rt *Runtime) {
		rt.schedule = schedule
	}
}

// WithUnhandledRejectionHandler replaces the default report (a warning
// log) for rejected promises that still have no rejection handler on
// the drain after they settle.
func WithUnhandledRejectionHandler(fn func(reason error)) Option {
	return func(rt *Runtime) {
		rt.onUnhandled = fn
	}
}

func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		logger:    zap.NewNop(),
		unhandled: xsync.NewIntegerMapOf[uint64, error](),
	}

	for _, opt := range opts {
		opt(rt)
	}

	qopts := []queue.Option{queue.WithLogger(rt.logger.Named("queue"))}
	if rt.schedule != nil {
		qopts = append(qopts, queue.WithSchedule(rt.schedule))
	}
	rt.jobs = queue.New(qopts...)

	return rt
}

// New constructs a pending promise and synchronously invokes executor
// with its resolving pair. A panicking executor rejects the promise; it
// never leaves it permanently pending.
func (rt *Runtime) New(executor Executor) *Promise {
	if executor == nil {
		panic("promise: executor must not be nil")
	}

	p := rt.newPending()
	resolve, reject := rt.resolvingPair(p)

	func() {
		defer func() {
			if r := recover(); r != nil {
				reject(recoveredError(r))
			}
		}()

		executor(resolve, reject)
	}()

	return p
}

func (rt *Runtime) newPending() *Promise {
	return &Promise{
		rt:    rt,
		id:    rt.nextID.Add(1),
		state: StatePending,
	}
}
