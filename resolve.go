package promise

import (
	"fmt"
	"sync/atomic"
)

// resolvingPair returns the resolve/reject functions bound to p. Both
// close over one settle-once flag: the first call wins and the flag is
// flipped before anything else, so re-entrant calls made while the
// winner is still working are already no-ops.
func (rt *Runtime) resolvingPair(p *Promise) (Resolver, Rejector) {
	var settled atomic.Bool

	resolve := func(value any) {
		if !settled.CompareAndSwap(false, true) {
			return
		}
		rt.resolveValue(p, value)
	}

	reject := func(reason error) {
		if !settled.CompareAndSwap(false, true) {
			return
		}
		p.reject(reason)
	}

	return resolve, reject
}

// resolveValue runs the resolution algorithm for p against value:
// self-resolution rejects, plain values fulfill directly, and thenables
// are adopted on a later drain through a fresh resolving pair. The
// queued indirection keeps chained thenables from recursing
// synchronously.
func (rt *Runtime) resolveValue(p *Promise, value any) {
	if source, ok := value.(*Promise); ok && source == p {
		p.reject(ErrSelfResolution)
		return
	}

	thenable, ok := asThenable(value)
	if !ok {
		p.fulfill(value)
		return
	}

	rt.jobs.Enqueue(func() {
		resolve, reject := rt.resolvingPair(p)

		defer func() {
			if r := recover(); r != nil {
				reject(recoveredError(r))
			}
		}()

		thenable.Then(resolve, reject)
	})
}

// asThenable is the single adoption probe of the resolution algorithm:
// promises from this package and foreign Thenable values are adoptable,
// everything else is a plain value.
func asThenable(value any) (Thenable, bool) {
	switch v := value.(type) {
	case *Promise:
		return thenableFunc(v.subscribe), true
	case Thenable:
		return v, true
	}

	return nil, false
}

type thenableFunc func(resolve Resolver, reject Rejector)

func (f thenableFunc) Then(resolve Resolver, reject Rejector) {
	f(resolve, reject)
}

// runRecovered invokes a handler, converting a panic into the error
// return so it lands in the rejection channel instead of escaping the
// job runner.
func runRecovered(handler func(any) (any, error), in any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, recoveredError(r)
		}
	}()

	return handler(in)
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}

	return fmt.Errorf("promise: panic: %v", r)
}
