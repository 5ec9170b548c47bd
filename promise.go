package promise

import "sync"

// Promise represents the eventual result of a deferred computation. It
// starts pending and settles exactly once, either fulfilled with a value
// or rejected with a reason. Settled promises retain no reaction lists.
type Promise struct {
	rt *Runtime
	id uint64

	mu               sync.Mutex
	state            State
	value            any
	err              error
	fulfillReactions []*reaction
	rejectReactions  []*reaction
}

// reaction pairs a handler with the resolving pair of the derived
// promise it must settle. Created once per Then call, consumed exactly
// once when its job runs.
type reaction struct {
	handler func(in any) (any, error)
	resolve Resolver
	reject  Rejector
}

// job defers the reaction against the settled input: handler failure
// (returned error or panic) rejects the derived promise, anything else
// resolves it through the full resolution algorithm.
func (r *reaction) job(in any) func() {
	return func() {
		out, err := runRecovered(r.handler, in)
		if err != nil {
			r.reject(err)
			return
		}
		r.resolve(out)
	}
}

func (p *Promise) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Then registers reactions for the settlement of p and returns the
// derived promise they settle. It returns synchronously in every state;
// the handlers run on a later queue drain, never in the current turn.
// A nil onFulfilled passes the value through, a nil onRejected
// re-rejects with the same reason.
func (p *Promise) Then(onFulfilled FulfillHandler, onRejected RejectHandler) *Promise {
	derived := p.rt.newPending()
	resolve, reject := p.rt.resolvingPair(derived)

	if onFulfilled == nil {
		onFulfilled = func(value any) (any, error) { return value, nil }
	}
	if onRejected == nil {
		onRejected = func(reason error) (any, error) { return nil, reason }
	}

	p.register(
		&reaction{
			handler: func(in any) (any, error) { return onFulfilled(in) },
			resolve: resolve,
			reject:  reject,
		},
		&reaction{
			handler: func(in any) (any, error) { return onRejected(in.(error)) },
			resolve: resolve,
			reject:  reject,
		},
	)

	return derived
}

func (p *Promise) Catch(onRejected RejectHandler) *Promise {
	return p.Then(nil, onRejected)
}

// Finally runs handler once p settles, without observing or altering
// the outcome.
func (p *Promise) Finally(handler FinallyHandler) *Promise {
	if handler == nil {
		return p.Then(nil, nil)
	}

	return p.Then(
		func(value any) (any, error) {
			handler()
			return value, nil
		},
		func(reason error) (any, error) {
			handler()
			return nil, reason
		},
	)
}

// register stores the reaction pair while p is pending, or schedules
// the matching reaction right away against the known result. Scheduling
// still defers to the next drain; nothing runs synchronously.
func (p *Promise) register(onFulfill, onReject *reaction) {
	p.mu.Lock()

	switch p.state {
	case StatePending:
		p.fulfillReactions = append(p.fulfillReactions, onFulfill)
		p.rejectReactions = append(p.rejectReactions, onReject)
		p.mu.Unlock()

	case StateFulfilled:
		value := p.value
		p.mu.Unlock()
		p.rt.jobs.Enqueue(onFulfill.job(value))

	case StateRejected:
		reason := p.err
		p.mu.Unlock()
		p.rt.markHandled(p)
		p.rt.jobs.Enqueue(onReject.job(reason))

	default:
		p.mu.Unlock()
		panic("promise: unexpected promise state: " + p.state)
	}
}

// subscribe wires a raw resolving pair to the settlement of p, used
// when another promise adopts p during resolution.
func (p *Promise) subscribe(resolve Resolver, reject Rejector) {
	p.register(
		&reaction{
			handler: func(in any) (any, error) { return in, nil },
			resolve: resolve,
			reject:  reject,
		},
		&reaction{
			handler: func(in any) (any, error) { return nil, in.(error) },
			resolve: resolve,
			reject:  reject,
		},
	)
}

// fulfill settles p with value. Reachable only through the resolving
// pair, which guarantees the promise is still pending.
func (p *Promise) fulfill(value any) {
	reactions := p.settle(StateFulfilled, value, nil)
	for _, r := range reactions {
		p.rt.jobs.Enqueue(r.job(value))
	}
}

// reject settles p with reason. A rejection nothing has registered a
// handler for is handed to the runtime's unhandled-rejection tracker.
func (p *Promise) reject(reason error) {
	reactions := p.settle(StateRejected, nil, reason)
	if len(reactions) == 0 {
		p.rt.trackRejection(p, reason)
	}
	for _, r := range reactions {
		p.rt.jobs.Enqueue(r.job(reason))
	}
}

// settle flips the state, stores the result and frees both reaction
// lists, returning the snapshot of the list matching the transition.
func (p *Promise) settle(state State, value any, reason error) []*reaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePending {
		panic("promise: unexpected promise state: " + p.state)
	}

	var reactions []*reaction
	if state == StateFulfilled {
		reactions = p.fulfillReactions
		p.value = value
	} else {
		reactions = p.rejectReactions
		p.err = reason
	}

	p.fulfillReactions = nil
	p.rejectReactions = nil
	p.state = state

	return reactions
}
