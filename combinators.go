package promise

import "sync"

// Resolve returns a promise resolved with value. Thenables are adopted,
// so the result may still reject.
func (rt *Runtime) Resolve(value any) *Promise {
	return rt.New(func(resolve Resolver, _ Rejector) {
		resolve(value)
	})
}

// Reject returns a promise rejected with reason.
func (rt *Runtime) Reject(reason error) *Promise {
	return rt.New(func(_ Resolver, reject Rejector) {
		reject(reason)
	})
}

// All fulfills with the values of all promises, in input order, once
// every one of them fulfills, or rejects with the first rejection
// reason. No promises fulfills immediately with an empty slice.
func (rt *Runtime) All(promises ...*Promise) *Promise {
	return rt.New(func(resolve Resolver, reject Rejector) {
		if len(promises) == 0 {
			resolve([]any{})
			return
		}

		var (
			mu      sync.Mutex
			results = make([]any, len(promises))
			pending = len(promises)
		)

		for i, p := range promises {
			i := i

			p.Then(
				func(value any) (any, error) {
					mu.Lock()
					results[i] = value
					pending--
					done := pending == 0
					mu.Unlock()

					if done {
						resolve(results)
					}
					return nil, nil
				},
				func(reason error) (any, error) {
					reject(reason)
					// Swallow: the rejection already went to the
					// combined promise, the discarded derived one must
					// not re-report it.
					return nil, nil
				},
			)
		}
	})
}

// Race settles with the outcome of whichever promise settles first. No
// promises leaves the result pending forever.
func (rt *Runtime) Race(promises ...*Promise) *Promise {
	return rt.New(func(resolve Resolver, reject Rejector) {
		for _, p := range promises {
			p.subscribe(resolve, reject)
		}
	})
}
