package promise

import "errors"

type State string

const (
	StatePending   = State("pending")
	StateFulfilled = State("fulfilled")
	StateRejected  = State("rejected")
)

// ErrSelfResolution is the rejection reason of a promise resolved with
// itself.
var ErrSelfResolution = errors.New("promise: cannot resolve promise with itself")

// Executor is invoked synchronously at construction with the resolving
// pair of the new promise.
type Executor func(resolve Resolver, reject Rejector)

type Resolver func(value any)
type Rejector func(reason error)

// FulfillHandler consumes a fulfillment value. A non-nil error rejects
// the derived promise; otherwise the result resolves it, adopting
// thenables.
type FulfillHandler func(value any) (result any, err error)

// RejectHandler consumes a rejection reason. Returning a nil error
// recovers: the derived promise resolves with result.
type RejectHandler func(reason error) (result any, err error)

type FinallyHandler func()

// Thenable is the adoption capability: resolving a promise with a
// Thenable defers to it, letting it settle the promise through the pair
// it is handed. Promises created by this package are adopted the same
// way.
type Thenable interface {
	Then(resolve Resolver, reject Rejector)
}

// Promiser is the chainable surface of a settled-or-pending promise.
type Promiser interface {
	Then(onFulfilled FulfillHandler, onRejected RejectHandler) *Promise
	Catch(onRejected RejectHandler) *Promise
	Finally(handler FinallyHandler) *Promise
	State() State
}
