package promise

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestUnhandledRejection(t *testing.T) {
	t.Run("Unhandled rejection is reported exactly once", func(t *testing.T) {
		var reported []error
		rt, scheduler := newTestRuntime(WithUnhandledRejectionHandler(func(reason error) {
			reported = append(reported, reason)
		}))

		reason := errors.New("nobody listened")
		rt.Reject(reason)

		require.Empty(t, reported)
		scheduler.drainAll()

		require.Equal(t, []error{reason}, reported)
	})

	t.Run("Handler attached in the same turn silences the report", func(t *testing.T) {
		var reported []error
		rt, scheduler := newTestRuntime(WithUnhandledRejectionHandler(func(reason error) {
			reported = append(reported, reason)
		}))

		rt.Reject(errors.New("caught in time")).Catch(func(error) (any, error) {
			return nil, nil
		})

		scheduler.drainAll()

		require.Empty(t, reported)
	})

	t.Run("Pass-through chain reports only the tail", func(t *testing.T) {
		var reported []error
		rt, scheduler := newTestRuntime(WithUnhandledRejectionHandler(func(reason error) {
			reported = append(reported, reason)
		}))

		reason := errors.New("propagated")
		rt.Reject(reason).Then(nil, nil).Then(nil, nil)

		scheduler.drainAll()

		require.Equal(t, []error{reason}, reported)
	})

	t.Run("Rejections with registered reactions are never reported", func(t *testing.T) {
		var reported []error
		rt, scheduler := newTestRuntime(WithUnhandledRejectionHandler(func(reason error) {
			reported = append(reported, reason)
		}))

		var reject Rejector
		p := rt.New(func(_ Resolver, r Rejector) { reject = r })
		p.Catch(func(error) (any, error) {
			return "handled", nil
		})

		reject(errors.New("seen"))
		scheduler.drainAll()

		require.Empty(t, reported)
	})

	t.Run("Default report is a warning log", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		rt, scheduler := newTestRuntime(WithLogger(zap.New(core)))

		rt.Reject(errors.New("logged"))
		scheduler.drainAll()

		require.Equal(t, 1, logs.FilterMessage("unhandled promise rejection").Len())
	})
}
