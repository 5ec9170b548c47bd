package promise

import "go.uber.org/zap"

// Rejected promises with no rejection handler are recorded and checked
// again one drain later, mirroring how registration works: a handler
// attached in the same turn (or the same drain) silences the report, a
// handler attached after that is too late.

func (rt *Runtime) trackRejection(p *Promise, reason error) {
	rt.unhandled.Store(p.id, reason)

	rt.jobs.Enqueue(func() {
		if reason, ok := rt.unhandled.LoadAndDelete(p.id); ok {
			rt.reportUnhandled(reason)
		}
	})
}

// markHandled withdraws p from the pending report, called when a
// rejection handler attaches to an already-rejected promise.
func (rt *Runtime) markHandled(p *Promise) {
	rt.unhandled.Delete(p.id)
}

func (rt *Runtime) reportUnhandled(reason error) {
	if rt.onUnhandled != nil {
		rt.onUnhandled(reason)
		return
	}

	rt.logger.Warn("unhandled promise rejection", zap.Error(reason))
}
