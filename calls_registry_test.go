package promise

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newCallsRegistry(expectedCalls int) *callsRegistry {
	return &callsRegistry{
		expectedCalls: expectedCalls,
	}
}

// callsRegistry records named call sites so tests can assert ordering
// across queue drains, including drains driven by the default
// goroutine scheduler.
type callsRegistry struct {
	mu sync.Mutex

	registry      []string
	expectedCalls int
}

func (r *callsRegistry) Register(place string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.expectedCalls == 0 {
		panic("trying to register unexpected call: " + place)
	}

	r.registry = append(r.registry, place)
	r.expectedCalls--
}

func (r *callsRegistry) Summarize() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return strings.Join(r.registry, "|")
}

func (r *callsRegistry) remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.expectedCalls
}

func (r *callsRegistry) AssertCompletedBefore(t *testing.T, expectedRegistry string, timeLimit time.Duration) {
	deadline := time.Now().Add(timeLimit)

	for r.remaining() != 0 {
		if time.Now().After(deadline) {
			require.FailNowf(
				t,
				"Calls registry assertion timeout",
				"There are still %d expected call(s) left. Calls registered: %v.",
				r.remaining(),
				r.Summarize(),
			)
			return
		}

		time.Sleep(time.Millisecond)
	}

	require.Equal(t, expectedRegistry, r.Summarize())
}

func (r *callsRegistry) AssertCurrentCallsStackIs(t *testing.T, expectedRegistry string) {
	require.Equal(t, expectedRegistry, r.Summarize())
}
