/*
Package dynwire – transport decorators.

The transport collaborator is a plain http.RoundTripper. BreakerTransport is
an optional decorator that opens a circuit after repeated connection-level
failures, so hosed endpoints fail fast instead of burning the retry budget.
*/
package dynwire

import (
	"net/http"

	"github.com/sony/gobreaker"
)

// BreakerTransport wraps another RoundTripper with a circuit breaker.
// Only transport-level failures count against the breaker; service error
// responses are left to the retry orchestrator.
type BreakerTransport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerTransport decorates next (nil = http.DefaultTransport). The
// breaker opens after five consecutive failures.
func NewBreakerTransport(next http.RoundTripper) *BreakerTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "dynwire",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &BreakerTransport{next: next, cb: cb}
}

func (t *BreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (any, error) {
		return t.next.RoundTrip(req)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*http.Response), nil
}
