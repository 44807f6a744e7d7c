package http

import (
	"context"
	"sync/atomic"
	"time"
)

// InFlightTracker counts API and asset requests being served. /health reports
// it and shutdown drains it.
type InFlightTracker struct {
	current atomic.Int64
	peak    atomic.Int64
}

// InFlightStats is the tracker as reported under "inFlight" by /health.
type InFlightStats struct {
	Current int64 `json:"current"`
	Peak    int64 `json:"peak"`
}

// Begin marks a request as started and raises the peak if needed.
func (t *InFlightTracker) Begin() {
	n := t.current.Add(1)
	for {
		p := t.peak.Load()
		if n <= p || t.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// End marks a request as finished.
func (t *InFlightTracker) End() {
	t.current.Add(-1)
}

func (t *InFlightTracker) Count() int64 {
	return t.current.Load()
}

func (t *InFlightTracker) Stats() InFlightStats {
	return InFlightStats{Current: t.current.Load(), Peak: t.peak.Load()}
}

// Drain blocks until no request is in flight or ctx is done. A non-positive
// poll interval uses 50ms.
func (t *InFlightTracker) Drain(ctx context.Context, poll time.Duration) error {
	if poll <= 0 {
		poll = 50 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for t.Count() != 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// requestsInFlight is fed by MetricsMiddleware.
var requestsInFlight = &InFlightTracker{}

// InFlightCount returns the number of requests currently being served.
func InFlightCount() int64 {
	return requestsInFlight.Count()
}

// InFlight returns current and peak in-flight requests since process start.
func InFlight() InFlightStats {
	return requestsInFlight.Stats()
}

// WaitForInFlight drains the process-wide tracker; see InFlightTracker.Drain.
func WaitForInFlight(ctx context.Context, poll time.Duration) error {
	return requestsInFlight.Drain(ctx, poll)
}
