package snapshot

import (
	"golang.org/x/time/rate"

	"itchflow/internal/book"
)

// Throttled samples snapshot notifications before forwarding them to the
// wrapped sink. The scan-loop contract is still one call per mutating
// event; sampling is this sink's own policy. Events beyond the configured
// rate are dropped, never queued, so the scan is never stalled.
type Throttled struct {
	inner   Sink
	limiter *rate.Limiter
}

// Throttle wraps sink so it sees at most perSecond notifications per
// second (with a burst of one).
func Throttle(sink Sink, perSecond float64) *Throttled {
	return &Throttled{
		inner:   sink,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (t *Throttled) Snapshot(view book.View, tsNanos uint64, format TimeFormatter) error {
	if !t.limiter.Allow() {
		return nil
	}
	return t.inner.Snapshot(view, tsNanos, format)
}
