package geocode

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces outbound provider calls. One instance is shared by every
// caller in the process: the limiter serializes reservations under its own
// lock, so concurrent queries queue behind each other and consecutive send
// times are at least Interval apart.
type Throttle struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewThrottle returns a throttle allowing one call per interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Interval is the minimum spacing between calls.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// Wait blocks until the caller may send and reports how long it waited.
func (t *Throttle) Wait(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := t.limiter.Wait(ctx); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), nil
}
