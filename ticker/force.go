package ticker

import "time"

// Force is a Ticker whose ticks are driven manually by test code via the
// exported Force channel, instead of wall-clock time. Passed as the
// delivery pipeline's SweepTicker, it lets a test trigger a
// push_pending() sweep deterministically rather than racing a real timer.
type Force struct {
	Force chan time.Time
}

// NewForce returns a Force ticker. The returned ticker ignores the
// requested interval entirely; ticks only occur when the test sends on
// Force.
func NewForce(interval time.Duration) *Force {
	return &Force{
		Force: make(chan time.Time),
	}
}

// Ticks returns the channel tests send on to simulate a wakeup.
func (f *Force) Ticks() <-chan time.Time {
	return f.Force
}

// Resume is a no-op for Force.
func (f *Force) Resume() {}

// Pause is a no-op for Force.
func (f *Force) Pause() {}

// Stop is a no-op for Force.
func (f *Force) Stop() {}
