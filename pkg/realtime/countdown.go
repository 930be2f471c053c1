package realtime

import "time"

// Countdown is a one-shot deadline. Start arms it, Expired reports when it has
// run out and Clear disarms it. It holds no domain state; the owner composes it
// and reacts to expiry by updating its own state.
type Countdown struct {
	Duration  time.Duration
	StartedAt time.Time
}

// Start arms the countdown at now, replacing any previous deadline.
func (c *Countdown) Start(now time.Time) {
	c.StartedAt = now
}

// Active reports whether the countdown is armed.
func (c *Countdown) Active() bool {
	return !c.StartedAt.IsZero()
}

// Deadline returns the expiry time, or zero when the countdown is not armed.
func (c *Countdown) Deadline() time.Time {
	if !c.Active() {
		return time.Time{}
	}
	return c.StartedAt.Add(c.Duration)
}

// NextWake returns when the owner should next look at the countdown and whether
// it is armed. An overdue deadline wakes immediately.
func (c *Countdown) NextWake(now time.Time) (time.Time, bool) {
	if !c.Active() {
		return time.Time{}, false
	}
	deadline := c.Deadline()
	if now.After(deadline) {
		return now, true
	}
	return deadline, true
}

// Expired reports whether an armed countdown has reached its deadline.
func (c *Countdown) Expired(now time.Time) bool {
	return c.Active() && !now.Before(c.Deadline())
}

// Remaining returns the time left, clamped at zero.
func (c *Countdown) Remaining(now time.Time) time.Duration {
	if !c.Active() {
		return 0
	}
	left := c.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Clear disarms the countdown.
func (c *Countdown) Clear() {
	c.StartedAt = time.Time{}
}
