package anim

import "time"

// Clock measures per-frame deltas from a monotonic time source.
type Clock struct {
	now     func() time.Time
	last    time.Time
	started bool
}

// NewClock returns a clock backed by time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Delta returns the seconds elapsed since the previous call. The first
// call returns 0.
func (c *Clock) Delta() float32 {
	t := c.now()
	if !c.started {
		c.started = true
		c.last = t
		return 0
	}
	dt := t.Sub(c.last).Seconds()
	c.last = t
	return float32(dt)
}
