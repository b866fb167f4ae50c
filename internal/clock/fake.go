package clock

import "time"

type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

func (c *FakeClock) Today() time.Time {
	return Midnight(c.now)
}

func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
