package core

import (
	"context"
	"time"
)

// NewTime creates a new time service that ticks framesPerSecond times
// a second. Zero ticks as fast as possible.
func NewTime(framesPerSecond int) *Time {
	var interval time.Duration
	if framesPerSecond <= 0 {
		interval = time.Nanosecond
	} else {
		interval = time.Second / time.Duration(framesPerSecond)
	}

	return &Time{
		fps:      framesPerSecond,
		interval: interval,
		now:      time.Now,
	}
}

// Time paces frame updates, such as advancing texture animations
type Time struct {
	fps      int
	interval time.Duration
	now      func() time.Time
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// Interval gets the time between two ticks
func (t *Time) Interval() time.Duration {
	return t.interval
}

// Run calls step with the time elapsed since the previous tick until
// ctx is done or step returns false.
func (t *Time) Run(ctx context.Context, step func(dt time.Duration) bool) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	last := t.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := t.now()
			dt := now.Sub(last)
			last = now
			if !step(dt) {
				return nil
			}
		}
	}
}
