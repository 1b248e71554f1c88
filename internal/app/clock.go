package app

import "time"

// Clock turns wall-clock time into timer time by subtracting every pause.
// While paused, timer time stands still.
type Clock struct {
	PausedFor   time.Duration
	PausedSince *time.Time
}

// Now returns the pause-adjusted instant for wall.
func (c *Clock) Now(wall time.Time) time.Time {
	now := wall.Add(-c.PausedFor)
	if c.PausedSince != nil {
		now = now.Add(-wall.Sub(*c.PausedSince))
	}
	return now
}

// Paused reports whether a pause is in progress.
func (c *Clock) Paused() bool {
	return c.PausedSince != nil
}

// Pause starts a pause at wall. Pausing twice keeps the first start.
func (c *Clock) Pause(wall time.Time) {
	if c.PausedSince != nil {
		return
	}
	c.PausedSince = &wall
}

// Resume ends the pause in progress, if any, and books its length.
func (c *Clock) Resume(wall time.Time) {
	if c.PausedSince == nil {
		return
	}
	c.PausedFor += wall.Sub(*c.PausedSince)
	c.PausedSince = nil
}
