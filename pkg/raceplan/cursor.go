package raceplan

import (
	"time"

	"skirace/pkg/domain"
)

// cursor is the global clock and race-order counter threaded through
// generation: start times are rounded to whole seconds and
// Race.Order is assigned strictly monotonically across the whole event.
type cursor struct {
	t     time.Time
	order int
}

// emit stamps r.Order and r.StartTime from the current cursor position.
// It does not advance the cursor; callers advance explicitly afterward
// based on what kind of race was just placed.
func (c *cursor) emit(r *domain.Race) {
	c.order++
	r.Order = c.order
	r.StartTime = c.t.Truncate(time.Second)
}

func (c *cursor) advance(d time.Duration) {
	c.t = c.t.Add(d)
}
