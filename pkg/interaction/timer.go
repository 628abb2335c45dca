package interaction

import "time"

// Timer is deadline state polled once per tick.
type Timer struct {
	deadline time.Time
	running  bool
}

// Start arms the timer to expire d after now.
func (t *Timer) Start(now time.Time, d time.Duration) {
	t.deadline = now.Add(d)
	t.running = true
}

func (t *Timer) Stop() { t.running = false }

// Running reports whether the timer is armed and has not yet expired.
func (t *Timer) Running(now time.Time) bool {
	return t.running && now.Before(t.deadline)
}

// Expired reports whether the timer was armed and its deadline has passed.
func (t *Timer) Expired(now time.Time) bool {
	return t.running && !now.Before(t.deadline)
}

// Remaining is zero once the timer has expired or was never armed.
func (t *Timer) Remaining(now time.Time) time.Duration {
	if !t.Running(now) {
		return 0
	}
	return t.deadline.Sub(now)
}
