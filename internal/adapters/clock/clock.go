package clock

import "time"

// Clock provides time.Now() access.
type Clock struct{}

// Now returns the current wall-clock time.
func (Clock) Now() time.Time {
	return time.Now()
}
