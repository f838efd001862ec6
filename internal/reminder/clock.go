package reminder

import "time"

// Clock supplies the current time. Tests inject a frozen one.
type Clock interface {
	Now() time.Time
}

// RealClock reads the local wall clock. Reminder times carry no timezone
// and are interpreted in its location.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
