package lifecycle

import "time"

// Clock supplies the current time. The engine never calls time.Now
// directly so that tests can pin "today" when checking date guards and
// approval timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
