package timex

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock returns the current time. Tests replace it to pin "today".
var Clock = time.Now

// Today is the local calendar date according to Clock.
func Today() civil.Date {
	return civil.DateOf(Clock())
}

// NotFuture reports whether d is today or earlier.
func NotFuture(d civil.Date) bool {
	return !d.After(Today())
}
