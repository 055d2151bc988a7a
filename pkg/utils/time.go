package utils

import "time"

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// SystemClock is the UTC wall clock.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// ISOTimestamp formats t the way event envelopes and object metadata expect,
// millisecond precision in UTC.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
