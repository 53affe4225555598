// Package funnel computes countdown-deadline expiry for captured leads.
package funnel

import "time"

// DefaultWindow is the countdown window applied when a campaign has no
// configured override.
const DefaultWindow = 72 * time.Hour

// Deadline returns the instant a lead's countdown elapses: submission time
// plus the campaign window. It is recomputed on demand and never persisted.
func Deadline(submittedAt time.Time, window time.Duration) time.Time {
	if window <= 0 {
		window = DefaultWindow
	}
	return submittedAt.Add(window)
}

// Expired reports whether the countdown has elapsed at the given instant.
func Expired(now, submittedAt time.Time, window time.Duration) bool {
	return !now.Before(Deadline(submittedAt, window))
}

// Remaining returns the time left on the countdown, clamped at zero.
func Remaining(now, submittedAt time.Time, window time.Duration) time.Duration {
	left := Deadline(submittedAt, window).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
