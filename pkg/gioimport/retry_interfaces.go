package gioimport

import "time"

// ErrorClassifier reports whether a failed connection attempt is worth repeating.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy spaces repeated connection attempts.
type BackoffStrategy interface {
	// NextDelay is the wait before retry number attempt, counted from zero.
	NextDelay(attempt int) time.Duration

	// MaxAttempts caps the retries: 0 disables them, -1 never stops.
	MaxAttempts() int
}
