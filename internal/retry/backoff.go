package retry

import (
	"math"
	"math/rand"
	"time"
)

const (
	defaultInitialDelay = 100 * time.Millisecond
	defaultMaxDelay     = 30 * time.Second
	defaultMultiplier   = 2.0
	defaultJitter       = 0.1
)

// ExponentialBackoff spaces connection attempts geometrically, capped at a
// maximum, with symmetric jitter so parallel importers do not reconnect in step.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	maxAttempts  int     // -1 = unlimited, 0 = no retries
	jitter       float64 // 0.1 = +/- 10%
	random       func() float64
}

// BackoffOption configures an ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.initialDelay = d }
}

func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.maxDelay = d }
}

func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.multiplier = m }
}

// WithJitter sets the jitter fraction, 0 disables it.
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitter = j }
}

// WithJitterFunc replaces the [0, 1) random source.
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.random = f }
}

// NewExponentialBackoff allows maxAttempts retries, starting at 100ms and
// doubling up to 30s with 10% jitter unless opts say otherwise.
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
		multiplier:   defaultMultiplier,
		maxAttempts:  maxAttempts,
		jitter:       defaultJitter,
		random:       rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NextDelay returns initialDelay * multiplier^attempt, capped and jittered.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt))
	if delay > float64(b.maxDelay) {
		delay = float64(b.maxDelay)
	}

	if b.jitter > 0 && b.random != nil {
		delay *= 1 + b.jitter*(2*b.random()-1)
	}
	return time.Duration(delay)
}

func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}
