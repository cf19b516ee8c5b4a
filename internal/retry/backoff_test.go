package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_Defaults(t *testing.T) {
	b := NewExponentialBackoff(3, WithJitterFunc(func() float64 { return 0.5 }))

	assert.Equal(t, 3, b.MaxAttempts())
	assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 200*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 30*time.Second, b.NextDelay(20), "capped at the default maximum")
}

func TestExponentialBackoff_DefaultJitterStaysInBounds(t *testing.T) {
	b := NewExponentialBackoff(1, WithInitialDelay(time.Second))

	for i := 0; i < 50; i++ {
		d := b.NextDelay(0)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}

func TestExponentialBackoff_NextDelay(t *testing.T) {
	b := NewExponentialBackoff(10,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(1*time.Second),
		WithJitter(0),
	)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1 * time.Second},
		{20, 1 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoff_JitterBounds(t *testing.T) {
	low := NewExponentialBackoff(1, WithInitialDelay(time.Second), WithJitter(0.1), WithJitterFunc(func() float64 { return 0 }))
	high := NewExponentialBackoff(1, WithInitialDelay(time.Second), WithJitter(0.1), WithJitterFunc(func() float64 { return 0.999999 }))
	mid := NewExponentialBackoff(1, WithInitialDelay(time.Second), WithJitter(0.1), WithJitterFunc(func() float64 { return 0.5 }))

	assert.Equal(t, 900*time.Millisecond, low.NextDelay(0))
	assert.InDelta(t, float64(1100*time.Millisecond), float64(high.NextDelay(0)), float64(time.Millisecond))
	assert.Equal(t, time.Second, mid.NextDelay(0))
}

func TestExponentialBackoff_Multiplier(t *testing.T) {
	b := NewExponentialBackoff(3, WithInitialDelay(10*time.Millisecond), WithMultiplier(3), WithJitter(0))

	assert.Equal(t, 10*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 30*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 90*time.Millisecond, b.NextDelay(2))
}
