package retry

import (
	"context"
	"time"

	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// Executor repeats an operation while its classifier calls the failure
// transient, waiting as the strategy says in between. It holds no per-call
// state, so one Executor may serve concurrent Execute calls.
type Executor struct {
	classifier gioimport.ErrorClassifier
	strategy   gioimport.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor with the given configuration.
// Panics if classifier or strategy is nil.
func NewExecutor(
	classifier gioimport.ErrorClassifier,
	strategy gioimport.BackoffStrategy,
) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// ForConnections returns the executor used by every database connector:
// DefaultRetryMaxAttempts retries starting at DefaultRetryInitialDelay,
// capped at DefaultRetryMaxDelay. Retries are reported through logger
// when it is not nil.
func ForConnections(logger gioimport.Logger) *Executor {
	e := NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(gioimport.DefaultRetryMaxAttempts,
			WithInitialDelay(gioimport.DefaultRetryInitialDelay),
			WithMaxDelay(gioimport.DefaultRetryMaxDelay),
		),
	)
	if logger == nil {
		return e
	}
	return e.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Warn("Connection attempt failed (%v), retry %d in %v", err, attempt+1, delay.Round(time.Millisecond))
	})
}

// WithOnRetry returns a copy of e that reports each retry before sleeping.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation once plus up to MaxAttempts retries (without bound
// when negative). It returns nil, the first fatal error, the last transient
// error, or the context's error if ctx ends while waiting.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	limit := e.strategy.MaxAttempts()

	for attempt := 0; ; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}
		if !e.classifier.IsTransient(err) || (limit >= 0 && attempt >= limit) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
