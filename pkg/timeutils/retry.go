package timeutils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrAllAttemptsFailed = errors.New("all attempts failed")
)

// Retry calls function once, then once more after each delay, until it
// succeeds or isRetriable rejects the error. A nil isRetriable retries every error.
func Retry[T any](
	ctx context.Context,
	delays []time.Duration,
	function func(context.Context) (T, error),
	isRetriable func(error) bool,
) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		if attempt > 0 {
			if err := SleepCtx(ctx, delays[attempt-1]); err != nil {
				return zero, err
			}
		}
		res, err := function(ctx)
		if err == nil {
			return res, nil
		}
		if isRetriable != nil && !isRetriable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, fmt.Errorf("%w: %w", ErrAllAttemptsFailed, lastErr)
}

func SleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("sleep canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
