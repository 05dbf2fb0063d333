// Package retry runs an operation with a fixed retry ceiling and a fixed
// delay before every attempt.
package retry

import (
	"context"
	"fmt"
	"time"

	errpkg "github.com/veranemoloko/post-downloader/internal/errors"
)

const (
	DefaultRetries = 8
	DefaultDelay   = 100 * time.Millisecond
)

// Policy allows 1+Retries attempts. There is no backoff and no jitter.
type Policy struct {
	Retries int
	Delay   time.Duration
}

// Default returns the 8 retries / 100ms policy.
func Default() Policy {
	return Policy{Retries: DefaultRetries, Delay: DefaultDelay}
}

// Attempts is the total number of times Do may call op.
func (p Policy) Attempts() int {
	return p.Retries + 1
}

// Do waits Delay, calls gate, then calls op, until op succeeds or the retry
// budget is spent. The gate runs before every attempt, the first included;
// a gate error stops the loop and is returned unwrapped. A cancelled ctx
// during the delay returns ctx.Err(). When every attempt fails, the last op
// error is returned wrapped in ErrRetriesExhausted. onRetry, if non-nil, is
// called after each failed attempt that will be retried.
func (p Policy) Do(
	ctx context.Context,
	gate func() error,
	op func(attempt int) error,
	onRetry func(attempt int, err error),
) error {
	for attempt := 0; ; attempt++ {
		if err := sleep(ctx, p.Delay); err != nil {
			return err
		}

		if gate != nil {
			if err := gate(); err != nil {
				return err
			}
		}

		err := op(attempt)
		if err == nil {
			return nil
		}

		if attempt >= p.Retries {
			return fmt.Errorf("%w after %d attempts: %w", errpkg.ErrRetriesExhausted, attempt+1, err)
		}

		if onRetry != nil {
			onRetry(attempt, err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
