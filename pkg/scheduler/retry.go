package scheduler

import (
	"context"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// RetryConfig is a bounded backoff policy for capability calls
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// do runs fn until it succeeds or attempts are exhausted, errors matching stopOn end retries at once
func (r RetryConfig) do(ctx context.Context, fn func() error, stopOn ...error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := r.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	maxDelay := r.MaxDelay
	if maxDelay < delay {
		maxDelay = delay
	}
	return repeater.NewBackoff(attempts, delay, repeater.WithMaxDelay(maxDelay)).Do(ctx, fn, stopOn...)
}
