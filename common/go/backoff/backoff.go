// Package backoff centralizes retry policy for gridstore's lock-free
// structures. It offers two policies: a flat, tightly-bounded jitter
// (Jitter/Sleep) used by the token free-list, the lock-free queues, the
// ring buffer lock and the log append CAS loop (spec.md §4.C), and an
// exponential policy (Retry) over cenkalti/backoff/v5, which nothing in
// this module calls.
package backoff

import (
	"context"
	"math/rand"
	"time"

	backoffv5 "github.com/cenkalti/backoff/v5"
)

// Jitter returns a duration uniformly distributed in [100ns, 200ns), the
// retry policy spec.md §4.C mandates for lock-free queue and token
// contention.
func Jitter() time.Duration {
	return 100*time.Nanosecond + time.Duration(rand.Int63n(100))
}

// Sleep blocks for a single Jitter-distributed interval. Callers loop on it
// around a push/pop/CAS retry.
func Sleep() {
	time.Sleep(Jitter())
}

// Retry runs fn until it returns true, ctx is done, or the exponential
// backoff policy gives up.
func Retry(ctx context.Context, fn func() bool) error {
	policy := func() backoffv5.BackOff {
		b := backoffv5.NewExponentialBackOff()
		b.InitialInterval = 50 * time.Microsecond
		b.MaxInterval = 5 * time.Millisecond
		return b
	}

	_, err := backoffv5.Retry(ctx, func() (struct{}, error) {
		if fn() {
			return struct{}{}, nil
		}
		return struct{}{}, errRetry
	}, backoffv5.WithBackOff(policy()))
	return err
}

var errRetry = retryError{}

type retryError struct{}

func (retryError) Error() string { return "retry condition not satisfied" }
