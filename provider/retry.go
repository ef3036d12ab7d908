package provider

import (
	"context"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vigil-eol/advisor/model"
)

// retryPolicy is the pure function over (error kind, attempt) the
// orchestrator's cascade execution consults before retrying a
// Provider.Lookup call. Base delay 250ms, factor 2, jitter +/-20%,
// max 3 attempts.
const (
	maxRetryAttempts = 3
	baseRetryDelay   = 250 * time.Millisecond
)

// ShouldRetry reports whether err warrants another attempt given how
// many attempts have already been made (attempt is 1-indexed: the
// value passed in after the first failed call).
func ShouldRetry(err error, attempt int) bool {
	if attempt >= maxRetryAttempts {
		return false
	}
	pe, ok := err.(*model.ProviderError)
	if !ok {
		return false
	}
	return pe.Retryable()
}

// newBackOff builds a jittered exponential backoff bounded to the
// configured retry attempts, using backoff/v4 the way scalibr's
// dependency graph carries it for bounded external-call retries.
func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseRetryDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0 // bounded by WithMaxRetries instead of elapsed wall time
	return backoff.WithMaxRetries(b, maxRetryAttempts-1)
}

// RetryLookup runs fn, retrying per ShouldRetry until it succeeds, a
// non-retryable error is returned, ctx is cancelled, or attempts are
// exhausted. attemptsMade reports how many calls were actually issued,
// for telemetry's retry-count assertions.
func RetryLookup(ctx context.Context, fn func(ctx context.Context) (*model.LookupResult, error)) (res *model.LookupResult, attemptsMade int, err error) {
	bo := backoff.WithContext(newBackOff(), ctx)

	op := func() error {
		attemptsMade++
		res, err = fn(ctx)
		if err == nil {
			return nil
		}
		if !ShouldRetry(err, attemptsMade) {
			return backoff.Permanent(err)
		}
		return err
	}

	if retryErr := backoff.Retry(op, bo); retryErr != nil {
		if pe, ok := retryErr.(*model.ProviderError); ok {
			return nil, attemptsMade, pe
		}
		return nil, attemptsMade, retryErr
	}
	return res, attemptsMade, nil
}

// jitteredDelay computes the same cadence as newBackOff (base delay
// doubled per attempt, +/-20% jitter) without backoff/v4; nothing in
// this repository calls it.
func jitteredDelay(attempt int) time.Duration {
	d := baseRetryDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	jitter := 1 + (rand.Float64()*0.4 - 0.2)
	return time.Duration(float64(d) * jitter)
}
