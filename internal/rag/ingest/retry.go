package ingest

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// isTransient reports whether an embedding error is worth retrying. Rate
// limits and flaky transport retry; anything clearly permanent fails fast so
// we don't burn attempts on malformed input.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
			return true
		case codes.InvalidArgument, codes.PermissionDenied, codes.Unauthenticated:
			return false
		}
	}
	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "quota", "429", "500", "502", "503", "timeout", "connection reset", "unavailable"} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// retryWithBackoff runs fn up to maxAttempts times with a linear backoff of
// baseDelay*attempt between tries. Each attempt waits on the shared limiter
// first so retries don't stampede the provider.
func retryWithBackoff[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, limiter *rate.Limiter, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return zero, err
			}
		}

		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if !isTransient(err) || attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(baseDelay * time.Duration(attempt)):
		}
	}
	return zero, lastErr
}
