package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// retryProvider retries transient failures with exponential backoff
// and jitter. Wrap with WithRetry.
type retryProvider struct {
	next Provider
	cfg  RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retryProvider{next: p, cfg: cfg}
}

func (r *retryProvider) ModelID() string { return r.next.ModelID() }

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	base := r.cfg.InitialWait
	invalidSeen := false

	var err error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.nextWait(&base, err)):
			}
		}

		var resp *Response
		resp, err = r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !wantRetry(err, &invalidSeen) {
			return nil, err
		}
	}

	return nil, err
}

// nextWait returns how long to sleep before the next attempt and
// advances the backoff base for the attempt after that.
func (r *retryProvider) nextWait(base *time.Duration, err error) time.Duration {
	// A rate-limited provider told us exactly when to come back.
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := *base
	*base = time.Duration(float64(*base) * r.cfg.Multiplier)
	if *base > r.cfg.MaxWait {
		*base = r.cfg.MaxWait
	}

	// ±20% jitter so concurrent callers don't sync up.
	jittered := float64(wait) * (1 + 0.2*(2*rand.Float64()-1))
	if jittered < 0 {
		jittered = 0
	}
	return time.Duration(jittered)
}

// wantRetry decides whether another attempt can help. Schema-invalid
// responses get exactly one retry; invalidSeen tracks that across
// attempts.
func wantRetry(err error, invalidSeen *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Truncation means MaxTokens is set too low. Retrying reproduces it.
	var truncated *ErrMaxTokensExceeded
	if errors.As(err, &truncated) {
		return false
	}

	// An empty wallet does not refill between attempts.
	var broke *ErrInsufficientBalance
	if errors.As(err, &broke) {
		return false
	}

	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
		return true
	}

	// Rate limits, outages, and plain network errors are transient.
	return true
}
