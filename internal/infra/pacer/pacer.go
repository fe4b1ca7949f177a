// Package pacer provides the request pacer shared by the external API
// clients. Every outbound call waits on it first, which together with
// the pipeline's strictly sequential dispatch bounds the request rate
// toward the rate-limited services.
package pacer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer delays the caller until the next request may be issued.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Fixed enforces a fixed minimum delay between consecutive requests.
type Fixed struct {
	limiter *rate.Limiter
}

// NewFixed creates a pacer with the given inter-request delay. A zero
// or negative delay paces nothing.
func NewFixed(delay time.Duration) *Fixed {
	if delay <= 0 {
		return &Fixed{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Fixed{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the delay since the previous request has elapsed.
func (f *Fixed) Wait(ctx context.Context) error {
	return f.limiter.Wait(ctx)
}

// Nop is a pacer that never delays, for tests.
type Nop struct{}

// Wait returns immediately.
func (Nop) Wait(ctx context.Context) error {
	return nil
}
