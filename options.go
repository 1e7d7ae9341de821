package formz

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// Option configures the submit pipeline of a Form. Pipeline options wrap the
// submit callback with middleware for retry, timeout, and other reliability
// patterns.
//
// Instance configuration (clock, sync mode, policy, metrics, etc.) is
// handled via chainable methods on the Form before calling Start().
type Option func(pipz.Chainable[*SubmitRequest]) pipz.Chainable[*SubmitRequest]

// Identities for the built-in pipeline wrappers.
var (
	retryID      = pipz.NewIdentity("retry", "Retries failed submits")
	backoffID    = pipz.NewIdentity("backoff", "Retries failed submits with exponential backoff")
	timeoutID    = pipz.NewIdentity("timeout", "Bounds submit duration")
	fallbackID   = pipz.NewIdentity("fallback", "Falls back when the submit pipeline fails")
	middlewareID = pipz.NewIdentity("middleware", "Runs processors around the submit callback")
	rateLimitID  = pipz.NewIdentity("rate-limiter", "Rate limits submit attempts")
)

// buildPipeline wraps a terminal with pipeline options.
func buildPipeline(terminal pipz.Chainable[*SubmitRequest], opts []Option) pipz.Chainable[*SubmitRequest] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}

// -----------------------------------------------------------------------------
// Pipeline Options - Wrapping (With*)
// -----------------------------------------------------------------------------
// These options wrap the entire submit pipeline, providing protection at the
// boundary.

// WithRetry wraps the submit pipeline with retry logic.
// Failed submits are retried immediately up to maxAttempts times.
// For exponential backoff between retries, use WithBackoff instead.
func WithRetry(maxAttempts int) Option {
	return func(p pipz.Chainable[*SubmitRequest]) pipz.Chainable[*SubmitRequest] {
		return pipz.NewRetry(retryID, p, maxAttempts)
	}
}

// WithBackoff wraps the submit pipeline with exponential backoff retry logic.
// Failed submits are retried with increasing delays: baseDelay, 2*baseDelay,
// 4*baseDelay, etc.
func WithBackoff(maxAttempts int, baseDelay time.Duration) Option {
	return func(p pipz.Chainable[*SubmitRequest]) pipz.Chainable[*SubmitRequest] {
		return pipz.NewBackoff(backoffID, p, maxAttempts, baseDelay)
	}
}

// WithTimeout wraps the submit pipeline with a timeout.
// If the submit callback takes longer than the specified duration, the
// submit fails with a timeout error.
func WithTimeout(d time.Duration) Option {
	return func(p pipz.Chainable[*SubmitRequest]) pipz.Chainable[*SubmitRequest] {
		return pipz.NewTimeout(timeoutID, p, d)
	}
}

// WithFallback wraps the submit pipeline with fallback processors.
// If the primary pipeline fails, each fallback is tried in order until one
// succeeds.
func WithFallback(fallbacks ...pipz.Chainable[*SubmitRequest]) Option {
	return func(p pipz.Chainable[*SubmitRequest]) pipz.Chainable[*SubmitRequest] {
		all := append([]pipz.Chainable[*SubmitRequest]{p}, fallbacks...)
		return pipz.NewFallback(fallbackID, all...)
	}
}

// WithRateLimit wraps the submit pipeline with a token bucket rate limiter
// at the specified rate (tokens per second) and burst size. Useful to absorb
// a user hammering the submit button.
func WithRateLimit(rate float64, burst int) Option {
	return func(p pipz.Chainable[*SubmitRequest]) pipz.Chainable[*SubmitRequest] {
		return pipz.NewRateLimiter(rateLimitID, rate, burst, p)
	}
}

// WithMiddleware wraps the submit pipeline with a sequence of processors.
// Processors execute in order, with the wrapped pipeline (callback) last.
//
// Use the Use* functions to create processors for common patterns,
// or provide custom pipz.Chainable implementations directly.
//
// Example:
//
//	formz.New(scorer, onSubmit,
//	    formz.WithMiddleware(
//	        formz.UseEffect("audit", auditFn),
//	    ),
//	    formz.WithRateLimit(1, 1),
//	    formz.WithTimeout(5*time.Second),
//	)
func WithMiddleware(processors ...pipz.Chainable[*SubmitRequest]) Option {
	return func(p pipz.Chainable[*SubmitRequest]) pipz.Chainable[*SubmitRequest] {
		all := make([]pipz.Chainable[*SubmitRequest], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence(middlewareID, all...)
	}
}

// -----------------------------------------------------------------------------
// Middleware Processors - Adapters (Use*)
// -----------------------------------------------------------------------------
// These create processors for use inside WithMiddleware.

// UseTransform creates a processor that transforms the submit request.
// Cannot fail. Use for pure transformations that always succeed.
func UseTransform(name string, fn func(context.Context, *SubmitRequest) *SubmitRequest) pipz.Chainable[*SubmitRequest] {
	return pipz.Transform(pipz.NewIdentity(name, ""), fn)
}

// UseApply creates a processor that can transform the submit request and fail.
func UseApply(name string, fn func(context.Context, *SubmitRequest) (*SubmitRequest, error)) pipz.Chainable[*SubmitRequest] {
	return pipz.Apply(pipz.NewIdentity(name, ""), fn)
}

// UseEffect creates a processor that performs a side effect.
// The request passes through unchanged. Use for audit logging, metrics,
// or notifications that should not affect the submit.
func UseEffect(name string, fn func(context.Context, *SubmitRequest) error) pipz.Chainable[*SubmitRequest] {
	return pipz.Effect(pipz.NewIdentity(name, ""), fn)
}

// UseFilter wraps a processor with a condition.
// If the condition returns false, the request passes through unchanged.
func UseFilter(name string, condition func(context.Context, *SubmitRequest) bool, processor pipz.Chainable[*SubmitRequest]) pipz.Chainable[*SubmitRequest] {
	return pipz.NewFilter(pipz.NewIdentity(name, ""), condition, processor)
}
