package client

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for retry operations.
var (
	ytRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yt_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	ytRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yt_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	ytRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yt_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// InitialBackoff is the initial backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64
}

// RetryPolicy selects the retry configuration for an error class.
type RetryPolicy func(ErrorClass) RetryConfig

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryConfigForErrorClass returns the appropriate retry configuration for an error class.
func RetryConfigForErrorClass(errorClass ErrorClass) RetryConfig {
	switch errorClass {
	case ErrorClassServer:
		return RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    1 * time.Second,
			MaxBackoff:        10 * time.Second,
			BackoffMultiplier: 2.0,
		}
	case ErrorClassRateLimit:
		return RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    5 * time.Second,
			MaxBackoff:        60 * time.Second,
			BackoffMultiplier: 2.0,
		}
	case ErrorClassNetwork:
		return RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    2 * time.Second,
			MaxBackoff:        30 * time.Second,
			BackoffMultiplier: 2.0,
		}
	default:
		return DefaultRetryConfig()
	}
}

// PolicyWith returns the per-class policy with attempts and initial backoff
// overridden where they are positive.
func PolicyWith(maxAttempts int, initialBackoff time.Duration) RetryPolicy {
	return func(class ErrorClass) RetryConfig {
		cfg := RetryConfigForErrorClass(class)
		if maxAttempts > 0 {
			cfg.MaxAttempts = maxAttempts
		}
		if initialBackoff > 0 {
			cfg.InitialBackoff = initialBackoff
			if cfg.MaxBackoff < initialBackoff {
				cfg.MaxBackoff = initialBackoff
			}
		}
		return cfg
	}
}

// Retry runs fn until it succeeds, fails with a class that is not retried, or
// the policy's attempts are spent. It respects context cancellation and adds
// jitter to prevent thundering herd. The exhausted error wraps both
// ErrRetryExhausted and the last failure.
func Retry(ctx context.Context, policy RetryPolicy, classify func(error) ErrorClass, fn func() error) error {
	if policy == nil {
		policy = RetryConfigForErrorClass
	}
	if classify == nil {
		classify = Classify
	}

	var backoff time.Duration
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				log.Info().Int("attempt", attempt).Msg("Request succeeded after retry")
			}
			return nil
		}

		errorClass := classify(err)
		if !shouldRetry(errorClass) {
			return err
		}

		config := policy(errorClass)
		if attempt >= config.MaxAttempts {
			ytRetryExhaustedTotal.WithLabelValues(string(errorClass)).Inc()
			log.Warn().
				Str("error_class", string(errorClass)).
				Int("max_attempts", config.MaxAttempts).
				Msg("Retry attempts exhausted")
			return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempt, err)
		}

		if backoff == 0 {
			backoff = config.InitialBackoff
		}

		ytRetriesTotal.WithLabelValues(string(errorClass)).Inc()

		// ±20% jitter
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		ytRetryBackoffSeconds.WithLabelValues(string(errorClass)).Observe(jitter.Seconds())

		log.Debug().
			Str("error_class", string(errorClass)).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Retrying request after backoff")

		select {
		case <-ctx.Done():
			log.Warn().
				Str("error_class", string(errorClass)).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(jitter):
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}
}
