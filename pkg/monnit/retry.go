package monnit

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
	monnitRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monnit_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	monnitRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monnit_retry_exhausted_total",
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

// DefaultRetryConfig returns the default retry configuration.
// A single attempt keeps the tool's log-and-continue behavior: a failed
// work item is skipped by the sequencer, never replayed automatically.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       1,
		InitialBackoff:    2 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// retryWithBackoff executes fn with exponential backoff retry logic.
// It respects context cancellation and adds jitter to avoid hammering the
// provider at a fixed cadence. classify maps the returned error to an
// ErrorClass so non-retriable failures return immediately.
func retryWithBackoff(ctx context.Context, config RetryConfig, fn func() error, classify func(error) ErrorClass) error {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				log.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		errorClass := classify(err)

		if !shouldRetry(errorClass) {
			return lastErr
		}

		if attempt >= config.MaxAttempts {
			break
		}

		monnitRetriesTotal.WithLabelValues(string(errorClass)).Inc()

		// Jitter: ±20% around the current backoff.
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))

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

	if config.MaxAttempts > 1 {
		errorClass := classify(lastErr)
		monnitRetryExhaustedTotal.WithLabelValues(string(errorClass)).Inc()
		log.Warn().
			Str("error_class", string(errorClass)).
			Int("max_attempts", config.MaxAttempts).
			Msg("Retry attempts exhausted")
		return fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, config.MaxAttempts, lastErr)
	}

	return lastErr
}
