package monnit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1", config.MaxAttempts)
	}
	if config.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", config.BackoffMultiplier)
	}
}

func TestRetryWithBackoff_SingleAttemptByDefault(t *testing.T) {
	calls := 0
	failure := &APIError{StatusCode: 500, ErrorClass: ErrorClassServer, Message: "boom"}

	err := retryWithBackoff(context.Background(), DefaultRetryConfig(), func() error {
		calls++
		return failure
	}, classifyError)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, error(failure)) {
		t.Errorf("err = %v, want the original failure", err)
	}
}

func TestRetryWithBackoff_RetriesServerErrors(t *testing.T) {
	calls := 0

	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		if calls < 3 {
			return &APIError{StatusCode: 503, ErrorClass: ErrorClassServer, Message: "unavailable"}
		}
		return nil
	}, classifyError)

	if err != nil {
		t.Errorf("err = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithBackoff_NoRetryOnClientError(t *testing.T) {
	calls := 0
	failure := &APIError{StatusCode: 401, ErrorClass: ErrorClassClient, Message: "unauthorized"}

	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return failure
	}, classifyError)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorClass != ErrorClassClient {
		t.Errorf("err = %v, want the client error unchanged", err)
	}
}

func TestRetryWithBackoff_Exhaustion(t *testing.T) {
	calls := 0

	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return &APIError{StatusCode: 500, ErrorClass: ErrorClassServer, Message: "boom"}
	}, classifyError)

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("err = %v, want ErrRetryExhausted", err)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Minute,
		MaxBackoff:        time.Minute,
		BackoffMultiplier: 2.0,
	}

	done := make(chan error, 1)
	go func() {
		done <- retryWithBackoff(ctx, config, func() error {
			return &APIError{StatusCode: 500, ErrorClass: ErrorClassServer, Message: "boom"}
		}, classifyError)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrContextCancelled) {
			t.Errorf("err = %v, want ErrContextCancelled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}
