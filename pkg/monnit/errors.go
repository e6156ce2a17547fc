package monnit

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 throttling responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents transport and timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError represents a Monnit API failure with additional context.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("monnit %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("monnit %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes an HTTP status code for observability and retry
// decisions. Transport failures are classified before a status exists.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 429:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// shouldRetry determines if an error class is worth another attempt.
// 4xx errors are not: the request itself is wrong and repeating it only
// burns the provider's patience.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
