package client

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrQuotaExhausted is returned when the daily quota is spent, either
	// according to the local ledger or because the API said so.
	ErrQuotaExhausted = errors.New("daily quota exhausted")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx errors that will not go away on retry.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 and per-user rate limit answers.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassQuota represents an exhausted daily quota.
	ErrorClassQuota ErrorClass = "quota"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError is a failed Data API (or inference API) call.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	// Reason is the first reason from the Google error envelope, e.g.
	// "commentsDisabled" or "quotaExceeded".
	Reason  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = e.Reason + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("api %s error (status %d): %s: %v", e.ErrorClass, e.StatusCode, msg, e.Err)
	}
	return fmt.Sprintf("api %s error (status %d): %s", e.ErrorClass, e.StatusCode, msg)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// HasReason reports whether err is an APIError with the given reason.
func HasReason(err error, reason string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Reason == reason
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		// Client and quota errors only burn more quota when repeated.
		return false
	}
}

// ClassifyStatus maps an HTTP status and Google error reason to a class.
func ClassifyStatus(status int, reason string) ErrorClass {
	switch reason {
	case "quotaExceeded", "dailyLimitExceeded":
		return ErrorClassQuota
	case "rateLimitExceeded", "userRateLimitExceeded":
		return ErrorClassRateLimit
	}

	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 500:
		return ErrorClassServer
	case status >= 400:
		return ErrorClassClient
	default:
		return ""
	}
}

// Classify returns the class of err. Errors that are not APIErrors are
// treated as network failures.
func Classify(err error) ErrorClass {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	if errors.Is(err, ErrQuotaExhausted) {
		return ErrorClassQuota
	}
	return ErrorClassNetwork
}

// CheckResponse turns a non-2xx response into an *APIError. It consumes the
// body of failed responses.
func CheckResponse(resp *http.Response) error {
	err := googleapi.CheckResponse(resp)
	if err == nil {
		return nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
		Err:        err,
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Message != "" {
			apiErr.Message = gerr.Message
		}
		if len(gerr.Errors) > 0 {
			apiErr.Reason = gerr.Errors[0].Reason
		}
	}

	apiErr.ErrorClass = ClassifyStatus(resp.StatusCode, apiErr.Reason)
	return apiErr
}
