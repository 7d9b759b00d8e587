package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		errorClass ErrorClass
		expected   bool
	}{
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassQuota, false},
		{ErrorClassNetwork, true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorClass), func(t *testing.T) {
			if got := shouldRetry(tt.errorClass); got != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, got, tt.expected)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		reason   string
		expected ErrorClass
	}{
		{"quota exceeded", 403, "quotaExceeded", ErrorClassQuota},
		{"daily limit", 403, "dailyLimitExceeded", ErrorClassQuota},
		{"rate limit reason", 403, "rateLimitExceeded", ErrorClassRateLimit},
		{"too many requests", 429, "", ErrorClassRateLimit},
		{"comments disabled", 403, "commentsDisabled", ErrorClassClient},
		{"not found", 404, "", ErrorClassClient},
		{"server error", 500, "", ErrorClassServer},
		{"unavailable", 503, "backendError", ErrorClassServer},
		{"success", 200, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStatus(tt.status, tt.reason); got != tt.expected {
				t.Errorf("ClassifyStatus(%d, %q) = %q, want %q", tt.status, tt.reason, got, tt.expected)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	apiErr := &APIError{StatusCode: 500, ErrorClass: ErrorClassServer}

	if got := Classify(fmt.Errorf("wrapped: %w", apiErr)); got != ErrorClassServer {
		t.Errorf("Classify(wrapped APIError) = %q", got)
	}
	if got := Classify(io.ErrUnexpectedEOF); got != ErrorClassNetwork {
		t.Errorf("Classify(io error) = %q, want network", got)
	}
	if got := Classify(ErrQuotaExhausted); got != ErrorClassQuota {
		t.Errorf("Classify(ErrQuotaExhausted) = %q, want quota", got)
	}
	if got := Classify(nil); got != "" {
		t.Errorf("Classify(nil) = %q", got)
	}
}

func TestCheckResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusForbidden,
		Status:     "403 Forbidden",
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(quotaExceededBody)),
	}

	err := CheckResponse(resp)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("CheckResponse() = %v, want *APIError", err)
	}
	if apiErr.Reason != "quotaExceeded" {
		t.Errorf("Reason = %q", apiErr.Reason)
	}
	if apiErr.ErrorClass != ErrorClassQuota {
		t.Errorf("ErrorClass = %q", apiErr.ErrorClass)
	}
	if !strings.Contains(apiErr.Message, "exceeded your quota") {
		t.Errorf("Message = %q", apiErr.Message)
	}

	ok := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}
	if err := CheckResponse(ok); err != nil {
		t.Errorf("CheckResponse(200) = %v", err)
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name: "with reason and wrapped error",
			err: &APIError{
				StatusCode: 403,
				ErrorClass: ErrorClassClient,
				Reason:     "commentsDisabled",
				Message:    "comments are disabled",
				Err:        errors.New("googleapi"),
			},
			expected: "api client error (status 403): commentsDisabled: comments are disabled: googleapi",
		},
		{
			name:     "plain",
			err:      &APIError{StatusCode: 500, ErrorClass: ErrorClassServer, Message: "backend"},
			expected: "api server error (status 500): backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	wrapped := errors.New("wrapped error")
	apiErr := &APIError{StatusCode: 500, ErrorClass: ErrorClassServer, Err: wrapped}

	if !errors.Is(apiErr, wrapped) {
		t.Error("errors.Is should work with wrapped error")
	}
	if (&APIError{}).Unwrap() != nil {
		t.Error("Unwrap() of empty error should be nil")
	}
}

func TestHasReason(t *testing.T) {
	err := fmt.Errorf("video v1: %w", &APIError{Reason: "commentsDisabled"})
	if !HasReason(err, "commentsDisabled") {
		t.Error("HasReason should see through wrapping")
	}
	if HasReason(err, "quotaExceeded") {
		t.Error("HasReason matched wrong reason")
	}
	if HasReason(errors.New("plain"), "commentsDisabled") {
		t.Error("HasReason matched non-API error")
	}
}
