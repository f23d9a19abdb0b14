package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "test error")
	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "test error" {
		t.Errorf("expected message 'test error', got %s", err.Message)
	}
	if err.Err != nil {
		t.Errorf("expected nil wrapped error, got %v", err.Err)
	}
}

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			err:      New(CodeValidation, "selection incompatible"),
			expected: "[VALIDATION_ERROR] selection incompatible",
		},
		{
			name:     "error with wrapped error",
			err:      Wrap(errors.New("inner"), CodeStore, "store error"),
			expected: "[STORE_ERROR] store error: inner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original")
	err := Wrap(originalErr, CodeStore, "wrapped")

	if unwrapped := err.Unwrap(); unwrapped != originalErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, originalErr)
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected errors.Is to find the original error")
	}
}

func TestAppErrorWithContext(t *testing.T) {
	err := New(CodeExternalService, "test").
		WithContext("endpoint", "/api/movie").
		WithContext("status", 502)

	if len(err.Context) != 2 {
		t.Errorf("expected 2 context items, got %d", len(err.Context))
	}
	if err.Context["endpoint"] != "/api/movie" {
		t.Errorf("expected endpoint context '/api/movie', got %v", err.Context["endpoint"])
	}
}

func TestExternalServiceError(t *testing.T) {
	originalErr := errors.New("timeout")
	err := ExternalServiceError("mediaserver", "request failed", originalErr)
	if err.Code != CodeExternalService {
		t.Errorf("expected code %s, got %s", CodeExternalService, err.Code)
	}
	if err.Context["service"] != "mediaserver" {
		t.Errorf("expected service context 'mediaserver', got %v", err.Context["service"])
	}
}

func TestConfigError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		originalErr := errors.New("file not found")
		err := ConfigError("config load failed", originalErr)
		if err.Code != CodeConfig {
			t.Errorf("expected code %s, got %s", CodeConfig, err.Code)
		}
		if err.Err != originalErr {
			t.Errorf("expected wrapped error to be original error")
		}
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := ConfigError("missing required field", nil)
		if err.Err != nil {
			t.Errorf("expected nil wrapped error, got %v", err.Err)
		}
	})
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorCode
	}{
		{http.StatusTooManyRequests, CodeRateLimited},
		{http.StatusUnauthorized, CodeUnauthorized},
		{http.StatusForbidden, CodeUnauthorized},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusBadRequest, CodeInvalidInput},
		{http.StatusBadGateway, CodeServiceUnavailable},
		{http.StatusServiceUnavailable, CodeServiceUnavailable},
		{http.StatusGatewayTimeout, CodeServiceTimeout},
		{http.StatusInternalServerError, CodeExternalService},
		{http.StatusOK, CodeUnknown},
	}

	for _, tt := range tests {
		if got := FromStatus(tt.status); got != tt.expected {
			t.Errorf("FromStatus(%d) = %s, want %s", tt.status, got, tt.expected)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "retryable service timeout",
			err:      Wrap(errors.New("timeout"), CodeServiceTimeout, "timeout"),
			expected: true,
		},
		{
			name:     "retryable service unavailable",
			err:      Wrap(errors.New("unavailable"), CodeServiceUnavailable, "unavailable"),
			expected: true,
		},
		{
			name:     "retryable rate limited",
			err:      Wrap(errors.New("rate limit"), CodeRateLimited, "rate limited"),
			expected: true,
		},
		{
			name:     "non-retryable validation error",
			err:      ValidationError("invalid"),
			expected: false,
		},
		{
			name:     "non-retryable not found",
			err:      NotFoundError("video", "12"),
			expected: false,
		},
		{
			name:     "non-app error",
			err:      errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "app error",
			err:      ValidationError("test"),
			expected: CodeValidation,
		},
		{
			name:     "service wrapper keeps specific cause",
			err:      ExternalServiceError("mediaserver", "failed", NotFoundError("video", "3")),
			expected: CodeNotFound,
		},
		{
			name:     "service wrapper without specific cause",
			err:      ExternalServiceError("mediaserver", "failed", errors.New("eof")),
			expected: CodeExternalService,
		},
		{
			name:     "standard error",
			err:      errors.New("standard"),
			expected: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	if !IsValidationError(ValidationError("mixed selection")) {
		t.Error("expected validation error to be detected")
	}
	if !IsValidationError(New(CodeInvalidInput, "bad")) {
		t.Error("expected invalid input to count as validation")
	}
	if IsValidationError(StoreError("x", nil)) {
		t.Error("store error is not a validation error")
	}
}
