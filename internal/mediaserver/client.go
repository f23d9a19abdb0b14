package mediaserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"

	"github.com/glefebvre/mediadesk/internal/circuitbreaker"
	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/retry"
)

const (
	serviceName    = "mediaserver"
	defaultTimeout = 15 * time.Second

	// RequestIDHeader carries the correlation id of every outgoing call
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 4 << 10
)

// Client talks to the media server REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryCfg   retry.Config
	logger     *logger.Logger
	circuitBrk *circuitbreaker.CircuitBreaker
}

// Config holds media server client configuration
type Config struct {
	// BaseURL is the API root including the path prefix, e.g.
	// http://nas:8080/mediaserver
	BaseURL string
	Timeout time.Duration

	// RetryConfig applies to idempotent requests only
	RetryConfig *retry.Config

	// BreakerConfig overrides the default circuit breaker settings
	BreakerConfig *circuitbreaker.Config

	HTTPClient *http.Client
	Logger     *logger.Logger
}

// New creates a new media server client
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.AppLogger()
	}

	retryCfg := retry.DefaultConfig()
	if cfg.RetryConfig != nil {
		retryCfg = *cfg.RetryConfig
	}

	brkCfg := circuitbreaker.Config{
		Name:         serviceName,
		MaxFailures:  5,
		Timeout:      30 * time.Second,
		IsSuccessful: breakerSuccess,
	}
	if cfg.BreakerConfig != nil {
		brkCfg = *cfg.BreakerConfig
		if brkCfg.IsSuccessful == nil {
			brkCfg.IsSuccessful = breakerSuccess
		}
	}
	log := cfg.Logger
	if brkCfg.OnStateChange == nil {
		brkCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
			log.WithFields(map[string]interface{}{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		retryCfg:   retryCfg,
		logger:     cfg.Logger,
		circuitBrk: circuitbreaker.New(brkCfg),
	}
}

// Breaker reports the circuit breaker state and the consecutive failures
// counted against the media server.
func (c *Client) Breaker() (circuitbreaker.State, uint) {
	return c.circuitBrk.State(), c.circuitBrk.Failures()
}

// BaseURL returns the API root the client was configured with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// breakerSuccess treats rejections of the request itself as healthy
// responses so they never open the circuit.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	switch apperrors.GetErrorCode(err) {
	case apperrors.CodeNotFound, apperrors.CodeInvalidInput,
		apperrors.CodeUnauthorized, apperrors.CodeValidation,
		apperrors.CodeMalformedData:
		return true
	}
	return false
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Status     int
	Body       string
	retryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// RetryAfter returns the delay requested by the server, if any
func (e *StatusError) RetryAfter() time.Duration {
	return e.retryAfter
}

// request describes one API call
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
}

func (r request) idempotent() bool {
	return r.method != http.MethodPost
}

// do performs the request through the circuit breaker, retrying idempotent
// calls on transient failures, and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeInvalidInput, "failed to encode request body")
		}
	}

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	requestURL := c.baseURL + r.path
	if len(r.query) > 0 {
		requestURL += "?" + r.query.Encode()
	}

	operation := func() error {
		return c.circuitBrk.ExecuteContext(ctx, func(ctx context.Context) error {
			return c.roundTrip(ctx, r.method, requestURL, requestID, payload, out)
		})
	}

	retryCfg := c.retryCfg
	if !r.idempotent() {
		retryCfg = retryCfg.WithAttempts(1)
	}
	retryCfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		c.logger.WithFields(map[string]interface{}{
			"endpoint":   r.path,
			"method":     r.method,
			"attempt":    attempt,
			"wait_ms":    wait.Milliseconds(),
			"request_id": requestID,
			"error":      err,
		}).Debug("retrying media server request")
	}

	err := retry.Do(ctx, retryCfg, operation, apperrors.IsRetryable)
	if err != nil {
		err = c.classify(err).
			WithContext("endpoint", r.path).
			WithContext("method", r.method).
			WithContext("request_id", requestID)
		c.logger.WithFields(map[string]interface{}{
			"endpoint":   r.path,
			"method":     r.method,
			"request_id": requestID,
			"error":      err,
		}).WarnContext(ctx, "media server request failed")
		return err
	}

	c.logger.WithFields(map[string]interface{}{
		"endpoint":   r.path,
		"method":     r.method,
		"request_id": requestID,
	}).Debug("media server request succeeded")
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, requestURL, requestID string, payload []byte, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{
			Status:     resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		return apperrors.Wrap(statusErr, apperrors.FromStatus(resp.StatusCode), "media server rejected request").
			WithContext("status", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedData, "failed to decode response")
	}
	return nil
}

// classify makes sure every error leaving the client is an AppError
func (c *Client) classify(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, circuitbreaker.ErrOpenState) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return apperrors.ExternalServiceError(serviceName, "media server temporarily disabled", err)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.CodeInternal, "request cancelled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.CodeServiceTimeout, "request timed out")
	}
	return apperrors.ExternalServiceError(serviceName, "request failed", err)
}

func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.Wrap(err, apperrors.CodeServiceTimeout, "media server timed out")
	}
	return apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "media server unreachable")
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
