// Package remote wraps the clinic's visit-records API with a resilient
// request client: per-call timeout, bounded retry on timeout, and in-flight
// telemetry on every call.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultBackoff     = 250 * time.Millisecond
	defaultUserAgent   = "clinic-booking/0.1"
)

var (
	// ErrTimeout is returned once the retry budget for a call is exhausted.
	ErrTimeout = errors.New("remote: request timed out")
	// ErrNetwork is a connectivity failure distinct from timeout.
	ErrNetwork = errors.New("remote: network failure")
)

// APIError is a non-2xx response from the visit-records API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote: api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("remote: api error %d: %s", e.StatusCode, e.Message)
}

// Telemetry observes every remote call, success or failure.
type Telemetry interface {
	CallStarted(operation string)
	CallFinished(operation, status string, elapsed time.Duration)
}

// Config controls how the client behaves.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	HTTPClient  *http.Client
	Logger      *logging.Logger
	Telemetry   Telemetry
	UserAgent   string
}

// Client wraps the visit-records API endpoints consumed by the scheduling core.
type Client struct {
	baseURL     string
	apiKey      string
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	httpClient  *http.Client
	logger      *logging.Logger
	telemetry   Telemetry
	userAgent   string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("remote: base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		httpClient:  httpClient,
		logger:      logger,
		telemetry:   cfg.Telemetry,
		userAgent:   userAgent,
	}, nil
}

// invoke performs one logical call: timeout per attempt, retry on timeout
// only, at most maxAttempts attempts. Telemetry brackets the whole call, not
// each attempt.
func (c *Client) invoke(ctx context.Context, operation, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: marshal %s body: %w", operation, err)
		}
	}

	if c.telemetry != nil {
		c.telemetry.CallStarted(operation)
	}
	start := time.Now()
	status := "ok"
	defer func() {
		if c.telemetry != nil {
			c.telemetry.CallFinished(operation, status, time.Since(start))
		}
	}()

	fullURL := c.buildURL(path, query)
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		data, err := c.attempt(ctx, method, fullURL, payload)
		if err == nil {
			if out == nil || len(data) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				status = "decode_error"
				return fmt.Errorf("remote: decode %s response: %w", operation, err)
			}
			return nil
		}

		if ctx.Err() != nil {
			status = "canceled"
			return ctx.Err()
		}
		if !isTimeout(err) {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				status = "api_error"
				return err
			}
			status = "network_error"
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		lastErr = err
		if attempt < c.maxAttempts {
			c.logger.Warn("remote: attempt timed out, retrying",
				"operation", operation, "attempt", attempt)
			if err := c.sleep(ctx, attempt); err != nil {
				status = "canceled"
				return err
			}
		}
	}

	status = "timeout"
	return fmt.Errorf("%w after %d attempts: %v", ErrTimeout, c.maxAttempts, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, fullURL string, payload []byte) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(callCtx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	return nil, decodeAPIError(resp.StatusCode, data)
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full = full + "?" + query.Encode()
	}
	return full
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<(attempt-1))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func decodeAPIError(statusCode int, data []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Message: strings.TrimSpace(string(data))}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
