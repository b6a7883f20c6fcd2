package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediastudio/internal/logging"
	"mediastudio/internal/services"
)

const (
	defaultBaseURL        = "http://localhost:8000"
	defaultHTTPTimeout    = 30 * time.Second
	defaultHealthTimeout  = 5 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

// Config captures the backend endpoints and timeouts.
type Config struct {
	BaseURL              string
	WSURL                string
	TimeoutSeconds       int
	HealthTimeoutSeconds int
}

// Client issues requests against the media platform backend.
type Client struct {
	cfg           Config
	httpClient    *http.Client
	healthTimeout time.Duration
	logger        *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for retry and failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMaxAttempts overrides the total attempt budget (defaults to 3).
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithBaseDelay overrides the backoff base (defaults to 1s).
func WithBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = delay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New constructs a client using the supplied configuration.
func New(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	healthTimeout := defaultHealthTimeout
	if cfg.HealthTimeoutSeconds > 0 {
		healthTimeout = time.Duration(cfg.HealthTimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:              strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			WSURL:                strings.TrimRight(strings.TrimSpace(cfg.WSURL), "/"),
			TimeoutSeconds:       cfg.TimeoutSeconds,
			HealthTimeoutSeconds: cfg.HealthTimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		healthTimeout:    healthTimeout,
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.WSURL == "" {
		client.cfg.WSURL = websocketBase(client.cfg.BaseURL)
	}
	client.logger = logging.NewComponentLogger(client.logger, "apiclient")
	return client
}

// BaseURL returns the normalized HTTP base URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// TelemetryURL returns the WebSocket URL of the telemetry stream.
func (c *Client) TelemetryURL() string {
	return c.cfg.WSURL + "/ws/telemetry"
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	kind := "client error"
	if e.StatusCode >= http.StatusInternalServerError {
		kind = "server error"
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return fmt.Sprintf("%s: %d %s", kind, e.StatusCode, text)
	}
	return fmt.Sprintf("%s: %d", kind, e.StatusCode)
}

// Unwrap exposes the taxonomy marker so services.Classify sees 4xx as
// terminal and 5xx as transient.
func (e *StatusError) Unwrap() error {
	if e.StatusCode >= http.StatusInternalServerError {
		return services.ErrTransient
	}
	return services.ErrClient
}

// request describes one logical call; the encoded body is replayed on every
// attempt.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func jsonRequest(op, method, path string, payload any) (request, error) {
	req := request{op: op, method: method, path: path}
	if payload == nil {
		return req, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("encode body: %w", err)
	}
	req.body = encoded
	req.contentType = "application/json"
	return req, nil
}

func multipartRequest(op, path, fileField string, file Upload, fields map[string]string) (request, error) {
	req := request{op: op, method: http.MethodPost, path: path}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fileField, file.Filename)
	if err != nil {
		return req, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return req, fmt.Errorf("write form file: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return req, fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return req, fmt.Errorf("close multipart body: %w", err)
	}
	req.body = buf.Bytes()
	req.contentType = writer.FormDataContentType()
	return req, nil
}

// send runs the retry loop and returns the body of the first 2xx response.
func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	logger := logging.WithContext(ctx, c.logger).With(logging.String(logging.FieldEndpoint, req.path))

	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		body, err := c.sendOnce(ctx, req, requestID)
		if err == nil {
			if attempt > 0 {
				logger.Info("request recovered", logging.Int(logging.FieldAttempt, attempt+1))
			}
			return body, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			break
		}
		logger.Warn("request failed; retrying",
			logging.Int(logging.FieldAttempt, attempt+1),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	logging.WarnWithContext(logger, "request failed", "request_failed",
		logging.Error(lastErr),
		logging.String(logging.FieldErrorHint, "check backend availability at "+c.cfg.BaseURL),
	)
	return nil, lastErr
}

func (c *Client) sendOnce(ctx context.Context, req request, requestID string) ([]byte, error) {
	endpoint, err := c.endpoint(req.path, req.query)
	if err != nil {
		return nil, err
	}
	var reader io.Reader
	if req.body != nil {
		reader = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint, nil
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt+1 >= maxAttempts || err == nil {
		return 0, false
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return 0, false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
		return 0, false
	}
	return c.backoffDelay(attempt), true
}

// backoffDelay returns base*2^attempt for the 0-indexed attempt that failed.
func (c *Client) backoffDelay(attempt int) time.Duration {
	if c.retryBaseDelay <= 0 {
		return 0
	}
	return c.retryBaseDelay << attempt
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func websocketBase(httpBase string) string {
	switch {
	case strings.HasPrefix(httpBase, "https://"):
		return "wss://" + strings.TrimPrefix(httpBase, "https://")
	case strings.HasPrefix(httpBase, "http://"):
		return "ws://" + strings.TrimPrefix(httpBase, "http://")
	default:
		return httpBase
	}
}
