// Package storefront talks to the remote shop backend: catalog, orders and payments.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/gastroshop/storefront/internal/infrastructure/auth"
	"github.com/gastroshop/storefront/internal/infrastructure/telemetry"
)

// Adapter errors
var (
	ErrServiceUnavailable = errors.New("storefront: service unavailable")
	ErrRequestFailed      = errors.New("storefront: request failed")
)

// APIError is a non-2xx answer from the backend. It matches ErrRequestFailed.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("storefront: HTTP %d: %s - %s", e.StatusCode, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("storefront: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("storefront: HTTP %d", e.StatusCode)
}

// Is makes errors.Is(err, ErrRequestFailed) hold for every APIError
func (e *APIError) Is(target error) bool {
	return target == ErrRequestFailed
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Config holds the remote API settings
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryWait  time.Duration
	MaxRetries int
	Token      string
}

// Client is the shared HTTP transport for the catalog, order and payment adapters
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retryWait  time.Duration
	maxRetries int
	token      string
	logger     *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new backend client
func NewClient(cfg Config, logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("storefront: base URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		timeout:    cfg.Timeout,
		retryWait:  cfg.RetryWait,
		maxRetries: cfg.MaxRetries,
		token:      cfg.Token,
		logger:     logger.Named("storefront"),
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// doRequest sends one API call and returns the raw response body.
// GETs are retried on transport failures and 5xx answers; other methods are sent once.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, headers map[string]string) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("storefront: failed to marshal request: %w", err)
		}
	}

	ctx, span := telemetry.StartClientSpan(ctx, "storefront "+method+" "+path,
		"http.request.method", method,
		"url.path", path,
	)
	defer span.End()

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		respBody, err := c.send(ctx, method, path, payload, headers)
		if err == nil {
			return respBody, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return nil, backoff.Permanent(err)
		}
		c.logger.Warn("Backend call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return nil, err
	}

	retries := 0
	if method == http.MethodGet {
		retries = c.maxRetries
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryWait), uint64(retries)),
		ctx,
	)

	respBody, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return respBody, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("storefront: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrServiceUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Code = errResp.Code
			apiErr.Message = errResp.Error
			if apiErr.Message == "" {
				apiErr.Message = errResp.Message
			}
		}
		return nil, apiErr
	}

	return respBody, nil
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token := auth.TokenFromContext(ctx); token != "" {
		return token
	}
	return c.token
}

func (c *Client) decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storefront: failed to parse response: %w", err)
	}
	return nil
}
