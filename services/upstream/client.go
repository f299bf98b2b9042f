// Package upstream is the client for the partnership REST API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/utils"
	"github.com/sahilchouksey/partner-hub/utils/auth"
	"github.com/sahilchouksey/partner-hub/utils/metrics"
)

const (
	// DefaultTimeout is the default HTTP client timeout for API calls
	DefaultTimeout = 30 * time.Second
	// maxErrorBody caps how much of an error response is read
	maxErrorBody = 64 << 10
)

// ErrTransport wraps failures to reach the partnership API at all.
var ErrTransport = errors.New("partnership API unreachable")

// APIError is a non-2xx reply from the partnership API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("partnership API returned status %d", e.StatusCode)
}

// HTTPStatus implements response.StatusError.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// IsNotFound reports whether err is a 404 from the partnership API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client handles all partnership API interactions. Every call is a single
// attempt; nothing is retried.
type Client struct {
	baseURL      string
	defaultToken string
	httpClient   *http.Client
	log          *zap.Logger
}

// Config holds configuration for the partnership API client
type Config struct {
	BaseURL string
	// Token is used when the request context carries no caller token.
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a new partnership API client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = utils.Log
	}

	return &Client{
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		defaultToken: config.Token,
		httpClient:   httpClient,
		log:          logger.Named("upstream"),
	}
}

// doRequest performs one HTTP request against the partnership API and
// decodes a JSON reply into result (when non-nil).
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body interface{}, result interface{}) error {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(ctx, req)

	requestID := utils.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set("X-Request-ID", requestID)

	log := c.log.With(zap.String("method", method), zap.String("endpoint", endpoint), zap.String("request_id", requestID))

	route := routeLabel(endpoint)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(method, route, "transport_error", time.Since(start))
		log.Warn("partnership API request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamRequest(method, route, "status_"+strconv.Itoa(resp.StatusCode), time.Since(start))
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		log.Info("partnership API rejected request", zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return apiErr
	}
	metrics.RecordUpstreamRequest(method, route, "ok", time.Since(start))

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// routeLabel collapses IDs so metric labels stay bounded: "/partnership/42" -> "/partnership/:id".
func routeLabel(endpoint string) string {
	parts := strings.Split(strings.TrimPrefix(endpoint, "/"), "/")
	if len(parts) > 1 && (parts[0] == "partnership" || parts[0] == "users") {
		return "/" + parts[0] + "/:id"
	}
	return endpoint
}

// authorize attaches the caller's bearer token, falling back to the service
// token. Without either the request goes out unauthenticated.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	token := auth.TokenFromContext(ctx)
	if token == "" {
		token = c.defaultToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// readErrorMessage pulls a short message out of an error body shaped
// {"error": "..."} or {"message": "..."}.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}

	if len(payload.Error) > 0 {
		var s string
		if json.Unmarshal(payload.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return payload.Message
}
