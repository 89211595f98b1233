// Package client is the Go SDK for the solubility prediction API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

const Version = "1.0.0"

// Logger is the minimal logging contract used by the client.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// Client talks to a running prediction service.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// APIError is a non-2xx response decoded into the service's error body.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sol: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool    { return e.StatusCode == http.StatusNotFound }
func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }
func (e *APIError) IsServerError() bool { return e.StatusCode >= 500 && e.StatusCode < 600 }

// NewClient validates the base URL and builds a client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("sol: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("sol: invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("sol: base URL scheme must be http or https")
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    fmt.Sprintf("sol-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Predict requests one LogS prediction.
func (c *Client) Predict(ctx context.Context, req ptypes.Request) (*ptypes.Response, error) {
	var resp ptypes.Response
	if err := c.post(ctx, "/api/v1/predict", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PredictBatch requests predictions for a batch sharing one forward pass.
func (c *Client) PredictBatch(ctx context.Context, reqs []ptypes.Request) ([]ptypes.Response, error) {
	body := struct {
		Requests []ptypes.Request `json:"requests"`
	}{Requests: reqs}
	var resp struct {
		Results []ptypes.Response `json:"results"`
	}
	if err := c.post(ctx, "/api/v1/predict/batch", body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// AnalyzeSolvents ranks the catalogue solvents for a solute and returns the
// temperature heatmap grid.
func (c *Client) AnalyzeSolvents(ctx context.Context, req ptypes.AnalysisRequest) (*ptypes.AnalysisResponse, error) {
	var resp ptypes.AnalysisResponse
	if err := c.post(ctx, "/api/v1/solvents/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Solvents lists the solvent catalogue.
func (c *Client) Solvents(ctx context.Context) ([]ptypes.Solvent, error) {
	var resp struct {
		Solvents []ptypes.Solvent `json:"solvents"`
	}
	if err := c.get(ctx, "/api/v1/solvents", &resp); err != nil {
		return nil, err
	}
	return resp.Solvents, nil
}

// History lists stored predictions for one solute, newest first.
func (c *Client) History(ctx context.Context, soluteSMILES string, limit int) ([]ptypes.Event, error) {
	path := "/api/v1/predictions?solute=" + url.QueryEscape(soluteSMILES)
	if limit > 0 {
		path += "&limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Predictions []ptypes.Event `json:"predictions"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Predictions, nil
}

// Health reports the service's liveness state.
func (c *Client) Health(ctx context.Context) (*ptypes.HealthResponse, error) {
	var resp ptypes.HealthResponse
	if err := c.get(ctx, "/healthz", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do performs one request with retries on network and 5xx failures.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	fullURL := c.baseURL + path

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sol: failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.backoff(attempt)
			c.logger.Debugf("retry %d after %v", attempt, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("sol: failed to create request: %w", err)
		}

		requestID := uuid.NewString()
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Errorf("request failed: %v", err)
			lastErr = err
			continue
		}
		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("sol: failed to read response body: %w", err)
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}
			if len(respBody) > 0 {
				if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil {
					apiErr.Message = string(respBody)
				}
			}
			lastErr = apiErr
			if apiErr.IsServerError() || apiErr.IsRateLimited() {
				continue
			}
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("sol: failed to unmarshal response: %w", err)
			}
		}
		return nil
	}
	return lastErr
}

func (c *Client) backoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	jitter := time.Duration(rand.Int63n(int64(backoff/4) + 1))
	return backoff + jitter
}
