package linkerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

const maxAttempts = 3

// Client talks to a running linker server
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
}

// NewClient creates a client that sends at most requestsPerSecond requests
func NewClient(baseURL string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 5),
		backoff:     exponentialBackoff,
	}
}

// SetDebug toggles request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// Predict scores a pair of listings
func (c *Client) Predict(ctx context.Context, request *domain.PredictRequest) (*domain.PredictResponse, error) {
	var response domain.PredictResponse
	if err := c.post(ctx, "/api/v1/linker/predict", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CompareVendors asks the server to sample and score one listing per vendor
func (c *Client) CompareVendors(ctx context.Context, vendor1, vendor2 string) (*domain.VendorComparison, error) {
	var response domain.VendorComparison
	request := domain.VendorCompareRequest{Vendor1: vendor1, Vendor2: vendor2}
	if err := c.post(ctx, "/api/v1/vendors/compare", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// post sends body as JSON, retrying transport failures and 5xx/429 responses
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	reqURL := c.baseURL + path

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		status, respBody, err := c.doRequest(ctx, reqURL, payload)
		if err != nil {
			log.Printf("[LINKER] request error (attempt %d): %v", attempt, err)
			lastErr = err
		} else {
			if c.debug {
				log.Printf("[LINKER] POST %s -> %d %s", path, status, string(respBody))
			}
			switch {
			case status == http.StatusOK:
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
				return nil
			case status == http.StatusTooManyRequests || status >= 500:
				lastErr = statusError(domain.ErrLinkerAPIFailure, status, respBody)
				log.Printf("[LINKER] server error (attempt %d): %v", attempt, lastErr)
			case status == http.StatusNotFound:
				return statusError(domain.ErrVendorNotFound, status, respBody)
			case status == http.StatusBadRequest:
				return statusError(domain.ErrInvalidRequest, status, respBody)
			default:
				return statusError(domain.ErrLinkerAPIFailure, status, respBody)
			}
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}
	}

	log.Printf("[LINKER] all retries failed for %s", path)
	return lastErr
}

// doRequest executes a JSON POST and returns status and body
func (c *Client) doRequest(ctx context.Context, reqURL string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "persona-linker/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrLinkerAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", domain.ErrLinkerAPIFailure, err)
	}
	return resp.StatusCode, body, nil
}

func statusError(kind error, status int, body []byte) error {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && (eb.Message != "" || eb.Error != "") {
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		return fmt.Errorf("%w: status %d: %s", kind, status, msg)
	}
	return fmt.Errorf("%w: status %d", kind, status)
}

var _ domain.LinkerAPI = (*Client)(nil)
