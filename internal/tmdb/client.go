package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/reelkeep/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"

	defaultTimeout = 15 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// Config holds the connection settings for the catalog API
type Config struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string // v3 api_key query parameter
	AccessToken  string // v4 read access token (Bearer), preferred over APIKey
	Language     string // e.g. "en-US"
	AccountID    int64
	SessionID    string
	Timeout      time.Duration
}

// Client talks to the TMDB v3 API. It implements domain.CatalogRepository
// and domain.AccountRepository.
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	accessToken  string
	language     string
	accountID    int64
	sessionID    string
	httpClient   *http.Client
	logger       *slog.Logger
	retryDelay   time.Duration
}

// NewClient creates a new TMDB API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		accessToken:  cfg.AccessToken,
		language:     cfg.Language,
		accountID:    cfg.AccountID,
		sessionID:    cfg.SessionID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:     logger,
		retryDelay: baseRetryDelay,
	}
}

// SetSession installs account credentials obtained from an AuthFlow
func (c *Client) SetSession(s domain.Session) {
	c.accountID = s.AccountID
	c.sessionID = s.SessionID
}

// Authenticated reports whether account operations can be attempted
func (c *Client) Authenticated() bool {
	return c.accountID != 0 && c.sessionID != ""
}

// errorResponse is the error body TMDB returns alongside non-2xx statuses
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

// doRequest performs an authenticated HTTP request to the TMDB API.
// Includes retry logic with exponential backoff for 5xx and 429 responses.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.accessToken == "" && c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	if c.language != "" && method == http.MethodGet && query.Get("language") == "" {
		query.Set("language", c.language)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var bodyBytes []byte
	if payload != nil {
		var err error
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Check context before each attempt
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Wait before retry (exponential backoff)
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "path", path)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var body io.Reader
		if bodyBytes != nil {
			body = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json;charset=utf-8")
		}
		if c.accessToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.accessToken)
		}

		c.logger.Debug("tmdb request", "method", method, "path", path, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("tmdb request failed", "error", err, "path", path)
			return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrRemoteUnavailable, err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return respBody, nil

		case resp.StatusCode == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", domain.ErrAuthFailed, statusMessage(respBody))

		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, path)

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: server error %d: %s", domain.ErrRemoteUnavailable, resp.StatusCode, statusMessage(respBody))
			c.logger.Warn("tmdb server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", maxRetries,
				"path", path,
			)
			continue

		default:
			c.logger.Error("tmdb request error", "status", resp.StatusCode, "body", string(respBody), "path", path)
			return nil, fmt.Errorf("%w: unexpected status code %d: %s", domain.ErrRemoteUnavailable, resp.StatusCode, statusMessage(respBody))
		}
	}

	c.logger.Error("tmdb request failed after retries", "error", lastErr, "path", path)
	return nil, lastErr
}

// getJSON performs a GET and decodes the response into dest
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(body, dest)
}

// sendJSON performs a write request and decodes the response into dest (if non-nil)
func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, payload, dest any) error {
	body, err := c.doRequest(ctx, method, path, query, payload)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return decode(body, dest)
}

func decode(body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", domain.ErrRemoteUnavailable, err)
	}
	return nil
}

func statusMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil || e.StatusMessage == "" {
		return strings.TrimSpace(string(body))
	}
	return e.StatusMessage
}
