package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guerinoni/ghn/internal/model"
)

// Header values every GitHub REST call carries.
const (
	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API root (e.g., https://api.github.com).
	BaseURL string

	// Token is the OAuth or personal access token. When empty, requests
	// are sent without an Authorization header.
	Token string

	// UserAgent identifies the client to GitHub.
	UserAgent string

	// Timeout bounds a single round trip. Zero means 30 seconds.
	Timeout time.Duration

	// HTTPClient replaces the default client; used by tests.
	HTTPClient *http.Client
}

// Client is a thin HTTP client for the GitHub REST API.
// It handles Bearer token authentication, the required GitHub headers,
// and JSON deserialization. It never retries.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a new GitHub HTTP client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = model.DefaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "ghn"
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		token:      opts.Token,
		userAgent:  userAgent,
		httpClient: hc,
	}
}

// Authenticated reports whether the client has a token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, result)
}

// Patch performs an HTTP PATCH request without a body.
func (c *Client) Patch(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodPatch, path, nil)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// do is the core HTTP method that builds the request, sets the GitHub
// headers, classifies failures into typed errors, and decodes JSON.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	result interface{},
) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{
			Method: method,
			Path:   path,
			Err:    fmt.Errorf("reading response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
		var ghErr errorResponse
		if json.Unmarshal(body, &ghErr) == nil {
			apiErr.Message = ghErr.Message
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthError{APIError: apiErr}
		}
		return &apiErr
	}

	// No content to parse (e.g. 205 from PATCH, 204 from DELETE).
	if result == nil || resp.StatusCode == http.StatusNoContent ||
		resp.StatusCode == http.StatusResetContent {
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &DecodeError{Method: method, Path: path, Err: err}
	}

	return nil
}
