// API service for making raw HTTP requests to a menuboard server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/menuboard/internal/shared"
)

// APIService provides methods for making raw HTTP requests to a menuboard server.
type APIService struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the server at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// WithToken returns a copy of the service that sends token as a bearer token.
func (a *APIService) WithToken(token string) *APIService {
	cp := *a
	cp.token = token
	return &cp
}

// BaseURL returns the server address requests are sent to.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// ErrorMessage returns the "error" field of a JSON error body, or the raw body.
func (r *APIResponse) ErrorMessage() string {
	if m, ok := r.JSONData.(map[string]any); ok {
		if s, ok := m["error"].(string); ok {
			return s
		}
	}
	return string(bytes.TrimSpace(r.Body))
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

// Delete performs a DELETE request to the specified path and returns the raw response.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodDelete, path, nil)
}

// Login exchanges credentials for a session token through POST /api/session.
func (a *APIService) Login(ctx context.Context, email, password string) (*Session, error) {
	data, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, err := a.Post(ctx, "/api/session", data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, resp.ErrorMessage())
	case !resp.OK():
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrServiceUnavailable, resp.StatusCode, resp.ErrorMessage())
	}
	return decodeSession(resp)
}

// Session returns the session the token belongs to through GET /api/session.
func (a *APIService) Session(ctx context.Context) (*Session, error) {
	resp, err := a.Get(ctx, "/api/session")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, resp.ErrorMessage())
	case !resp.OK():
		return nil, fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}
	return decodeSession(resp)
}

// Logout revokes the token through DELETE /api/session.
func (a *APIService) Logout(ctx context.Context) error {
	resp, err := a.Delete(ctx, "/api/session")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, resp.ErrorMessage())
	case !resp.OK():
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// Health calls /healthz and returns the reported status.
func (a *APIService) Health(ctx context.Context) (string, error) {
	resp, err := a.Get(ctx, "/healthz")
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}
	if m, ok := resp.JSONData.(map[string]any); ok {
		if s, ok := m["status"].(string); ok {
			return s, nil
		}
	}
	return string(bytes.TrimSpace(resp.Body)), nil
}

func decodeSession(resp *APIResponse) (*Session, error) {
	var s Session
	if err := json.Unmarshal(resp.Body, &s); err != nil {
		return nil, fmt.Errorf("%w: invalid session response: %v", shared.ErrAPIRequest, err)
	}
	return &s, nil
}
