package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

// APIService makes JSON requests against a lineup REST backend.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the backend at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:3000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{baseURL: baseURL, httpClient: client}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// APIError is a non-2xx response decoded from the backend's error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap exposes the sentinel the error code stands for.
func (e *APIError) Unwrap() error {
	if e.Code == "" || e.Code == shared.CodeInternal {
		if e.StatusCode >= http.StatusInternalServerError {
			return shared.ErrServiceUnavailable
		}
		return shared.ErrAPIRequest
	}
	return shared.ErrorFromCode(e.Code, e.Message)
}

// Get decodes the JSON response of a GET request into out.
func (a *APIService) Get(ctx context.Context, path string, out any) error {
	return a.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends in as JSON and decodes the response into out.
func (a *APIService) Post(ctx context.Context, path string, in, out any) error {
	return a.Do(ctx, http.MethodPost, path, in, out)
}

// Patch sends in as JSON and decodes the response into out.
func (a *APIService) Patch(ctx context.Context, path string, in, out any) error {
	return a.Do(ctx, http.MethodPatch, path, in, out)
}

// Delete performs a DELETE request.
func (a *APIService) Delete(ctx context.Context, path string) error {
	return a.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do performs a request, returning an [*APIError] for non-2xx responses. A nil out discards the body.
func (a *APIService) Do(ctx context.Context, method, path string, in, out any) error {
	resp, err := a.Raw(ctx, method, path, in)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body models.ErrorBody
		if json.Unmarshal(resp.Body, &body) == nil && body.Error != "" {
			apiErr.Code = body.Code
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s %s response: %v", shared.ErrAPIRequest, method, path, err)
	}
	return nil
}

// Raw performs a request and returns the response without interpreting its status.
func (a *APIService) Raw(ctx context.Context, method, path string, in any) (*APIResponse, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrTimeout, method, path, err)
		}
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrServiceUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}, nil
}
