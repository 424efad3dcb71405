package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			client := &http.Client{}
			srv := NewAPIService("http://example.com", client)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != client {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Defaults", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != "http://127.0.0.1:3000" {
				t.Errorf("expected default baseURL, got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get decodes JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/test" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		}))
		defer server.Close()

		var out struct{ Status string }
		if err := NewAPIService(server.URL, nil).Get(context.Background(), "/test", &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Status != "ok" {
			t.Errorf("expected status ok, got %q", out.Status)
		}
	})

	t.Run("Patch sends JSON body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
			}
			var body models.PositionsBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			if len(body.Updates) != 1 || body.Updates[0].NewPosition != 2 {
				t.Errorf("unexpected body %+v", body)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		in := models.PositionsBody{Updates: []models.PositionUpdate{{ID: "a", NewPosition: 2}}}
		if err := NewAPIService(server.URL, nil).Patch(context.Background(), "/p", in, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Error bodies map to sentinels", func(t *testing.T) {
		tc := []struct {
			name   string
			status int
			body   any
			want   error
		}{
			{name: "not found", status: 404, body: models.ErrorBody{Error: "event not found: e1", Code: shared.CodeNotFound}, want: shared.ErrNotFound},
			{name: "invalid input", status: 400, body: models.ErrorBody{Error: "bad", Code: shared.CodeInvalidInput}, want: shared.ErrInvalidInput},
			{name: "already linked", status: 409, body: models.ErrorBody{Error: "dup", Code: shared.CodeAlreadyLinked}, want: shared.ErrAlreadyLinked},
			{name: "internal", status: 500, body: models.ErrorBody{Error: "boom", Code: shared.CodeInternal}, want: shared.ErrServiceUnavailable},
			{name: "no body", status: 502, body: nil, want: shared.ErrServiceUnavailable},
			{name: "client error without code", status: 405, body: nil, want: shared.ErrAPIRequest},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if tt.body == nil {
						w.WriteHeader(tt.status)
						return
					}
					writeJSON(w, tt.status, tt.body)
				}))
				defer server.Close()

				err := NewAPIService(server.URL, nil).Get(context.Background(), "/x", nil)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}

				var apiErr *APIError
				if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
					t.Errorf("expected APIError with status %d, got %v", tt.status, err)
				}
			})
		}
	})

	t.Run("Invalid input keeps its type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 400, models.ErrorBody{Error: "duplicate member", Code: shared.CodeInvalidInput})
		}))
		defer server.Close()

		err := NewAPIService(server.URL, nil).Get(context.Background(), "/x", nil)
		var invalid *shared.InvalidInputError
		if !errors.As(err, &invalid) || invalid.Reason != "duplicate member" {
			t.Errorf("expected InvalidInputError, got %v", err)
		}
	})

	t.Run("Malformed success body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "not json")
		}))
		defer server.Close()

		var out map[string]any
		err := NewAPIService(server.URL, nil).Get(context.Background(), "/x", &out)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected API request error, got %v", err)
		}
	})

	t.Run("Unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		err := NewAPIService(url, nil).Get(context.Background(), "/x", nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected service unavailable, got %v", err)
		}
	})

	t.Run("Context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := NewAPIService(server.URL, nil).Get(ctx, "/slow", nil)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected timeout, got %v", err)
		}
	})
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("plain client without credentials", func(t *testing.T) {
		client := NewHTTPClient(context.Background(), shared.BackendConfig{TimeoutSeconds: 3})
		if client.Timeout != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", client.Timeout)
		}
		if client.Transport != nil {
			t.Error("expected default transport")
		}
	})

	t.Run("client credentials", func(t *testing.T) {
		var tokenRequests int
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenRequests++
			if err := r.ParseForm(); err != nil {
				t.Errorf("failed to parse token request: %v", err)
			}
			if r.Form.Get("grant_type") != "client_credentials" {
				t.Errorf("expected client_credentials grant, got %q", r.Form.Get("grant_type"))
			}
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "tok-1", "token_type": "bearer", "expires_in": 3600})
		}))
		defer tokenServer.Close()

		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("expected bearer token, got %q", got)
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		}))
		defer api.Close()

		cfg := shared.BackendConfig{BaseURL: api.URL, ClientID: "cli", ClientSecret: "secret", TokenURL: tokenServer.URL}
		backend := NewBackendClientFromConfig(context.Background(), cfg)

		for range 2 {
			if err := backend.Health(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if tokenRequests != 1 {
			t.Errorf("expected the token to be cached, got %d token requests", tokenRequests)
		}
	})
}
