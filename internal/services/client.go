package services

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/lineup/internal/shared"
)

// NewHTTPClient returns the HTTP client used to reach the remote backend.
//
// When cfg names a token URL and client ID the client authenticates with OAuth2 client credentials,
// fetching and refreshing tokens as needed. Requests time out after cfg.Timeout().
func NewHTTPClient(ctx context.Context, cfg shared.BackendConfig) *http.Client {
	base := &http.Client{Timeout: cfg.Timeout()}
	if cfg.TokenURL == "" || cfg.ClientID == "" {
		return base
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}

	client := cc.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	client.Timeout = cfg.Timeout()
	return client
}

// NewBackendClientFromConfig wires a [BackendClient] for cfg.
func NewBackendClientFromConfig(ctx context.Context, cfg shared.BackendConfig) *BackendClient {
	return NewBackendClient(NewAPIService(cfg.BaseURL, NewHTTPClient(ctx, cfg)))
}
