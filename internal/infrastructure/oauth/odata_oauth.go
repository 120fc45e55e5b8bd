package oauth

import (
	"context"
	"net/http"
	"time"

	"flightdesk-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ODataOAuth handles client-credentials authentication for an OData service
type ODataOAuth struct {
	config *clientcredentials.Config
	logger logger.Logger
}

// NewODataOAuth creates a new OData OAuth handler
func NewODataOAuth(clientID, clientSecret, tokenURL string, scopes []string, logger logger.Logger) *ODataOAuth {
	return &ODataOAuth{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		logger: logger,
	}
}

// Enabled reports whether credentials were configured
func (o *ODataOAuth) Enabled() bool {
	return o.config.ClientID != "" && o.config.TokenURL != ""
}

// GetTokenSource returns a caching token source for the service
func (o *ODataOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	return o.config.TokenSource(ctx)
}

// HTTPClient returns a client that authenticates every request. Without
// credentials it returns a plain client.
func (o *ODataOAuth) HTTPClient(ctx context.Context, timeout time.Duration) *http.Client {
	if !o.Enabled() {
		o.logger.Debug("OData credentials not configured, using anonymous client")
		return &http.Client{Timeout: timeout}
	}

	client := oauth2.NewClient(ctx, o.GetTokenSource(ctx))
	client.Timeout = timeout
	return client
}
