// Package identity resolves OAuth2 authorization codes into local user records.
package identity

import (
	"context"

	"proxyshare/internal/config"

	"golang.org/x/oauth2"
)

// Exchanger swaps an authorization code for an access token.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
}

// Provider wraps the external OAuth2 provider endpoints.
type Provider struct {
	oauth *oauth2.Config
}

// NewProvider builds a Provider from the application configuration.
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
	}
}

// AuthCodeURL returns the provider authorize URL the browser is redirected to.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange swaps the callback code for an access token at the token endpoint.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
