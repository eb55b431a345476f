// Package mailprovider talks to the Google and Microsoft identity
// endpoints to verify email-provider access tokens.
package mailprovider

import (
	"context"

	"github.com/vekst-crm/crm-api/internal/config"
)

// UserInfo is the provider identity attached to an access token
type UserInfo struct {
	Email string
	Name  string
}

// Client verifies an access token against a provider and returns the
// identity it belongs to. A bad or expired token yields an error.
type Client interface {
	FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
}

// Clients bundles one client per supported provider
type Clients struct {
	Google    Client
	Microsoft Client
}

// NewClients creates provider clients from OAuth configuration
func NewClients(cfg *config.OAuthConfig) *Clients {
	return &Clients{
		Google:    NewGoogleClient(cfg),
		Microsoft: NewMicrosoftClient(cfg),
	}
}
