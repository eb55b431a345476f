package mailprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vekst-crm/crm-api/internal/config"
)

// MicrosoftClient fetches token identity from the Microsoft Graph /me endpoint
type MicrosoftClient struct {
	httpClient *http.Client
	graphMeURL string
}

// graphUser is the subset of the Graph /me response we need
type graphUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// NewMicrosoftClient creates a Microsoft Graph client
func NewMicrosoftClient(cfg *config.OAuthConfig) *MicrosoftClient {
	return &MicrosoftClient{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeoutDuration(),
		},
		graphMeURL: cfg.MicrosoftGraphMeURL,
	}
}

// FetchUserInfo resolves the identity behind a Microsoft access token.
// Graph may leave mail empty for some account types, in which case the
// userPrincipalName carries the address.
func (c *MicrosoftClient) FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graphMeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call graph endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("microsoft rejected token with status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph request failed with status %d", resp.StatusCode)
	}

	var user graphUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode graph response: %w", err)
	}

	email := user.Mail
	if email == "" {
		email = user.UserPrincipalName
	}
	if email == "" {
		return nil, fmt.Errorf("graph response has no email")
	}

	return &UserInfo{Email: email, Name: user.DisplayName}, nil
}
