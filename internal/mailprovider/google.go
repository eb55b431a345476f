package mailprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vekst-crm/crm-api/internal/config"
)

// GoogleClient fetches token identity from the Google userinfo endpoint
type GoogleClient struct {
	httpClient  *http.Client
	userInfoURL string
}

// googleUserInfo is the subset of the userinfo response we need
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// NewGoogleClient creates a Google userinfo client
func NewGoogleClient(cfg *config.OAuthConfig) *GoogleClient {
	return &GoogleClient{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeoutDuration(),
		},
		userInfoURL: cfg.GoogleUserInfoURL,
	}
}

// FetchUserInfo resolves the identity behind a Google access token
func (c *GoogleClient) FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("google rejected token with status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo response has no email")
	}

	return &UserInfo{Email: info.Email, Name: info.Name}, nil
}
