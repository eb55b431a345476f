package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/config"
)

func newValidator(secret string) *auth.JWTValidator {
	return auth.NewJWTValidator(&config.AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   "crm-api",
		JWTAudience: "crm-clients",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	v := newValidator("test-secret")
	workspaceID := uuid.New()
	user := &auth.UserContext{
		UserID:      uuid.New(),
		Email:       "kari@firma.no",
		DisplayName: "Kari Nordmann",
		WorkspaceID: &workspaceID,
	}

	token, err := v.IssueToken(user, time.Hour)
	require.NoError(t, err)

	got, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)
	assert.Equal(t, "kari@firma.no", got.Email)
	assert.Equal(t, "Kari Nordmann", got.DisplayName)
	require.NotNil(t, got.WorkspaceID)
	assert.Equal(t, workspaceID, *got.WorkspaceID)
}

func TestTokenWithoutWorkspace(t *testing.T) {
	v := newValidator("test-secret")
	token, err := v.IssueToken(&auth.UserContext{UserID: uuid.New()}, time.Hour)
	require.NoError(t, err)

	got, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, got.WorkspaceID)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := newValidator("secret-a").IssueToken(&auth.UserContext{UserID: uuid.New()}, time.Hour)
	require.NoError(t, err)

	_, err = newValidator("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	v := newValidator("test-secret")
	token, err := v.IssueToken(&auth.UserContext{UserID: uuid.New()}, -time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenWrongIssuer(t *testing.T) {
	other := auth.NewJWTValidator(&config.AuthConfig{
		JWTSecret:   "test-secret",
		JWTIssuer:   "someone-else",
		JWTAudience: "crm-clients",
	})
	token, err := other.IssueToken(&auth.UserContext{UserID: uuid.New()}, time.Hour)
	require.NoError(t, err)

	_, err = newValidator("test-secret").ValidateToken(token)
	assert.Error(t, err)
}
