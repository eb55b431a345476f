package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vekst-crm/crm-api/internal/config"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/mailprovider"
	"github.com/vekst-crm/crm-api/internal/repository"
	"github.com/vekst-crm/crm-api/internal/service"
	"github.com/vekst-crm/crm-api/internal/testutil"
	"gorm.io/gorm"
)

// fakeProviders serves a Google userinfo endpoint at /userinfo and a
// Graph /me endpoint at /me, both accepting only the given token.
func fakeProviders(t *testing.T, validToken string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"123","email":"kari@gmail.com","verified_email":true,"name":"Kari Nordmann"}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"abc","displayName":"Kari Nordmann","mail":"","userPrincipalName":"kari@firma.no"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newMailAccountService(t *testing.T, db *gorm.DB, validToken string) *service.MailAccountService {
	t.Helper()
	server := fakeProviders(t, validToken)
	clients := mailprovider.NewClients(&config.OAuthConfig{
		GoogleUserInfoURL:    server.URL + "/userinfo",
		MicrosoftGraphMeURL:  server.URL + "/me",
		RequestTimeoutSecond: 5,
	})
	return service.NewMailAccountService(
		repository.NewEmailProviderRepository(db),
		repository.NewAccountRepository(db),
		clients,
		testutil.NewTestLogger(),
	)
}

func TestMailAccountSaveProvider(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newMailAccountService(t, db, "good-token")
	userID := uuid.New()
	ctx := context.Background()

	result, err := svc.SaveProvider(ctx, userID, &domain.SaveEmailProviderRequest{
		Provider:    "google",
		AccessToken: "good-token",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "kari@gmail.com", result.Email)

	linked, err := svc.GetProvider(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "google", linked.Provider)
	assert.Equal(t, "kari@gmail.com", linked.Email)

	var accounts []domain.Account
	require.NoError(t, db.Where("user_id = ?", userID).Find(&accounts).Error)
	require.Len(t, accounts, 1)
	assert.Equal(t, "google", accounts[0].ProviderID)
}

func TestMailAccountSaveProviderReplacesLink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newMailAccountService(t, db, "good-token")
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.SaveProvider(ctx, userID, &domain.SaveEmailProviderRequest{Provider: "google", AccessToken: "good-token"})
	require.NoError(t, err)
	_, err = svc.SaveProvider(ctx, userID, &domain.SaveEmailProviderRequest{Provider: "microsoft", AccessToken: "good-token"})
	require.NoError(t, err)

	linked, err := svc.GetProvider(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "microsoft", linked.Provider)
	assert.Equal(t, "kari@firma.no", linked.Email)

	var count int64
	require.NoError(t, db.Model(&domain.EmailProvider{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "a user holds at most one provider link")
}

func TestMailAccountBadToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newMailAccountService(t, db, "good-token")
	ctx := context.Background()

	result, err := svc.SaveProvider(ctx, uuid.New(), &domain.SaveEmailProviderRequest{
		Provider:    "google",
		AccessToken: "stolen-token",
	})
	require.NoError(t, err, "a rejected token is a result, not a failure")
	assert.False(t, result.Success)
	assert.Equal(t, "token verification failed", result.Error)
}

func TestMailAccountUnsupportedProvider(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newMailAccountService(t, db, "good-token")

	result, err := svc.SaveProvider(context.Background(), uuid.New(), &domain.SaveEmailProviderRequest{
		Provider:    "yahoo",
		AccessToken: "good-token",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "unsupported provider", result.Error)
}

func TestMailAccountDisconnect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newMailAccountService(t, db, "good-token")
	userID := uuid.New()
	ctx := context.Background()

	// Disconnecting without a link is still a success
	result, err := svc.Disconnect(ctx, userID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Email)

	_, err = svc.SaveProvider(ctx, userID, &domain.SaveEmailProviderRequest{Provider: "google", AccessToken: "good-token"})
	require.NoError(t, err)

	result, err = svc.Disconnect(ctx, userID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "kari@gmail.com", result.Email)

	_, err = svc.GetProvider(ctx, userID)
	assert.ErrorIs(t, err, service.ErrProviderNotLinked)

	var count int64
	require.NoError(t, db.Model(&domain.Account{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMailAccountVerifyTokenDoesNotPersist(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newMailAccountService(t, db, "good-token")
	ctx := context.Background()

	result := svc.VerifyToken(ctx, domain.MailProviderMicrosoft, "good-token")
	assert.True(t, result.Success)
	assert.Equal(t, "kari@firma.no", result.Email)

	result = svc.VerifyToken(ctx, domain.MailProviderMicrosoft, "bad")
	assert.False(t, result.Success)

	var count int64
	require.NoError(t, db.Model(&domain.EmailProvider{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMailAccountFetchTokenInfoPreconditions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newMailAccountService(t, db, "good-token")
	userID := uuid.New()
	ctx := context.Background()

	result, err := svc.FetchTokenInfo(ctx, userID, "yahoo")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "unsupported provider", result.Error)

	// Nothing linked yet
	result, err = svc.FetchTokenInfo(ctx, userID, domain.MailProviderGoogle)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "no linked account", result.Error)

	// Linked account without a stored token
	require.NoError(t, db.Create(&domain.Account{UserID: userID, ProviderID: "google"}).Error)
	result, err = svc.FetchTokenInfo(ctx, userID, domain.MailProviderGoogle)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "no access token", result.Error)
}

func TestMailAccountFetchTokenInfoBadStoredToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newMailAccountService(t, db, "good-token")
	userID := uuid.New()
	ctx := context.Background()

	stale := "stale-token"
	require.NoError(t, db.Create(&domain.Account{UserID: userID, ProviderID: "google", AccessToken: &stale}).Error)

	result, err := svc.FetchTokenInfo(ctx, userID, domain.MailProviderGoogle)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "token verification failed", result.Error)

	// A failed check must not create a provider link
	_, err = svc.GetProvider(ctx, userID)
	assert.ErrorIs(t, err, service.ErrProviderNotLinked)
}

func TestMailAccountFetchTokenInfoRefreshesLink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newMailAccountService(t, db, "good-token")
	userID := uuid.New()
	ctx := context.Background()

	token := "good-token"
	require.NoError(t, db.Create(&domain.Account{UserID: userID, ProviderID: "microsoft", AccessToken: &token}).Error)

	result, err := svc.FetchTokenInfo(ctx, userID, domain.MailProviderMicrosoft)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "kari@firma.no", result.Email)

	linked, err := svc.GetProvider(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "microsoft", linked.Provider)
	assert.Equal(t, "kari@firma.no", linked.Email)
}
