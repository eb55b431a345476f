package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/mailprovider"
	"github.com/vekst-crm/crm-api/internal/mapper"
	"github.com/vekst-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MailAccountService links third-party email providers to users.
// Provider rejections are reported as ProviderResult values, not
// errors; errors are reserved for persistence failures.
type MailAccountService struct {
	providerRepo *repository.EmailProviderRepository
	accountRepo  *repository.AccountRepository
	clients      *mailprovider.Clients
	logger       *zap.Logger
}

func NewMailAccountService(
	providerRepo *repository.EmailProviderRepository,
	accountRepo *repository.AccountRepository,
	clients *mailprovider.Clients,
	logger *zap.Logger,
) *MailAccountService {
	return &MailAccountService{
		providerRepo: providerRepo,
		accountRepo:  accountRepo,
		clients:      clients,
		logger:       logger,
	}
}

// SaveProvider verifies the access token against the provider and, on
// success, upserts the user's provider link and token record. Calling
// it again for the same user replaces the previous link.
func (s *MailAccountService) SaveProvider(ctx context.Context, userID uuid.UUID, req *domain.SaveEmailProviderRequest) (*domain.ProviderResult, error) {
	provider := domain.MailProviderName(req.Provider)
	if !provider.IsValid() {
		return &domain.ProviderResult{Success: false, Error: "unsupported provider"}, nil
	}

	info, err := s.fetchUserInfo(ctx, provider, req.AccessToken)
	if err != nil {
		s.logger.Warn("provider token verification failed",
			zap.String("user_id", userID.String()),
			zap.String("provider", req.Provider),
			zap.Error(err),
		)
		return &domain.ProviderResult{Success: false, Error: "token verification failed"}, nil
	}

	link := &domain.EmailProvider{
		UserID:       userID,
		Provider:     provider,
		Email:        info.Email,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
	}
	if err := s.providerRepo.Upsert(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to save provider link: %w", err)
	}

	account := &domain.Account{
		UserID:      userID,
		ProviderID:  string(provider),
		AccessToken: &req.AccessToken,
		ExpiresAt:   req.ExpiresAt,
	}
	if req.RefreshToken != "" {
		account.RefreshToken = &req.RefreshToken
	}
	if err := s.accountRepo.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account tokens: %w", err)
	}

	s.logger.Info("email provider linked",
		zap.String("user_id", userID.String()),
		zap.String("provider", req.Provider),
	)

	return &domain.ProviderResult{Success: true, Email: info.Email}, nil
}

// GetProvider returns the user's linked provider
func (s *MailAccountService) GetProvider(ctx context.Context, userID uuid.UUID) (*domain.EmailProviderResponse, error) {
	link, err := s.providerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotLinked
		}
		return nil, fmt.Errorf("failed to get provider link: %w", err)
	}

	resp := mapper.ToEmailProviderResponse(link)
	return &resp, nil
}

// Disconnect removes the user's provider link. Disconnecting when no
// link exists still succeeds, so repeated calls are idempotent.
func (s *MailAccountService) Disconnect(ctx context.Context, userID uuid.UUID) (*domain.ProviderResult, error) {
	link, err := s.providerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.ProviderResult{Success: true}, nil
		}
		return nil, fmt.Errorf("failed to get provider link: %w", err)
	}

	if err := s.providerRepo.DeleteByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to delete provider link: %w", err)
	}
	if err := s.accountRepo.DeleteByUserAndProvider(ctx, userID, string(link.Provider)); err != nil {
		return nil, fmt.Errorf("failed to delete account tokens: %w", err)
	}

	s.logger.Info("email provider disconnected",
		zap.String("user_id", userID.String()),
		zap.String("provider", string(link.Provider)),
	)

	return &domain.ProviderResult{Success: true, Email: link.Email}, nil
}

// FetchTokenInfo validates the user's stored access token for a
// provider against the provider's identity endpoint and refreshes the
// provider link on success. Each missing precondition is reported as a
// ProviderResult error string.
func (s *MailAccountService) FetchTokenInfo(ctx context.Context, userID uuid.UUID, provider domain.MailProviderName) (*domain.ProviderResult, error) {
	if !provider.IsValid() {
		return &domain.ProviderResult{Success: false, Error: "unsupported provider"}, nil
	}

	account, err := s.accountRepo.GetByUserAndProvider(ctx, userID, string(provider))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.ProviderResult{Success: false, Error: "no linked account"}, nil
		}
		return nil, fmt.Errorf("failed to get account tokens: %w", err)
	}
	if account.AccessToken == nil || *account.AccessToken == "" {
		return &domain.ProviderResult{Success: false, Error: "no access token"}, nil
	}

	info, err := s.fetchUserInfo(ctx, provider, *account.AccessToken)
	if err != nil {
		s.logger.Warn("stored token verification failed",
			zap.String("user_id", userID.String()),
			zap.String("provider", string(provider)),
			zap.Error(err),
		)
		return &domain.ProviderResult{Success: false, Error: "token verification failed"}, nil
	}
	if info.Email == "" {
		return &domain.ProviderResult{Success: false, Error: "no email in provider response"}, nil
	}

	link := &domain.EmailProvider{
		UserID:      userID,
		Provider:    provider,
		Email:       info.Email,
		AccessToken: *account.AccessToken,
		ExpiresAt:   account.ExpiresAt,
	}
	if account.RefreshToken != nil {
		link.RefreshToken = *account.RefreshToken
	}
	if err := s.providerRepo.Upsert(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to refresh provider link: %w", err)
	}

	return &domain.ProviderResult{Success: true, Email: info.Email}, nil
}

// VerifyToken checks a token against the named provider without
// persisting anything
func (s *MailAccountService) VerifyToken(ctx context.Context, provider domain.MailProviderName, accessToken string) *domain.ProviderResult {
	if !provider.IsValid() {
		return &domain.ProviderResult{Success: false, Error: "unsupported provider"}
	}

	info, err := s.fetchUserInfo(ctx, provider, accessToken)
	if err != nil {
		return &domain.ProviderResult{Success: false, Error: "token verification failed"}
	}
	return &domain.ProviderResult{Success: true, Email: info.Email}
}

func (s *MailAccountService) fetchUserInfo(ctx context.Context, provider domain.MailProviderName, accessToken string) (*mailprovider.UserInfo, error) {
	switch provider {
	case domain.MailProviderGoogle:
		return s.clients.Google.FetchUserInfo(ctx, accessToken)
	case domain.MailProviderMicrosoft:
		return s.clients.Microsoft.FetchUserInfo(ctx, accessToken)
	}
	return nil, fmt.Errorf("unsupported provider: %s", provider)
}
