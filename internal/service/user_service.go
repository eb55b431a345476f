package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/mapper"
	"github.com/vekst-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo      *repository.UserRepository
	workspaceRepo *repository.WorkspaceRepository
	logger        *zap.Logger
}

func NewUserService(
	userRepo *repository.UserRepository,
	workspaceRepo *repository.WorkspaceRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		logger:        logger,
	}
}

// Me resolves the session's user row, provisioning it from the token
// claims on first sight, and stamps the login time.
func (s *UserService) Me(ctx context.Context) (*domain.MeResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok || userCtx.IsService {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		user = &domain.User{
			ID:          userCtx.UserID,
			Email:       userCtx.Email,
			DisplayName: userCtx.DisplayName,
			WorkspaceID: userCtx.WorkspaceID,
			IsActive:    true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to provision user: %w", err)
		}
		s.logger.Info("provisioned user from session",
			zap.String("user_id", user.ID.String()),
		)
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	resp := &domain.MeResponse{User: mapper.ToUserResponse(user)}

	if user.WorkspaceID != nil {
		workspace, err := s.workspaceRepo.GetByID(ctx, *user.WorkspaceID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to get workspace: %w", err)
			}
		} else {
			ws := mapper.ToWorkspaceResponse(workspace)
			resp.Workspace = &ws
		}
	}

	return resp, nil
}

// ListMembers returns the active users of the caller's workspace, for
// assignee pickers. Unscoped callers get an empty list rather than a
// cross-tenant directory.
func (s *UserService) ListMembers(ctx context.Context) ([]domain.UserResponse, error) {
	workspaceID := auth.GetEffectiveWorkspaceFilter(ctx)
	if workspaceID == nil {
		return []domain.UserResponse{}, nil
	}

	users, err := s.userRepo.ListByWorkspace(ctx, *workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	items := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, mapper.ToUserResponse(&users[i]))
	}
	return items, nil
}
