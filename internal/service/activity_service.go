package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/mapper"
	"github.com/vekst-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ActivityService struct {
	activityRepo *repository.ActivityRepository
	businessRepo *repository.BusinessRepository
	logger       *zap.Logger
}

func NewActivityService(
	activityRepo *repository.ActivityRepository,
	businessRepo *repository.BusinessRepository,
	logger *zap.Logger,
) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		businessRepo: businessRepo,
		logger:       logger,
	}
}

func (s *ActivityService) Create(ctx context.Context, req *domain.CreateActivityRequest) (*domain.ActivityResponse, error) {
	activityType := domain.ActivityType(req.Type)
	if !activityType.IsValid() {
		return nil, ErrInvalidInput
	}
	if req.BusinessID == nil && req.ContactID == nil && req.JobApplicationID == nil {
		return nil, ErrInvalidInput
	}

	// Workspace check goes through the business when one is referenced
	if req.BusinessID != nil {
		if _, err := s.businessRepo.GetByID(ctx, *req.BusinessID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get business: %w", err)
		}
	}

	userID := domain.SystemUserID
	userName := domain.SystemUserName
	if userCtx, ok := auth.FromContext(ctx); ok {
		userID = userCtx.UserID
		userName = userCtx.DisplayName
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	activity := &domain.Activity{
		Type:             activityType,
		Description:      req.Description,
		OccurredAt:       occurredAt,
		BusinessID:       req.BusinessID,
		ContactID:        req.ContactID,
		JobApplicationID: req.JobApplicationID,
		UserID:           userID,
		UserName:         userName,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	resp := mapper.ToActivityResponse(activity)
	return &resp, nil
}

func (s *ActivityService) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]domain.ActivityResponse, error) {
	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	activities, err := s.activityRepo.ListByBusiness(ctx, businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	items := make([]domain.ActivityResponse, 0, len(activities))
	for i := range activities {
		items = append(items, mapper.ToActivityResponse(&activities[i]))
	}
	return items, nil
}

// Update marks completion or records an outcome. Other fields are
// append-only and cannot be edited after the fact.
func (s *ActivityService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateActivityRequest) (*domain.ActivityResponse, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	if activity.BusinessID != nil {
		if _, err := s.businessRepo.GetByID(ctx, *activity.BusinessID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get business: %w", err)
		}
	}

	if req.Completed != nil {
		activity.Completed = *req.Completed
	}
	if req.Outcome != nil {
		activity.Outcome = *req.Outcome
	}

	if err := s.activityRepo.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	resp := mapper.ToActivityResponse(activity)
	return &resp, nil
}
