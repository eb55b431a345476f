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

type JobApplicationService struct {
	applicationRepo *repository.JobApplicationRepository
	activityRepo    *repository.ActivityRepository
	logger          *zap.Logger
}

func NewJobApplicationService(
	applicationRepo *repository.JobApplicationRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *JobApplicationService {
	return &JobApplicationService{
		applicationRepo: applicationRepo,
		activityRepo:    activityRepo,
		logger:          logger,
	}
}

func (s *JobApplicationService) Create(ctx context.Context, req *domain.CreateJobApplicationRequest) (*domain.JobApplicationResponse, error) {
	application := &domain.JobApplication{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		DesiredPosition: req.DesiredPosition,
		CurrentEmployer: req.CurrentEmployer,
		Education:       req.Education,
		Notes:           req.Notes,
		Status:          domain.JobApplicationStatusNew,
		WorkspaceID:     auth.GetEffectiveWorkspaceFilter(ctx),
	}

	if err := s.applicationRepo.Create(ctx, application); err != nil {
		return nil, fmt.Errorf("failed to create job application: %w", err)
	}

	if len(req.Skills) > 0 {
		if err := s.applicationRepo.ReplaceSkills(ctx, application, req.Skills); err != nil {
			return nil, fmt.Errorf("failed to save skills: %w", err)
		}
	}

	resp := mapper.ToJobApplicationResponse(application)
	return &resp, nil
}

func (s *JobApplicationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobApplicationResponse, error) {
	application, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job application: %w", err)
	}

	resp := mapper.ToJobApplicationResponse(application)
	return &resp, nil
}

func (s *JobApplicationService) List(ctx context.Context, params domain.JobApplicationListParams) (*domain.PaginatedResponse[domain.JobApplicationResponse], error) {
	if params.Status != "" && !domain.JobApplicationStatus(params.Status).IsValid() {
		return nil, ErrInvalidStatus
	}

	applications, total, err := s.applicationRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list job applications: %w", err)
	}

	items := make([]domain.JobApplicationResponse, 0, len(applications))
	for i := range applications {
		items = append(items, mapper.ToJobApplicationResponse(&applications[i]))
	}

	page, pageSize := repository.NormalizePaging(params.Page, params.PageSize)
	return &domain.PaginatedResponse[domain.JobApplicationResponse]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// Search matches the term against the application's text fields as a
// case-insensitive substring, and against the skill set as an exact member
func (s *JobApplicationService) Search(ctx context.Context, term string) ([]domain.JobApplicationResponse, error) {
	applications, err := s.applicationRepo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search job applications: %w", err)
	}

	items := make([]domain.JobApplicationResponse, 0, len(applications))
	for i := range applications {
		items = append(items, mapper.ToJobApplicationResponse(&applications[i]))
	}
	return items, nil
}

func (s *JobApplicationService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateJobApplicationRequest) (*domain.JobApplicationResponse, error) {
	application, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job application: %w", err)
	}

	if req.Name != nil {
		application.Name = *req.Name
	}
	if req.Email != nil {
		application.Email = *req.Email
	}
	if req.Phone != nil {
		application.Phone = *req.Phone
	}
	if req.DesiredPosition != nil {
		application.DesiredPosition = *req.DesiredPosition
	}
	if req.CurrentEmployer != nil {
		application.CurrentEmployer = *req.CurrentEmployer
	}
	if req.Education != nil {
		application.Education = *req.Education
	}
	if req.Notes != nil {
		application.Notes = *req.Notes
	}

	if err := s.applicationRepo.Update(ctx, application); err != nil {
		return nil, fmt.Errorf("failed to update job application: %w", err)
	}

	if req.Skills != nil {
		if err := s.applicationRepo.ReplaceSkills(ctx, application, *req.Skills); err != nil {
			return nil, fmt.Errorf("failed to save skills: %w", err)
		}
	}

	resp := mapper.ToJobApplicationResponse(application)
	return &resp, nil
}

// UpdateStatus moves a candidate through the pipeline. The status write
// and its audit activity commit in a single transaction, so the note
// fires exactly once per change and never without the status.
func (s *JobApplicationService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobApplicationStatus) (*domain.JobApplicationResponse, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	application, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job application: %w", err)
	}

	if application.Status == status {
		resp := mapper.ToJobApplicationResponse(application)
		return &resp, nil
	}

	audit := &domain.Activity{
		Type:             domain.ActivityTypeNote,
		Description:      fmt.Sprintf("Status endret til %s", status.Label()),
		OccurredAt:       time.Now().UTC(),
		Completed:        true,
		JobApplicationID: &application.ID,
		UserID:           domain.SystemUserID,
		UserName:         domain.SystemUserName,
	}

	if err := s.applicationRepo.UpdateStatusWithAudit(ctx, application, status, audit); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	s.logger.Info("job application status changed",
		zap.String("job_application_id", application.ID.String()),
		zap.String("status", string(status)),
	)

	resp := mapper.ToJobApplicationResponse(application)
	return &resp, nil
}

func (s *JobApplicationService) Delete(ctx context.Context, id uuid.UUID) error {
	application, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get job application: %w", err)
	}

	if err := s.applicationRepo.Delete(ctx, application.ID); err != nil {
		return fmt.Errorf("failed to delete job application: %w", err)
	}
	return nil
}

// AddActivity logs a manual entry on the candidate's timeline
func (s *JobApplicationService) AddActivity(ctx context.Context, id uuid.UUID, req *domain.CreateActivityRequest) (*domain.ActivityResponse, error) {
	application, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job application: %w", err)
	}

	activityType := domain.ActivityType(req.Type)
	if !activityType.IsValid() {
		return nil, ErrInvalidInput
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
		JobApplicationID: &application.ID,
		UserID:           userID,
		UserName:         userName,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	resp := mapper.ToActivityResponse(activity)
	return &resp, nil
}

// GetActivities returns the candidate's timeline, newest first
func (s *JobApplicationService) GetActivities(ctx context.Context, id uuid.UUID) ([]domain.ActivityResponse, error) {
	if _, err := s.applicationRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job application: %w", err)
	}

	activities, err := s.activityRepo.ListByJobApplication(ctx, id, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	items := make([]domain.ActivityResponse, 0, len(activities))
	for i := range activities {
		items = append(items, mapper.ToActivityResponse(&activities[i]))
	}
	return items, nil
}
