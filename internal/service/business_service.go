package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/mapper"
	"github.com/vekst-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BusinessService struct {
	businessRepo *repository.BusinessRepository
	tagRepo      *repository.TagRepository
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewBusinessService(
	businessRepo *repository.BusinessRepository,
	tagRepo *repository.TagRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *BusinessService {
	return &BusinessService{
		businessRepo: businessRepo,
		tagRepo:      tagRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *BusinessService) Create(ctx context.Context, req *domain.CreateBusinessRequest) (*domain.BusinessResponse, error) {
	business := &domain.Business{
		Name:          req.Name,
		OrgNumber:     req.OrgNumber,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		ContactPerson: req.ContactPerson,
		Website:       req.Website,
		Industry:      req.Industry,
		EmployeeCount: req.EmployeeCount,
		Revenue:       req.Revenue,
		Notes:         req.Notes,
		Status:        domain.BusinessStatusLead,
		Stage:         domain.BusinessStageLead,
		WorkspaceID:   auth.GetEffectiveWorkspaceFilter(ctx),
	}
	if req.Country == "" {
		business.Country = "Norge"
	}
	if req.Status != "" {
		status := domain.BusinessStatus(req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		business.Status = status
	}
	if req.Stage != "" {
		stage := domain.BusinessStage(req.Stage)
		if !stage.IsValid() {
			return nil, ErrInvalidStage
		}
		business.Stage = stage
	}

	tags, err := s.tagRepo.ResolveNames(ctx, req.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	business.Tags = tags

	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}

	s.logActivity(ctx, business.ID, fmt.Sprintf("Bedrift '%s' ble opprettet", business.Name))

	resp := mapper.ToBusinessResponse(business, 0)
	return &resp, nil
}

func (s *BusinessService) GetByID(ctx context.Context, id uuid.UUID) (*domain.BusinessResponse, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	contactCount, err := s.businessRepo.GetContactsCount(ctx, business.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}

	resp := mapper.ToBusinessResponse(business, contactCount)
	return &resp, nil
}

func (s *BusinessService) List(ctx context.Context, params domain.BusinessListParams) (*domain.PaginatedResponse[domain.BusinessResponse], error) {
	if params.Status != "" && !domain.BusinessStatus(params.Status).IsValid() {
		return nil, ErrInvalidStatus
	}
	if params.Stage != "" && !domain.BusinessStage(params.Stage).IsValid() {
		return nil, ErrInvalidStage
	}

	businesses, total, err := s.businessRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}

	items := make([]domain.BusinessResponse, 0, len(businesses))
	for i := range businesses {
		items = append(items, mapper.ToBusinessResponse(&businesses[i], 0))
	}

	page, pageSize := repository.NormalizePaging(params.Page, params.PageSize)
	return &domain.PaginatedResponse[domain.BusinessResponse]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// GetLeads returns all businesses whose stage counts as an open lead
func (s *BusinessService) GetLeads(ctx context.Context) ([]domain.BusinessResponse, error) {
	businesses, err := s.businessRepo.ListLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	items := make([]domain.BusinessResponse, 0, len(businesses))
	for i := range businesses {
		items = append(items, mapper.ToBusinessResponse(&businesses[i], 0))
	}
	return items, nil
}

func (s *BusinessService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateBusinessRequest) (*domain.BusinessResponse, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.OrgNumber != nil {
		business.OrgNumber = *req.OrgNumber
	}
	if req.Email != nil {
		business.Email = *req.Email
	}
	if req.Phone != nil {
		business.Phone = *req.Phone
	}
	if req.Address != nil {
		business.Address = *req.Address
	}
	if req.City != nil {
		business.City = *req.City
	}
	if req.PostalCode != nil {
		business.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		business.Country = *req.Country
	}
	if req.ContactPerson != nil {
		business.ContactPerson = *req.ContactPerson
	}
	if req.Website != nil {
		business.Website = *req.Website
	}
	if req.Industry != nil {
		business.Industry = *req.Industry
	}
	if req.EmployeeCount != nil {
		business.EmployeeCount = req.EmployeeCount
	}
	if req.Revenue != nil {
		business.Revenue = req.Revenue
	}
	if req.Notes != nil {
		business.Notes = *req.Notes
	}
	if req.Status != nil {
		status := domain.BusinessStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		business.Status = status
	}
	if req.Stage != nil {
		stage := domain.BusinessStage(*req.Stage)
		if !stage.IsValid() {
			return nil, ErrInvalidStage
		}
		if stage != business.Stage {
			s.logActivity(ctx, business.ID,
				fmt.Sprintf("Fase endret fra '%s' til '%s'", business.Stage, stage))
		}
		business.Stage = stage
	}

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}

	if req.Tags != nil {
		tags, err := s.tagRepo.ResolveNames(ctx, *req.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tags: %w", err)
		}
		if err := s.businessRepo.ReplaceTags(ctx, business, tags); err != nil {
			return nil, fmt.Errorf("failed to replace tags: %w", err)
		}
		business.Tags = tags
	}

	contactCount, err := s.businessRepo.GetContactsCount(ctx, business.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}

	resp := mapper.ToBusinessResponse(business, contactCount)
	return &resp, nil
}

// UpdateStage moves a business through the pipeline and logs the change
func (s *BusinessService) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.BusinessStage) (*domain.BusinessResponse, error) {
	if !stage.IsValid() {
		return nil, ErrInvalidStage
	}

	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	if business.Stage == stage {
		resp := mapper.ToBusinessResponse(business, 0)
		return &resp, nil
	}

	previous := business.Stage
	business.Stage = stage
	if stage == domain.BusinessStageCustomer {
		business.Status = domain.BusinessStatusActive
	}

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}

	s.logActivity(ctx, business.ID,
		fmt.Sprintf("Fase endret fra '%s' til '%s'", previous, stage))

	resp := mapper.ToBusinessResponse(business, 0)
	return &resp, nil
}

// ConvertLeadToCustomer promotes a lead to an active customer
func (s *BusinessService) ConvertLeadToCustomer(ctx context.Context, id uuid.UUID) (*domain.BusinessResponse, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	if business.Stage == domain.BusinessStageCustomer {
		return nil, ErrConflict
	}

	business.Stage = domain.BusinessStageCustomer
	business.Status = domain.BusinessStatusActive

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}

	s.logActivity(ctx, business.ID,
		fmt.Sprintf("Bedrift '%s' ble konvertert til kunde", business.Name))

	resp := mapper.ToBusinessResponse(business, 0)
	return &resp, nil
}

// AddTags attaches tags to a business, creating unknown tag names on the fly
func (s *BusinessService) AddTags(ctx context.Context, id uuid.UUID, names []string) (*domain.BusinessResponse, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	tags, err := s.tagRepo.ResolveNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	if err := s.businessRepo.AppendTags(ctx, business, tags); err != nil {
		return nil, fmt.Errorf("failed to add tags: %w", err)
	}

	business, err = s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload business: %w", err)
	}

	resp := mapper.ToBusinessResponse(business, 0)
	return &resp, nil
}

// RemoveTag detaches a tag from a business by name
func (s *BusinessService) RemoveTag(ctx context.Context, id uuid.UUID, name string) (*domain.BusinessResponse, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	name = strings.TrimSpace(name)
	var tag *domain.Tag
	for i := range business.Tags {
		if business.Tags[i].Name == name {
			tag = &business.Tags[i]
			break
		}
	}
	if tag == nil {
		return nil, ErrTagNotFound
	}

	if err := s.businessRepo.RemoveTag(ctx, business, tag); err != nil {
		return nil, fmt.Errorf("failed to remove tag: %w", err)
	}

	business, err = s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload business: %w", err)
	}

	resp := mapper.ToBusinessResponse(business, 0)
	return &resp, nil
}

func (s *BusinessService) Delete(ctx context.Context, id uuid.UUID) error {
	// Scoped fetch first so deletes cannot cross workspace boundaries
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get business: %w", err)
	}

	if err := s.businessRepo.Delete(ctx, business.ID); err != nil {
		return fmt.Errorf("failed to delete business: %w", err)
	}
	return nil
}

// logActivity records a note on the business timeline. Failures are
// logged and swallowed so they never abort the primary write.
func (s *BusinessService) logActivity(ctx context.Context, businessID uuid.UUID, description string) {
	userID := domain.SystemUserID
	userName := domain.SystemUserName
	if userCtx, ok := auth.FromContext(ctx); ok {
		userID = userCtx.UserID
		userName = userCtx.DisplayName
	}

	activity := &domain.Activity{
		Type:        domain.ActivityTypeNote,
		Description: description,
		OccurredAt:  time.Now().UTC(),
		Completed:   true,
		BusinessID:  &businessID,
		UserID:      userID,
		UserName:    userName,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log business activity",
			zap.String("business_id", businessID.String()),
			zap.Error(err),
		)
	}
}
