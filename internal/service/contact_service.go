package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/mapper"
	"github.com/vekst-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContactService struct {
	contactRepo  *repository.ContactRepository
	businessRepo *repository.BusinessRepository
	logger       *zap.Logger
}

func NewContactService(
	contactRepo *repository.ContactRepository,
	businessRepo *repository.BusinessRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo:  contactRepo,
		businessRepo: businessRepo,
		logger:       logger,
	}
}

// Create adds a contact to a business. The business is fetched through
// the workspace-scoped repository first, so a contact can never be
// attached across a workspace boundary.
func (s *ContactService) Create(ctx context.Context, businessID uuid.UUID, req *domain.CreateContactRequest) (*domain.ContactResponse, error) {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	if req.IsPrimary {
		if err := s.contactRepo.ClearPrimary(ctx, business.ID); err != nil {
			return nil, fmt.Errorf("failed to clear primary contact: %w", err)
		}
	}

	contact := &domain.Contact{
		BusinessID: business.ID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Title:      req.Title,
		IsPrimary:  req.IsPrimary,
		Notes:      req.Notes,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	resp := mapper.ToContactResponse(contact)
	return &resp, nil
}

func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactResponse, error) {
	contact, err := s.getScoped(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := mapper.ToContactResponse(contact)
	return &resp, nil
}

func (s *ContactService) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.ContactResponse, error) {
	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	contacts, err := s.contactRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	items := make([]domain.ContactResponse, 0, len(contacts))
	for i := range contacts {
		items = append(items, mapper.ToContactResponse(&contacts[i]))
	}
	return items, nil
}

func (s *ContactService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateContactRequest) (*domain.ContactResponse, error) {
	contact, err := s.getScoped(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		contact.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		contact.LastName = *req.LastName
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Title != nil {
		contact.Title = *req.Title
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}
	if req.IsPrimary != nil {
		if *req.IsPrimary && !contact.IsPrimary {
			if err := s.contactRepo.ClearPrimary(ctx, contact.BusinessID); err != nil {
				return nil, fmt.Errorf("failed to clear primary contact: %w", err)
			}
		}
		contact.IsPrimary = *req.IsPrimary
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	resp := mapper.ToContactResponse(contact)
	return &resp, nil
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	contact, err := s.getScoped(ctx, id)
	if err != nil {
		return err
	}

	if err := s.contactRepo.Delete(ctx, contact.ID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// getScoped loads a contact and verifies its business is visible in the
// caller's workspace
func (s *ContactService) getScoped(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if _, err := s.businessRepo.GetByID(ctx, contact.BusinessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	return contact, nil
}
