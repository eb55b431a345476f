package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/mapper"
	"github.com/vekst-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OfferService struct {
	offerRepo    *repository.OfferRepository
	businessRepo *repository.BusinessRepository
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewOfferService(
	offerRepo *repository.OfferRepository,
	businessRepo *repository.BusinessRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *OfferService {
	return &OfferService{
		offerRepo:    offerRepo,
		businessRepo: businessRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *OfferService) Create(ctx context.Context, req *domain.CreateOfferRequest) (*domain.OfferResponse, error) {
	business, err := s.businessRepo.GetByID(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "NOK"
	}

	offer := &domain.Offer{
		BusinessID: business.ID,
		ContactID:  req.ContactID,
		Title:      req.Title,
		Status:     domain.OfferStatusDraft,
		Currency:   currency,
		Notes:      req.Notes,
		ExpiresAt:  req.ExpiresAt,
	}
	offer.Items, offer.Total = buildOfferItems(req.Items)

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	resp := mapper.ToOfferResponse(offer)
	return &resp, nil
}

func (s *OfferService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OfferResponse, error) {
	offer, err := s.getScoped(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := mapper.ToOfferResponse(offer)
	return &resp, nil
}

func (s *OfferService) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.OfferResponse, error) {
	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	offers, err := s.offerRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	items := make([]domain.OfferResponse, 0, len(offers))
	for i := range offers {
		items = append(items, mapper.ToOfferResponse(&offers[i]))
	}
	return items, nil
}

// Update edits a draft offer. Offers that left draft are immutable.
func (s *OfferService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOfferRequest) (*domain.OfferResponse, error) {
	offer, err := s.getScoped(ctx, id)
	if err != nil {
		return nil, err
	}

	if offer.Status != domain.OfferStatusDraft {
		return nil, ErrOfferNotEditable
	}

	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.ContactID != nil {
		offer.ContactID = req.ContactID
	}
	if req.Currency != nil {
		offer.Currency = *req.Currency
	}
	if req.Notes != nil {
		offer.Notes = *req.Notes
	}
	if req.ExpiresAt != nil {
		offer.ExpiresAt = req.ExpiresAt
	}

	if req.Items != nil {
		items, total := buildOfferItems(*req.Items)
		if err := s.offerRepo.ReplaceItems(ctx, offer, items); err != nil {
			return nil, fmt.Errorf("failed to replace items: %w", err)
		}
		offer.Total = total
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	resp := mapper.ToOfferResponse(offer)
	return &resp, nil
}

// UpdateStatus moves an offer through its lifecycle and stamps sent time
func (s *OfferService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OfferStatus) (*domain.OfferResponse, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	offer, err := s.getScoped(ctx, id)
	if err != nil {
		return nil, err
	}

	if !offerTransitionAllowed(offer.Status, status) {
		return nil, ErrConflict
	}

	offer.Status = status
	if status == domain.OfferStatusSent && offer.SentAt == nil {
		now := time.Now().UTC()
		offer.SentAt = &now
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	resp := mapper.ToOfferResponse(offer)
	return &resp, nil
}

func (s *OfferService) Delete(ctx context.Context, id uuid.UUID) error {
	offer, err := s.getScoped(ctx, id)
	if err != nil {
		return err
	}

	if err := s.offerRepo.Delete(ctx, offer.ID); err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	return nil
}

// ExpireOverdue marks sent offers past their expiry as expired.
// Called from the scheduler; returns the number of offers expired.
func (s *OfferService) ExpireOverdue(ctx context.Context) (int, error) {
	offers, err := s.offerRepo.FindSentExpiredBefore(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to find expired offers: %w", err)
	}

	expired := 0
	for i := range offers {
		offers[i].Status = domain.OfferStatusExpired
		if err := s.offerRepo.Update(ctx, &offers[i]); err != nil {
			s.logger.Error("failed to expire offer",
				zap.String("offer_id", offers[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}

	return expired, nil
}

// getScoped loads an offer and verifies its business is visible in the
// caller's workspace
func (s *OfferService) getScoped(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	if _, err := s.businessRepo.GetByID(ctx, offer.BusinessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	return offer, nil
}

func buildOfferItems(reqs []domain.OfferItemRequest) ([]domain.OfferItem, float64) {
	items := make([]domain.OfferItem, 0, len(reqs))
	total := 0.0
	for _, item := range reqs {
		lineTotal := item.Quantity * item.UnitPrice
		total += lineTotal
		items = append(items, domain.OfferItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
		})
	}
	return items, total
}

// offerTransitionAllowed defines the legal offer status transitions
func offerTransitionAllowed(from, to domain.OfferStatus) bool {
	switch from {
	case domain.OfferStatusDraft:
		return to == domain.OfferStatusSent
	case domain.OfferStatusSent:
		return to == domain.OfferStatusAccepted || to == domain.OfferStatusRejected || to == domain.OfferStatusExpired
	}
	return false
}
