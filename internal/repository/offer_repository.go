package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	var offer domain.Offer
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *OfferRepository) Update(ctx context.Context, offer *domain.Offer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

func (r *OfferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Offer{}, "id = ?", id).Error
}

func (r *OfferRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.Offer, error) {
	var offers []domain.Offer
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

// ReplaceItems swaps an offer's line items for the given set
func (r *OfferRepository) ReplaceItems(ctx context.Context, offer *domain.Offer, items []domain.OfferItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("offer_id = ?", offer.ID).Delete(&domain.OfferItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OfferID = offer.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		offer.Items = items
		return nil
	})
}

// FindSentExpiredBefore returns sent offers whose expiry passed before the cutoff
func (r *OfferRepository) FindSentExpiredBefore(ctx context.Context, cutoff time.Time) ([]domain.Offer, error) {
	var offers []domain.Offer
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", domain.OfferStatusSent, cutoff).
		Find(&offers).Error
	return offers, err
}
