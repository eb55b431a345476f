package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmailProviderRepository struct {
	db *gorm.DB
}

func NewEmailProviderRepository(db *gorm.DB) *EmailProviderRepository {
	return &EmailProviderRepository{db: db}
}

// Upsert writes the provider link for a user, replacing any existing
// row for that user. A user has at most one linked provider.
func (r *EmailProviderRepository) Upsert(ctx context.Context, provider *domain.EmailProvider) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"provider", "email", "access_token", "refresh_token", "expires_at", "updated_at",
			}),
		}).
		Create(provider).Error
}

func (r *EmailProviderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.EmailProvider, error) {
	var provider domain.EmailProvider
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// DeleteByUserID removes the provider link for a user. Deleting a user
// with no link is a no-op, so disconnect stays idempotent.
func (r *EmailProviderRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.EmailProvider{}).Error
}
