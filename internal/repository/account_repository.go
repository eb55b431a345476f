package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Upsert writes the OAuth tokens for a (user, provider) pair
func (r *AccountRepository) Upsert(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "provider_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "expires_at", "scope", "updated_at",
			}),
		}).
		Create(account).Error
}

func (r *AccountRepository) GetByUserAndProvider(ctx context.Context, userID uuid.UUID, providerID string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider_id = ?", userID, providerID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) DeleteByUserAndProvider(ctx context.Context, userID uuid.UUID, providerID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND provider_id = ?", userID, providerID).
		Delete(&domain.Account{}).Error
}
