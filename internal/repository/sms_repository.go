package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type SmsRepository struct {
	db *gorm.DB
}

func NewSmsRepository(db *gorm.DB) *SmsRepository {
	return &SmsRepository{db: db}
}

func (r *SmsRepository) Create(ctx context.Context, message *domain.SmsMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *SmsRepository) Update(ctx context.Context, message *domain.SmsMessage) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *SmsRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.SmsMessage, error) {
	var messages []domain.SmsMessage
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}
