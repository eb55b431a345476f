package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *ContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Contact{}, "id = ?", id).Error
}

func (r *ContactRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("is_primary DESC, last_name ASC, first_name ASC").
		Find(&contacts).Error
	return contacts, err
}

// ClearPrimary unsets the primary flag on all of a business's contacts.
// Called before promoting another contact so at most one is primary.
func (r *ContactRepository) ClearPrimary(ctx context.Context, businessID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("business_id = ? AND is_primary = ?", businessID, true).
		Update("is_primary", false).Error
}
