package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type BusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Create(ctx context.Context, business *domain.Business) error {
	return r.db.WithContext(ctx).Create(business).Error
}

func (r *BusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	var business domain.Business
	query := r.db.WithContext(ctx).Preload("Tags").Where("id = ?", id)
	query = ApplyWorkspaceFilter(ctx, query)
	err := query.First(&business).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *BusinessRepository) Update(ctx context.Context, business *domain.Business) error {
	return r.db.WithContext(ctx).Save(business).Error
}

func (r *BusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Business{}, "id = ?", id).Error
}

// businessSortFields maps API sort fields to database columns
var businessSortFields = map[string]string{
	"name":      "name",
	"stage":     "stage",
	"status":    "status",
	"industry":  "industry",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (r *BusinessRepository) List(ctx context.Context, params domain.BusinessListParams) ([]domain.Business, int64, error) {
	var businesses []domain.Business
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Business{})
	query = ApplyWorkspaceFilter(ctx, query)

	if params.Search != "" {
		searchPattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(org_number) LIKE ? OR LOWER(email) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Stage != "" {
		query = query.Where("stage = ?", params.Stage)
	}
	if params.Industry != "" {
		query = query.Where("industry = ?", params.Industry)
	}
	if params.OnlyLeads {
		query = query.Where("stage IN ?", domain.LeadStages)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy, sortDir := params.SortBy, params.SortDir
	if sortBy == "" {
		sortBy, sortDir = "name", "asc"
	}
	sort := SortConfig{Field: sortBy, Order: ParseSortOrder(sortDir)}
	orderClause := BuildOrderClause(sort, businessSortFields, "name")

	page, pageSize := NormalizePaging(params.Page, params.PageSize)
	offset := (page - 1) * pageSize
	err := query.Preload("Tags").Offset(offset).Limit(pageSize).Order(orderClause).Find(&businesses).Error

	return businesses, total, err
}

// ListLeads returns businesses whose stage counts as an open lead
func (r *BusinessRepository) ListLeads(ctx context.Context) ([]domain.Business, error) {
	var businesses []domain.Business
	query := r.db.WithContext(ctx).Preload("Tags").Where("stage IN ?", domain.LeadStages)
	query = ApplyWorkspaceFilter(ctx, query)
	err := query.Order("created_at DESC").Find(&businesses).Error
	return businesses, err
}

// ReplaceTags swaps a business's tag associations for the given set
func (r *BusinessRepository) ReplaceTags(ctx context.Context, business *domain.Business, tags []domain.Tag) error {
	return r.db.WithContext(ctx).Model(business).Association("Tags").Replace(tags)
}

// AppendTags attaches tags to a business, skipping ones already attached
func (r *BusinessRepository) AppendTags(ctx context.Context, business *domain.Business, tags []domain.Tag) error {
	return r.db.WithContext(ctx).Model(business).Association("Tags").Append(tags)
}

// RemoveTag detaches one tag from a business without deleting the tag row
func (r *BusinessRepository) RemoveTag(ctx context.Context, business *domain.Business, tag *domain.Tag) error {
	return r.db.WithContext(ctx).Model(business).Association("Tags").Delete(tag)
}

func (r *BusinessRepository) GetContactsCount(ctx context.Context, businessID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).Where("business_id = ?", businessID).Count(&count).Error
	return int(count), err
}

func (r *BusinessRepository) Count(ctx context.Context) (int, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Business{})
	query = ApplyWorkspaceFilter(ctx, query)
	err := query.Count(&count).Error
	return int(count), err
}
