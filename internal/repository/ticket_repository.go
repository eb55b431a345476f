package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	var ticket domain.Ticket
	query := r.db.WithContext(ctx).
		Preload("Business").
		Preload("Assignee").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.Author").
		Where("id = ?", id)
	query = ApplyWorkspaceFilter(ctx, query)
	err := query.First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

func (r *TicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Ticket{}, "id = ?", id).Error
}

// ticketSortFields maps API sort fields to database columns
var ticketSortFields = map[string]string{
	"subject":   "subject",
	"status":    "status",
	"priority":  "priority",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (r *TicketRepository) List(ctx context.Context, params domain.TicketListParams) ([]domain.Ticket, int64, error) {
	var tickets []domain.Ticket
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Ticket{})
	query = ApplyWorkspaceFilter(ctx, query)

	if params.Search != "" {
		searchPattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(subject) LIKE ? OR LOWER(description) LIKE ?", searchPattern, searchPattern)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}
	if params.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *params.AssigneeID)
	}
	if params.BusinessID != nil {
		query = query.Where("business_id = ?", *params.BusinessID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := SortConfig{Field: params.SortBy, Order: ParseSortOrder(params.SortDir)}
	orderClause := BuildOrderClause(sort, ticketSortFields, "created_at")

	page, pageSize := NormalizePaging(params.Page, params.PageSize)
	offset := (page - 1) * pageSize
	err := query.Preload("Business").Preload("Assignee").
		Offset(offset).Limit(pageSize).Order(orderClause).Find(&tickets).Error

	return tickets, total, err
}

func (r *TicketRepository) AddComment(ctx context.Context, comment *domain.TicketComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *TicketRepository) GetCommentsCount(ctx context.Context, ticketID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.TicketComment{}).Where("ticket_id = ?", ticketID).Count(&count).Error
	return int(count), err
}
