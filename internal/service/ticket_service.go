package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/mapper"
	"github.com/vekst-crm/crm-api/internal/repository"
	"github.com/vekst-crm/crm-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TicketService struct {
	ticketRepo   *repository.TicketRepository
	fileRepo     *repository.FileRepository
	businessRepo *repository.BusinessRepository
	store        storage.Storage
	logger       *zap.Logger
}

func NewTicketService(
	ticketRepo *repository.TicketRepository,
	fileRepo *repository.FileRepository,
	businessRepo *repository.BusinessRepository,
	store storage.Storage,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		ticketRepo:   ticketRepo,
		fileRepo:     fileRepo,
		businessRepo: businessRepo,
		store:        store,
		logger:       logger,
	}
}

func (s *TicketService) Create(ctx context.Context, req *domain.CreateTicketRequest) (*domain.TicketResponse, error) {
	priority := domain.TicketPriorityMedium
	if req.Priority != "" {
		priority = domain.TicketPriority(req.Priority)
		if !priority.IsValid() {
			return nil, ErrInvalidInput
		}
	}

	// The business lookup runs workspace-scoped, so a ticket can never
	// be attached across a workspace boundary
	if req.BusinessID != nil {
		if _, err := s.businessRepo.GetByID(ctx, *req.BusinessID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get business: %w", err)
		}
	}

	status := domain.TicketStatusUnassigned
	if req.AssigneeID != nil {
		status = domain.TicketStatusOpen
	}

	ticket := &domain.Ticket{
		Subject:     req.Subject,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		BusinessID:  req.BusinessID,
		AssigneeID:  req.AssigneeID,
		WorkspaceID: auth.GetEffectiveWorkspaceFilter(ctx),
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	resp := mapper.ToTicketResponse(ticket, 0)
	return &resp, nil
}

func (s *TicketService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TicketResponse, []domain.TicketCommentResponse, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	comments := make([]domain.TicketCommentResponse, 0, len(ticket.Comments))
	for i := range ticket.Comments {
		comments = append(comments, mapper.ToTicketCommentResponse(&ticket.Comments[i]))
	}

	resp := mapper.ToTicketResponse(ticket, len(ticket.Comments))
	return &resp, comments, nil
}

func (s *TicketService) List(ctx context.Context, params domain.TicketListParams) (*domain.PaginatedResponse[domain.TicketResponse], error) {
	if params.Status != "" && !domain.TicketStatus(params.Status).IsValid() {
		return nil, ErrInvalidStatus
	}
	if params.Priority != "" && !domain.TicketPriority(params.Priority).IsValid() {
		return nil, ErrInvalidInput
	}

	tickets, total, err := s.ticketRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	items := make([]domain.TicketResponse, 0, len(tickets))
	for i := range tickets {
		count, err := s.ticketRepo.GetCommentsCount(ctx, tickets[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count comments: %w", err)
		}
		items = append(items, mapper.ToTicketResponse(&tickets[i], count))
	}

	page, pageSize := repository.NormalizePaging(params.Page, params.PageSize)
	return &domain.PaginatedResponse[domain.TicketResponse]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func (s *TicketService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateTicketRequest) (*domain.TicketResponse, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if req.Subject != nil {
		ticket.Subject = *req.Subject
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		if !priority.IsValid() {
			return nil, ErrInvalidInput
		}
		ticket.Priority = priority
	}
	if req.AssigneeID != nil {
		ticket.AssigneeID = req.AssigneeID
		if ticket.Status == domain.TicketStatusUnassigned {
			ticket.Status = domain.TicketStatusOpen
		}
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		if status == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
			now := time.Now().UTC()
			ticket.ResolvedAt = &now
		}
		ticket.Status = status
	}

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	count, err := s.ticketRepo.GetCommentsCount(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	resp := mapper.ToTicketResponse(ticket, count)
	return &resp, nil
}

func (s *TicketService) Delete(ctx context.Context, id uuid.UUID) error {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get ticket: %w", err)
	}

	if err := s.ticketRepo.Delete(ctx, ticket.ID); err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return nil
}

func (s *TicketService) AddComment(ctx context.Context, ticketID uuid.UUID, req *domain.CreateTicketCommentRequest) (*domain.TicketCommentResponse, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	comment := &domain.TicketComment{
		TicketID: ticket.ID,
		AuthorID: userCtx.UserID,
		Body:     req.Body,
	}

	if err := s.ticketRepo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	resp := mapper.ToTicketCommentResponse(comment)
	resp.AuthorName = userCtx.DisplayName
	return &resp, nil
}

// AttachFile stores an uploaded attachment and links it to the ticket
func (s *TicketService) AttachFile(ctx context.Context, ticketID uuid.UUID, filename, contentType string, data io.Reader) (*domain.File, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	storagePath, size, err := s.store.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	file := &domain.File{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		TicketID:    &ticket.ID,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Orphaned blob cleanup on metadata failure
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned attachment",
				zap.String("storage_path", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to save attachment metadata: %w", err)
	}

	return file, nil
}

// DownloadFile streams an attachment belonging to a ticket
func (s *TicketService) DownloadFile(ctx context.Context, ticketID, fileID uuid.UUID) (*domain.File, io.ReadCloser, error) {
	if _, err := s.ticketRepo.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get file: %w", err)
	}
	if file.TicketID == nil || *file.TicketID != ticketID {
		return nil, nil, ErrNotFound
	}

	reader, err := s.store.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	return file, reader, nil
}
