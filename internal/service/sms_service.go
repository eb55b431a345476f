package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/mapper"
	"github.com/vekst-crm/crm-api/internal/repository"
	"github.com/vekst-crm/crm-api/internal/sms"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SmsService struct {
	smsRepo      *repository.SmsRepository
	businessRepo *repository.BusinessRepository
	contactRepo  *repository.ContactRepository
	client       *sms.Client
	enabled      bool
	logger       *zap.Logger
}

func NewSmsService(
	smsRepo *repository.SmsRepository,
	businessRepo *repository.BusinessRepository,
	contactRepo *repository.ContactRepository,
	client *sms.Client,
	enabled bool,
	logger *zap.Logger,
) *SmsService {
	return &SmsService{
		smsRepo:      smsRepo,
		businessRepo: businessRepo,
		contactRepo:  contactRepo,
		client:       client,
		enabled:      enabled,
		logger:       logger,
	}
}

// Send texts a business. When no explicit recipient is given the number
// falls back to the primary contact's phone, then the business phone.
// The message row is written before the gateway call and updated with
// the outcome, so failed sends stay visible.
func (s *SmsService) Send(ctx context.Context, req *domain.SendSmsRequest) (*domain.SmsMessageResponse, error) {
	if !s.enabled {
		return nil, ErrSmsDisabled
	}

	business, err := s.businessRepo.GetByID(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient, err = s.resolveRecipient(ctx, business)
		if err != nil {
			return nil, err
		}
	}

	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	message := &domain.SmsMessage{
		BusinessID: business.ID,
		Recipient:  recipient,
		Content:    req.Content,
		Status:     domain.SmsStatusQueued,
		SenderID:   userCtx.UserID,
	}
	if err := s.smsRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}

	result, err := s.client.Send(ctx, recipient, req.Content)
	if err != nil {
		message.Status = domain.SmsStatusFailed
		message.ErrorDetail = err.Error()
		if updErr := s.smsRepo.Update(ctx, message); updErr != nil {
			s.logger.Error("failed to record sms failure",
				zap.String("message_id", message.ID.String()),
				zap.Error(updErr),
			)
		}
		return nil, fmt.Errorf("failed to send sms: %w", err)
	}

	message.Status = domain.SmsStatusSent
	message.GatewayMessageID = result.MessageID
	if err := s.smsRepo.Update(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to record sms result: %w", err)
	}

	resp := mapper.ToSmsMessageResponse(message)
	return &resp, nil
}

func (s *SmsService) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.SmsMessageResponse, error) {
	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	messages, err := s.smsRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	items := make([]domain.SmsMessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, mapper.ToSmsMessageResponse(&messages[i]))
	}
	return items, nil
}

func (s *SmsService) resolveRecipient(ctx context.Context, business *domain.Business) (string, error) {
	contacts, err := s.contactRepo.ListByBusiness(ctx, business.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list contacts: %w", err)
	}
	for i := range contacts {
		if contacts[i].IsPrimary && contacts[i].Phone != "" {
			return contacts[i].Phone, nil
		}
	}
	if business.Phone != "" {
		return business.Phone, nil
	}
	return "", ErrNoRecipient
}
