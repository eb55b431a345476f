package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type SmsHandler struct {
	smsService *service.SmsService
	logger     *zap.Logger
}

func NewSmsHandler(smsService *service.SmsService, logger *zap.Logger) *SmsHandler {
	return &SmsHandler{smsService: smsService, logger: logger}
}

// Send godoc
// @Summary Send SMS to business
// @Description Send a text message to a business. The recipient defaults to the primary contact's phone, then the business phone.
// @Tags Sms
// @Accept json
// @Produce json
// @Param request body domain.SendSmsRequest true "Message"
// @Success 201 {object} domain.SmsMessageResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse
// @Failure 503 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /sms [post]
func (h *SmsHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendSmsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	message, err := h.smsService.Send(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSmsDisabled):
			respondWithError(w, http.StatusServiceUnavailable, "SMS sending is not enabled")
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Business not found")
		case errors.Is(err, service.ErrNoRecipient):
			respondWithError(w, http.StatusUnprocessableEntity, "No phone number available for this business")
		default:
			h.logger.Error("failed to send sms", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to send SMS")
		}
		return
	}

	respondJSON(w, http.StatusCreated, message)
}

// ListByBusiness godoc
// @Summary List messages sent to business
// @Tags Sms
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {array} domain.SmsMessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id}/sms [get]
func (h *SmsHandler) ListByBusiness(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	messages, err := h.smsService.ListByBusiness(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to list sms messages", zap.String("business_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list SMS messages")
		return
	}

	respondJSON(w, http.StatusOK, messages)
}
