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

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, logger: logger}
}

// Create godoc
// @Summary Create activity
// @Description Log a call, meeting, email or note against a business, contact or application
// @Tags Activities
// @Accept json
// @Produce json
// @Param request body domain.CreateActivityRequest true "Activity data"
// @Success 201 {object} domain.ActivityResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /activities [post]
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	activity, err := h.activityService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Related record not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, "Activity must target a business, contact or job application")
		default:
			h.logger.Error("failed to create activity", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to create activity")
		}
		return
	}

	respondJSON(w, http.StatusCreated, activity)
}

// Update godoc
// @Summary Update activity
// @Description Mark an activity completed or record its outcome
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param request body domain.UpdateActivityRequest true "Fields to update"
// @Success 200 {object} domain.ActivityResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /activities/{id} [patch]
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid activity ID")
		return
	}

	var req domain.UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	activity, err := h.activityService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Activity not found")
			return
		}
		h.logger.Error("failed to update activity", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update activity")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}
