package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type JobApplicationHandler struct {
	applicationService *service.JobApplicationService
	logger             *zap.Logger
}

func NewJobApplicationHandler(applicationService *service.JobApplicationService, logger *zap.Logger) *JobApplicationHandler {
	return &JobApplicationHandler{applicationService: applicationService, logger: logger}
}

// List godoc
// @Summary List job applications
// @Description Get paginated list of job applications with optional filters
// @Tags JobApplications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Free text search"
// @Param status query string false "Filter by status" Enums(new, reviewing, interviewed, offer_extended, hired, rejected)
// @Param skill query string false "Filter by exact skill"
// @Param sortBy query string false "Sort field"
// @Param sortDir query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse[domain.JobApplicationResponse]
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /job-applications [get]
func (h *JobApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	params := domain.JobApplicationListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   r.URL.Query().Get("search"),
		Status:   r.URL.Query().Get("status"),
		Skill:    r.URL.Query().Get("skill"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDir:  r.URL.Query().Get("sortDir"),
	}

	result, err := h.applicationService.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		h.logger.Error("failed to list job applications", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list job applications")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Search godoc
// @Summary Search job applications
// @Description Search applications across name, email, position, employer, education and skills
// @Tags JobApplications
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {array} domain.JobApplicationResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /job-applications/search [get]
func (h *JobApplicationHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	results, err := h.applicationService.Search(r.Context(), term)
	if err != nil {
		h.logger.Error("failed to search job applications", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search job applications")
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// Get godoc
// @Summary Get job application
// @Tags JobApplications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} domain.JobApplicationResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /job-applications/{id} [get]
func (h *JobApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	application, err := h.applicationService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Job application not found")
			return
		}
		h.logger.Error("failed to get job application", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get job application")
		return
	}

	respondJSON(w, http.StatusOK, application)
}

// Create godoc
// @Summary Create job application
// @Tags JobApplications
// @Accept json
// @Produce json
// @Param request body domain.CreateJobApplicationRequest true "Application data"
// @Success 201 {object} domain.JobApplicationResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /job-applications [post]
func (h *JobApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateJobApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	application, err := h.applicationService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create job application", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create job application")
		return
	}

	respondJSON(w, http.StatusCreated, application)
}

// Update godoc
// @Summary Update job application
// @Description Partially update an application; status is changed via the status endpoint
// @Tags JobApplications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body domain.UpdateJobApplicationRequest true "Fields to update"
// @Success 200 {object} domain.JobApplicationResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /job-applications/{id} [put]
func (h *JobApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var req domain.UpdateJobApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	application, err := h.applicationService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Job application not found")
			return
		}
		h.logger.Error("failed to update job application", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update job application")
		return
	}

	respondJSON(w, http.StatusOK, application)
}

// UpdateStatus godoc
// @Summary Update application status
// @Description Move an application through the hiring pipeline; writes an audit entry
// @Tags JobApplications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body domain.UpdateJobApplicationStatusRequest true "New status"
// @Success 200 {object} domain.JobApplicationResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /job-applications/{id}/status [patch]
func (h *JobApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var req domain.UpdateJobApplicationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	application, err := h.applicationService.UpdateStatus(r.Context(), id, domain.JobApplicationStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Job application not found")
		case errors.Is(err, service.ErrInvalidStatus):
			respondWithError(w, http.StatusBadRequest, "Invalid status")
		default:
			h.logger.Error("failed to update application status", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update application status")
		}
		return
	}

	respondJSON(w, http.StatusOK, application)
}

// Delete godoc
// @Summary Delete job application
// @Tags JobApplications
// @Param id path string true "Application ID"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /job-applications/{id} [delete]
func (h *JobApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	if err := h.applicationService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Job application not found")
			return
		}
		h.logger.Error("failed to delete job application", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete job application")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListActivities godoc
// @Summary List application activities
// @Tags JobApplications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {array} domain.ActivityResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /job-applications/{id}/activities [get]
func (h *JobApplicationHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	activities, err := h.applicationService.GetActivities(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Job application not found")
			return
		}
		h.logger.Error("failed to list application activities", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// CreateActivity godoc
// @Summary Add activity to application
// @Tags JobApplications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body domain.CreateActivityRequest true "Activity data"
// @Success 201 {object} domain.ActivityResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /job-applications/{id}/activities [post]
func (h *JobApplicationHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var req domain.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	activity, err := h.applicationService.AddActivity(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Job application not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, "Invalid activity type")
		default:
			h.logger.Error("failed to add application activity", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to add activity")
		}
		return
	}

	respondJSON(w, http.StatusCreated, activity)
}
