package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type TicketHandler struct {
	ticketService   *service.TicketService
	maxUploadSizeMB int64
	logger          *zap.Logger
}

func NewTicketHandler(ticketService *service.TicketService, maxUploadSizeMB int64, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{ticketService: ticketService, maxUploadSizeMB: maxUploadSizeMB, logger: logger}
}

// List godoc
// @Summary List tickets
// @Description Get paginated list of tickets with optional filters
// @Tags Tickets
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by subject"
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority" Enums(low, medium, high, urgent)
// @Param assigneeId query string false "Filter by assignee"
// @Param businessId query string false "Filter by business"
// @Success 200 {object} domain.PaginatedResponse[domain.TicketResponse]
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets [get]
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	params := domain.TicketListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   r.URL.Query().Get("search"),
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDir:  r.URL.Query().Get("sortDir"),
	}

	if raw := r.URL.Query().Get("assigneeId"); raw != "" {
		assigneeID, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid assignee ID")
			return
		}
		params.AssigneeID = &assigneeID
	}
	if raw := r.URL.Query().Get("businessId"); raw != "" {
		businessID, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid business ID")
			return
		}
		params.BusinessID = &businessID
	}

	result, err := h.ticketService.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		h.logger.Error("failed to list tickets", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list tickets")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Get godoc
// @Summary Get ticket
// @Description Get a ticket with its comment thread
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} domain.TicketDetailResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id} [get]
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	ticket, comments, err := h.ticketService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Ticket not found")
			return
		}
		h.logger.Error("failed to get ticket", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get ticket")
		return
	}

	respondJSON(w, http.StatusOK, domain.TicketDetailResponse{Ticket: *ticket, Comments: comments})
}

// Create godoc
// @Summary Create ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param request body domain.CreateTicketRequest true "Ticket data"
// @Success 201 {object} domain.TicketResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets [post]
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	ticket, err := h.ticketService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to create ticket", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create ticket")
		return
	}

	respondJSON(w, http.StatusCreated, ticket)
}

// Update godoc
// @Summary Update ticket
// @Description Partially update a ticket; setting status resolved stamps the resolution time
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body domain.UpdateTicketRequest true "Fields to update"
// @Success 200 {object} domain.TicketResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id} [put]
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	var req domain.UpdateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	ticket, err := h.ticketService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Ticket not found")
		case errors.Is(err, service.ErrInvalidStatus):
			respondWithError(w, http.StatusBadRequest, "Invalid status or priority")
		default:
			h.logger.Error("failed to update ticket", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update ticket")
		}
		return
	}

	respondJSON(w, http.StatusOK, ticket)
}

// Delete godoc
// @Summary Delete ticket
// @Tags Tickets
// @Param id path string true "Ticket ID"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id} [delete]
func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	if err := h.ticketService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Ticket not found")
			return
		}
		h.logger.Error("failed to delete ticket", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete ticket")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddComment godoc
// @Summary Add comment to ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body domain.CreateTicketCommentRequest true "Comment"
// @Success 201 {object} domain.TicketCommentResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id}/comments [post]
func (h *TicketHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	var req domain.CreateTicketCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	comment, err := h.ticketService.AddComment(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Ticket not found")
		case errors.Is(err, service.ErrUnauthorized):
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
		default:
			h.logger.Error("failed to add comment", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to add comment")
		}
		return
	}

	respondJSON(w, http.StatusCreated, comment)
}

// UploadFile godoc
// @Summary Attach file to ticket
// @Description Upload a file as multipart form data under the "file" field
// @Tags Tickets
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Ticket ID"
// @Param file formData file true "File to attach"
// @Success 201 {object} domain.FileResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id}/files [post]
func (h *TicketHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	maxBytes := h.maxUploadSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("File exceeds the %d MB limit or form is malformed", h.maxUploadSizeMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	saved, err := h.ticketService.AttachFile(r.Context(), id, header.Filename, contentType, file)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Ticket not found")
			return
		}
		h.logger.Error("failed to attach file", zap.String("ticket_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to attach file")
		return
	}

	respondJSON(w, http.StatusCreated, domain.FileResponse{
		ID:          saved.ID,
		Filename:    saved.Filename,
		ContentType: saved.ContentType,
		Size:        saved.Size,
		CreatedAt:   saved.CreatedAt,
	})
}

// DownloadFile godoc
// @Summary Download ticket attachment
// @Tags Tickets
// @Produce application/octet-stream
// @Param id path string true "Ticket ID"
// @Param fileId path string true "File ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id}/files/{fileId} [get]
func (h *TicketHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}
	fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID")
		return
	}

	meta, reader, err := h.ticketService.DownloadFile(r.Context(), id, fileID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("failed to download file", zap.String("file_id", fileID.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to download file")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Filename))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("file stream interrupted", zap.String("file_id", fileID.String()), zap.Error(err))
	}
}
