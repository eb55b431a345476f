package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type BusinessHandler struct {
	businessService *service.BusinessService
	contactService  *service.ContactService
	activityService *service.ActivityService
	offerService    *service.OfferService
	logger          *zap.Logger
}

func NewBusinessHandler(
	businessService *service.BusinessService,
	contactService *service.ContactService,
	activityService *service.ActivityService,
	offerService *service.OfferService,
	logger *zap.Logger,
) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
		contactService:  contactService,
		activityService: activityService,
		offerService:    offerService,
		logger:          logger,
	}
}

// List godoc
// @Summary List businesses
// @Description Get paginated list of businesses with optional filters
// @Tags Businesses
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name, org number or email"
// @Param status query string false "Filter by status" Enums(active, inactive, lead)
// @Param stage query string false "Filter by stage" Enums(lead, prospect, qualified, customer, churned)
// @Param industry query string false "Filter by industry"
// @Param sortBy query string false "Sort field"
// @Param sortDir query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse[domain.BusinessResponse]
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses [get]
func (h *BusinessHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	params := domain.BusinessListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   r.URL.Query().Get("search"),
		Status:   r.URL.Query().Get("status"),
		Stage:    r.URL.Query().Get("stage"),
		Industry: r.URL.Query().Get("industry"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDir:  r.URL.Query().Get("sortDir"),
	}

	result, err := h.businessService.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) || errors.Is(err, service.ErrInvalidStage) {
			respondWithError(w, http.StatusBadRequest, "Invalid filter value")
			return
		}
		h.logger.Error("failed to list businesses", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list businesses")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetLeads godoc
// @Summary List open leads
// @Description Get all businesses in a lead stage (lead, prospect, qualified)
// @Tags Businesses
// @Produce json
// @Success 200 {array} domain.BusinessResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/leads [get]
func (h *BusinessHandler) GetLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.businessService.GetLeads(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	respondJSON(w, http.StatusOK, leads)
}

// Get godoc
// @Summary Get business
// @Description Get a single business by ID
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} domain.BusinessResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id} [get]
func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	business, err := h.businessService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to get business", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get business")
		return
	}

	respondJSON(w, http.StatusOK, business)
}

// Create godoc
// @Summary Create business
// @Description Create a new business with optional tags
// @Tags Businesses
// @Accept json
// @Produce json
// @Param request body domain.CreateBusinessRequest true "Business data"
// @Success 201 {object} domain.BusinessResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses [post]
func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	business, err := h.businessService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) || errors.Is(err, service.ErrInvalidStage) {
			respondWithError(w, http.StatusBadRequest, "Invalid status or stage")
			return
		}
		h.logger.Error("failed to create business", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create business")
		return
	}

	respondJSON(w, http.StatusCreated, business)
}

// Update godoc
// @Summary Update business
// @Description Partially update a business; omitted fields are unchanged
// @Tags Businesses
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body domain.UpdateBusinessRequest true "Fields to update"
// @Success 200 {object} domain.BusinessResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id} [put]
func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	var req domain.UpdateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	business, err := h.businessService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Business not found")
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidStage):
			respondWithError(w, http.StatusBadRequest, "Invalid status or stage")
		default:
			h.logger.Error("failed to update business", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update business")
		}
		return
	}

	respondJSON(w, http.StatusOK, business)
}

// UpdateStage godoc
// @Summary Update business stage
// @Description Move a business to another pipeline stage
// @Tags Businesses
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body object{stage=string} true "New stage"
// @Success 200 {object} domain.BusinessResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id}/stage [patch]
func (h *BusinessHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	var req struct {
		Stage string `json:"stage" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	business, err := h.businessService.UpdateStage(r.Context(), id, domain.BusinessStage(req.Stage))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Business not found")
		case errors.Is(err, service.ErrInvalidStage):
			respondWithError(w, http.StatusBadRequest, "Invalid stage")
		default:
			h.logger.Error("failed to update stage", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update stage")
		}
		return
	}

	respondJSON(w, http.StatusOK, business)
}

// ConvertToCustomer godoc
// @Summary Convert lead to customer
// @Description Promote a lead-stage business to an active customer
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} domain.BusinessResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id}/convert [post]
func (h *BusinessHandler) ConvertToCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	business, err := h.businessService.ConvertLeadToCustomer(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Business not found")
		case errors.Is(err, service.ErrConflict):
			respondWithError(w, http.StatusConflict, "Business is already a customer")
		default:
			h.logger.Error("failed to convert business", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to convert business")
		}
		return
	}

	respondJSON(w, http.StatusOK, business)
}

// AddTags godoc
// @Summary Add tags to business
// @Description Attach tags to a business, creating unknown tag names
// @Tags Businesses
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param tags body object true "Tag names"
// @Success 200 {object} domain.BusinessResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id}/tags [post]
func (h *BusinessHandler) AddTags(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	var req struct {
		Tags []string `json:"tags" validate:"required,min=1"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	business, err := h.businessService.AddTags(r.Context(), id, req.Tags)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Business not found")
		default:
			h.logger.Error("failed to add tags", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to add tags")
		}
		return
	}

	respondJSON(w, http.StatusOK, business)
}

// RemoveTag godoc
// @Summary Remove tag from business
// @Description Detach a tag from a business by name
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Param tag path string true "Tag name"
// @Success 200 {object} domain.BusinessResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id}/tags/{tag} [delete]
func (h *BusinessHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	name, err := url.PathUnescape(chi.URLParam(r, "tag"))
	if err != nil || name == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid tag name")
		return
	}

	business, err := h.businessService.RemoveTag(r.Context(), id, name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Business not found")
		case errors.Is(err, service.ErrTagNotFound):
			respondWithError(w, http.StatusNotFound, "Tag not found")
		default:
			h.logger.Error("failed to remove tag", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to remove tag")
		}
		return
	}

	respondJSON(w, http.StatusOK, business)
}

// Delete godoc
// @Summary Delete business
// @Description Delete a business and its contacts and offers
// @Tags Businesses
// @Param id path string true "Business ID"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id} [delete]
func (h *BusinessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	if err := h.businessService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to delete business", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete business")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListContacts godoc
// @Summary List business contacts
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {array} domain.ContactResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id}/contacts [get]
func (h *BusinessHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	contacts, err := h.contactService.ListByBusiness(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to list contacts", zap.String("business_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list contacts")
		return
	}

	respondJSON(w, http.StatusOK, contacts)
}

// CreateContact godoc
// @Summary Add contact to business
// @Tags Businesses
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body domain.CreateContactRequest true "Contact data"
// @Success 201 {object} domain.ContactResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id}/contacts [post]
func (h *BusinessHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	var req domain.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	contact, err := h.contactService.Create(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to create contact", zap.String("business_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create contact")
		return
	}

	respondJSON(w, http.StatusCreated, contact)
}

// ListActivities godoc
// @Summary List business activities
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Param limit query int false "Maximum number of entries"
// @Success 200 {array} domain.ActivityResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id}/activities [get]
func (h *BusinessHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.activityService.ListByBusiness(r.Context(), id, limit)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to list activities", zap.String("business_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// ListOffers godoc
// @Summary List business offers
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {array} domain.OfferResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /businesses/{id}/offers [get]
func (h *BusinessHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID")
		return
	}

	offers, err := h.offerService.ListByBusiness(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Business not found")
			return
		}
		h.logger.Error("failed to list offers", zap.String("business_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list offers")
		return
	}

	respondJSON(w, http.StatusOK, offers)
}
