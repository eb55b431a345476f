package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type MailAccountHandler struct {
	mailAccountService *service.MailAccountService
	logger             *zap.Logger
}

func NewMailAccountHandler(mailAccountService *service.MailAccountService, logger *zap.Logger) *MailAccountHandler {
	return &MailAccountHandler{mailAccountService: mailAccountService, logger: logger}
}

// SaveProvider godoc
// @Summary Link mail provider
// @Description Verify an OAuth access token against the provider and store the link for the current user. Replaces any existing link.
// @Tags MailAccount
// @Accept json
// @Produce json
// @Param request body domain.SaveEmailProviderRequest true "Provider and tokens"
// @Success 200 {object} domain.ProviderResult
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /mail-account/provider [post]
func (h *MailAccountHandler) SaveProvider(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.SaveEmailProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.mailAccountService.SaveProvider(r.Context(), user.UserID, &req)
	if err != nil {
		h.logger.Error("failed to save mail provider", zap.String("user_id", user.UserID.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to save mail provider")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetProvider godoc
// @Summary Get linked mail provider
// @Tags MailAccount
// @Produce json
// @Success 200 {object} domain.EmailProviderResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /mail-account/provider [get]
func (h *MailAccountHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	provider, err := h.mailAccountService.GetProvider(r.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, service.ErrProviderNotLinked) {
			respondWithError(w, http.StatusNotFound, "No mail provider linked")
			return
		}
		h.logger.Error("failed to get mail provider", zap.String("user_id", user.UserID.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get mail provider")
		return
	}

	respondJSON(w, http.StatusOK, provider)
}

// Disconnect godoc
// @Summary Disconnect mail provider
// @Description Remove the stored provider link for the current user. Succeeds even if no link exists.
// @Tags MailAccount
// @Produce json
// @Success 200 {object} domain.ProviderResult
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /mail-account/provider [delete]
func (h *MailAccountHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	result, err := h.mailAccountService.Disconnect(r.Context(), user.UserID)
	if err != nil {
		h.logger.Error("failed to disconnect mail provider", zap.String("user_id", user.UserID.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to disconnect mail provider")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// TokenInfo godoc
// @Summary Validate stored provider token
// @Description Check the current user's stored access token for a provider against the provider's identity endpoint and refresh the link on success
// @Tags MailAccount
// @Accept json
// @Produce json
// @Param request body object{provider=string} true "Provider name"
// @Success 200 {object} domain.ProviderResult
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /mail-account/token-info [post]
func (h *MailAccountHandler) TokenInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Provider string `json:"provider" validate:"required,oneof=google microsoft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.mailAccountService.FetchTokenInfo(r.Context(), user.UserID, domain.MailProviderName(req.Provider))
	if err != nil {
		h.logger.Error("failed to fetch token info", zap.String("user_id", user.UserID.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch token info")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// VerifyToken godoc
// @Summary Verify provider token
// @Description Check an access token against the provider without storing anything
// @Tags MailAccount
// @Accept json
// @Produce json
// @Param request body object{provider=string,accessToken=string} true "Provider and token"
// @Success 200 {object} domain.ProviderResult
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /mail-account/verify [post]
func (h *MailAccountHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider    string `json:"provider" validate:"required,oneof=google microsoft"`
		AccessToken string `json:"accessToken" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	result := h.mailAccountService.VerifyToken(r.Context(), domain.MailProviderName(req.Provider), req.AccessToken)
	respondJSON(w, http.StatusOK, result)
}
