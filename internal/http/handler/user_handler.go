package handler

import (
	"errors"
	"net/http"

	"github.com/vekst-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// Me godoc
// @Summary Current user
// @Description Return the authenticated user and their workspace. The user row is provisioned from the session on first call.
// @Tags Users
// @Produce json
// @Success 200 {object} domain.MeResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.userService.Me(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		h.logger.Error("failed to resolve current user", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	respondJSON(w, http.StatusOK, me)
}

// ListMembers godoc
// @Summary List workspace members
// @Description List the active users of the caller's workspace
// @Tags Users
// @Produce json
// @Success 200 {array} domain.UserResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListMembers(r.Context())
	if err != nil {
		h.logger.Error("failed to list workspace members", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, users)
}
