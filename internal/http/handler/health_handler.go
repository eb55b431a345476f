package handler

import (
	"net/http"

	"github.com/vekst-crm/crm-api/internal/database"
	"github.com/vekst-crm/crm-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	version string
	logger  *zap.Logger
}

func NewHealthHandler(db *gorm.DB, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, version: version, logger: logger}
}

// Check godoc
// @Summary Health check
// @Description Report API and database health
// @Tags Health
// @Produce json
// @Success 200 {object} domain.HealthResponse
// @Failure 503 {object} domain.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	resp := domain.HealthResponse{Status: "ok", Database: "ok", Version: h.version}
	status := http.StatusOK

	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, resp)
}

// Ready godoc
// @Summary Readiness check
// @Description Report whether the API is ready to serve traffic
// @Tags Health
// @Produce json
// @Success 200 {object} domain.HealthResponse
// @Failure 503 {object} domain.HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, domain.HealthResponse{Status: "not_ready", Database: "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, domain.HealthResponse{Status: "ready", Database: "ok"})
}

// Database godoc
// @Summary Database check
// @Description Ping the database
// @Tags Health
// @Produce json
// @Success 200 {object} domain.HealthResponse
// @Failure 503 {object} domain.HealthResponse
// @Router /health/db [get]
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	resp := domain.HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK

	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, resp)
}
