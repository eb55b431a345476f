package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/config"
	"go.uber.org/zap"
)

// WorkspaceFilterMiddleware handles workspace data isolation. In workspace
// mode every authenticated user is scoped to their own workspace; service
// callers see all data and may narrow to one workspace via a query
// parameter. In global mode no scoping is applied.
type WorkspaceFilterMiddleware struct {
	scopeMode string
	logger    *zap.Logger
}

// NewWorkspaceFilterMiddleware creates a new workspace filter middleware
func NewWorkspaceFilterMiddleware(scopeMode string, logger *zap.Logger) *WorkspaceFilterMiddleware {
	return &WorkspaceFilterMiddleware{
		scopeMode: scopeMode,
		logger:    logger,
	}
}

// Filter sets the effective workspace filter in the request context
func (m *WorkspaceFilterMiddleware) Filter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := auth.FromContext(r.Context())
		if !ok || m.scopeMode == config.ScopeModeGlobal {
			// Authentication middleware rejects unauthenticated requests;
			// anything reaching here without user context stays unscoped
			next.ServeHTTP(w, r)
			return
		}

		var filter *auth.WorkspaceFilter

		if userCtx.IsService {
			filter = &auth.WorkspaceFilter{}

			if requested := r.URL.Query().Get("workspaceId"); requested != "" {
				workspaceID, err := uuid.Parse(requested)
				if err != nil {
					http.Error(w, "Invalid workspaceId parameter", http.StatusBadRequest)
					return
				}
				filter.WorkspaceID = &workspaceID
			}
		} else {
			if userCtx.WorkspaceID == nil {
				m.logger.Warn("authenticated user has no workspace",
					zap.String("user_id", userCtx.UserID.String()),
				)
				http.Error(w, "Access denied: no workspace assigned", http.StatusForbidden)
				return
			}
			filter = &auth.WorkspaceFilter{WorkspaceID: userCtx.WorkspaceID}
		}

		ctx := auth.WithWorkspaceFilter(r.Context(), filter)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
