package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	WorkspaceID *uuid.UUID
	IsService   bool
}

type contextKey string

const userContextKey contextKey = "userContext"
const workspaceFilterKey contextKey = "workspaceFilter"

// WorkspaceFilter is the effective tenant scope for a request.
// A nil WorkspaceID means the request sees data across all workspaces.
type WorkspaceFilter struct {
	WorkspaceID *uuid.UUID
}

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// WithWorkspaceFilter adds the effective workspace filter to the context
func WithWorkspaceFilter(ctx context.Context, filter *WorkspaceFilter) context.Context {
	return context.WithValue(ctx, workspaceFilterKey, filter)
}

// GetEffectiveWorkspaceFilter returns the workspace ID queries must be
// scoped to, or nil when the request may see all workspaces
func GetEffectiveWorkspaceFilter(ctx context.Context) *uuid.UUID {
	filter, ok := ctx.Value(workspaceFilterKey).(*WorkspaceFilter)
	if !ok || filter == nil {
		return nil
	}
	return filter.WorkspaceID
}

// SystemContext returns a context carrying the reserved system actor.
// Used by background jobs that act outside any user session.
func SystemContext(ctx context.Context) context.Context {
	ctx = WithUserContext(ctx, &UserContext{
		UserID:      domain.SystemUserID,
		DisplayName: domain.SystemUserName,
		IsService:   true,
	})
	return WithWorkspaceFilter(ctx, &WorkspaceFilter{WorkspaceID: nil})
}
