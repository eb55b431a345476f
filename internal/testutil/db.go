// Package testutil provides shared helpers for database-backed tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database with the full schema.
// Each call gets its own database, so tests stay isolated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&domain.Workspace{},
		&domain.User{},
		&domain.Business{},
		&domain.Tag{},
		&domain.Contact{},
		&domain.Activity{},
		&domain.Offer{},
		&domain.OfferItem{},
		&domain.JobApplication{},
		&domain.JobApplicationSkill{},
		&domain.Ticket{},
		&domain.TicketComment{},
		&domain.File{},
		&domain.EmailProvider{},
		&domain.Account{},
		&domain.SmsMessage{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// NewTestLogger returns a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// ContextWithUser returns a context carrying an authenticated test user
func ContextWithUser(userID uuid.UUID, name string, workspaceID *uuid.UUID) context.Context {
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      userID,
		DisplayName: name,
		Email:       "test@example.com",
		WorkspaceID: workspaceID,
	})
	return auth.WithWorkspaceFilter(ctx, &auth.WorkspaceFilter{WorkspaceID: workspaceID})
}

// ContextUnscoped returns a context with user identity but no workspace filter
func ContextUnscoped(userID uuid.UUID, name string) context.Context {
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      userID,
		DisplayName: name,
		Email:       "test@example.com",
	})
	return auth.WithWorkspaceFilter(ctx, &auth.WorkspaceFilter{})
}

// CreateTestWorkspace inserts a workspace and returns it
func CreateTestWorkspace(t *testing.T, db *gorm.DB, name string) *domain.Workspace {
	t.Helper()

	workspace := &domain.Workspace{
		Name: name,
		Slug: name + "-" + uuid.NewString()[:8],
	}
	require.NoError(t, db.Create(workspace).Error)
	return workspace
}

// CreateTestBusiness inserts a business in the given workspace and returns it
func CreateTestBusiness(t *testing.T, db *gorm.DB, name string, workspaceID *uuid.UUID) *domain.Business {
	t.Helper()

	business := &domain.Business{
		Name:        name,
		OrgNumber:   uuid.NewString()[:9],
		Email:       "post@example.no",
		Phone:       "+4722334455",
		Status:      domain.BusinessStatusLead,
		Stage:       domain.BusinessStageLead,
		Country:     "Norge",
		WorkspaceID: workspaceID,
	}
	require.NoError(t, db.Create(business).Error)
	return business
}
