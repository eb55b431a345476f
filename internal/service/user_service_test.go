package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/repository"
	"github.com/vekst-crm/crm-api/internal/service"
	"github.com/vekst-crm/crm-api/internal/testutil"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *service.UserService {
	return service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewWorkspaceRepository(db),
		testutil.NewTestLogger(),
	)
}

func TestMeProvisionsUserFromSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	workspace := testutil.CreateTestWorkspace(t, db, "vekst")
	userID := uuid.New()
	ctx := testutil.ContextWithUser(userID, "Kari Nordmann", &workspace.ID)

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, userID, me.User.ID)
	assert.Equal(t, "Kari Nordmann", me.User.DisplayName)
	assert.True(t, me.User.IsActive)
	require.NotNil(t, me.User.LastLoginAt)
	require.NotNil(t, me.Workspace)
	assert.Equal(t, "vekst", me.Workspace.Name)

	// Second call reuses the row
	_, err = svc.Me(ctx)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMeWithoutSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)

	_, err := svc.Me(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestListMembersScopedToWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	wsA := testutil.CreateTestWorkspace(t, db, "alpha")
	wsB := testutil.CreateTestWorkspace(t, db, "beta")

	for _, u := range []domain.User{
		{Email: "kari@alpha.no", DisplayName: "Kari", WorkspaceID: &wsA.ID, IsActive: true},
		{Email: "per@alpha.no", DisplayName: "Per", WorkspaceID: &wsA.ID, IsActive: false},
		{Email: "ola@beta.no", DisplayName: "Ola", WorkspaceID: &wsB.ID, IsActive: true},
	} {
		user := u
		require.NoError(t, db.Create(&user).Error)
	}

	members, err := svc.ListMembers(testutil.ContextWithUser(uuid.New(), "Kari", &wsA.ID))
	require.NoError(t, err)
	require.Len(t, members, 1, "inactive and foreign users are excluded")
	assert.Equal(t, "kari@alpha.no", members[0].Email)

	// Unscoped callers get no directory
	members, err = svc.ListMembers(testutil.ContextUnscoped(uuid.New(), "Admin"))
	require.NoError(t, err)
	assert.Empty(t, members)
}
