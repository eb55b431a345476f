package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/repository"
	"github.com/vekst-crm/crm-api/internal/service"
	"github.com/vekst-crm/crm-api/internal/testutil"
	"gorm.io/gorm"
)

func newActivityService(db *gorm.DB) *service.ActivityService {
	return service.NewActivityService(
		repository.NewActivityRepository(db),
		repository.NewBusinessRepository(db),
		testutil.NewTestLogger(),
	)
}

func TestActivityCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newActivityService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	userID := uuid.New()
	ctx := testutil.ContextUnscoped(userID, "Kari Nordmann")

	occurred := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	activity, err := svc.Create(ctx, &domain.CreateActivityRequest{
		Type:        "meeting",
		Description: "Oppstartsmøte",
		OccurredAt:  &occurred,
		BusinessID:  &business.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "meeting", activity.Type)
	assert.Equal(t, userID, activity.UserID)
	assert.Equal(t, "Kari Nordmann", activity.UserName)
	assert.True(t, occurred.Equal(activity.OccurredAt))
}

func TestActivityCreateRequiresTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newActivityService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.Create(ctx, &domain.CreateActivityRequest{Type: "note", Description: "Løsrevet"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	businessID := uuid.New()
	_, err = svc.Create(ctx, &domain.CreateActivityRequest{Type: "fax", Description: "x", BusinessID: &businessID})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestActivityCreateUnknownBusiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newActivityService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	missing := uuid.New()
	_, err := svc.Create(ctx, &domain.CreateActivityRequest{Type: "call", Description: "x", BusinessID: &missing})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestActivityUpdateCompletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newActivityService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	activity, err := svc.Create(ctx, &domain.CreateActivityRequest{
		Type:        "call",
		Description: "Ring om tilbudet",
		BusinessID:  &business.ID,
	})
	require.NoError(t, err)
	assert.False(t, activity.Completed)

	done := true
	outcome := "Avtalte nytt møte"
	updated, err := svc.Update(ctx, activity.ID, &domain.UpdateActivityRequest{Completed: &done, Outcome: &outcome})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Avtalte nytt møte", updated.Outcome)
}

func TestActivityListNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newActivityService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	older := time.Now().UTC().Add(-48 * time.Hour)
	newer := time.Now().UTC().Add(-1 * time.Hour)
	for _, a := range []struct {
		desc string
		at   time.Time
	}{
		{"Første kontakt", older},
		{"Oppfølging", newer},
	} {
		occurred := a.at
		_, err := svc.Create(ctx, &domain.CreateActivityRequest{
			Type:        "note",
			Description: a.desc,
			OccurredAt:  &occurred,
			BusinessID:  &business.ID,
		})
		require.NoError(t, err)
	}

	activities, err := svc.ListByBusiness(ctx, business.ID, 0)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "Oppfølging", activities[0].Description)

	limited, err := svc.ListByBusiness(ctx, business.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
