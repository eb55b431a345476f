package service_test

import (
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

func newJobApplicationService(db *gorm.DB) *service.JobApplicationService {
	return service.NewJobApplicationService(
		repository.NewJobApplicationRepository(db),
		repository.NewActivityRepository(db),
		testutil.NewTestLogger(),
	)
}

func createApplication(t *testing.T, svc *service.JobApplicationService, name string, skills ...string) *domain.JobApplicationResponse {
	t.Helper()
	created, err := svc.Create(testutil.ContextUnscoped(uuid.New(), "Kari"), &domain.CreateJobApplicationRequest{
		Name:            name,
		Email:           "kandidat@example.com",
		DesiredPosition: "Utvikler",
		Skills:          skills,
	})
	require.NoError(t, err)
	return created
}

func TestJobApplicationCreateNormalizesSkills(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newJobApplicationService(db)

	created := createApplication(t, svc, "Ola Hansen", "Go", "go", "PostgreSQL")

	assert.Equal(t, "new", created.Status)
	assert.Equal(t, "Ny", created.StatusLabel)
	assert.ElementsMatch(t, []string{"go", "postgresql"}, created.Skills)
}

func TestJobApplicationUpdateStatusWritesAudit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newJobApplicationService(db)
	created := createApplication(t, svc, "Ola Hansen")
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	updated, err := svc.UpdateStatus(ctx, created.ID, domain.JobApplicationStatusHired)
	require.NoError(t, err)
	assert.Equal(t, "hired", updated.Status)
	assert.Equal(t, "Ansatt", updated.StatusLabel)

	var activities []domain.Activity
	require.NoError(t, db.Where("job_application_id = ?", created.ID).Find(&activities).Error)
	require.Len(t, activities, 1)
	assert.Equal(t, "Status endret til Ansatt", activities[0].Description)
	assert.Equal(t, domain.SystemUserID, activities[0].UserID)
	assert.True(t, activities[0].Completed)
}

func TestJobApplicationUpdateStatusNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newJobApplicationService(db)
	created := createApplication(t, svc, "Ola Hansen")
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.UpdateStatus(ctx, created.ID, domain.JobApplicationStatusNew)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Activity{}).Where("job_application_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count, "unchanged status must not log an activity")
}

func TestJobApplicationSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newJobApplicationService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	createApplication(t, svc, "Ola Hansen", "go")
	createApplication(t, svc, "Nina Berg", "react")

	results, err := svc.Search(ctx, "hansen")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ola Hansen", results[0].Name)

	results, err = svc.Search(ctx, "go")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ola Hansen", results[0].Name)
}

func TestJobApplicationListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newJobApplicationService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	first := createApplication(t, svc, "Ola Hansen", "go")
	createApplication(t, svc, "Nina Berg", "react")
	_, err := svc.UpdateStatus(ctx, first.ID, domain.JobApplicationStatusReviewing)
	require.NoError(t, err)

	result, err := svc.List(ctx, domain.JobApplicationListParams{Status: "reviewing"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, first.ID, result.Items[0].ID)

	result, err = svc.List(ctx, domain.JobApplicationListParams{Skill: "react"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Nina Berg", result.Items[0].Name)

	_, err = svc.List(ctx, domain.JobApplicationListParams{Status: "bogus"})
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestJobApplicationActivities(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newJobApplicationService(db)
	created := createApplication(t, svc, "Ola Hansen")
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.AddActivity(ctx, created.ID, &domain.CreateActivityRequest{
		Type:        "call",
		Description: "Førstegangsintervju avtalt",
	})
	require.NoError(t, err)

	_, err = svc.AddActivity(ctx, created.ID, &domain.CreateActivityRequest{
		Type:        "fax",
		Description: "x",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	activities, err := svc.GetActivities(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Førstegangsintervju avtalt", activities[0].Description)
}

func TestJobApplicationDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newJobApplicationService(db)
	created := createApplication(t, svc, "Ola Hansen", "go")
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err := svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
