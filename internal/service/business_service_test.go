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

func newBusinessService(db *gorm.DB) *service.BusinessService {
	return service.NewBusinessService(
		repository.NewBusinessRepository(db),
		repository.NewTagRepository(db),
		repository.NewActivityRepository(db),
		testutil.NewTestLogger(),
	)
}

func TestBusinessCreateDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	workspace := testutil.CreateTestWorkspace(t, db, "vekst")
	ctx := testutil.ContextWithUser(uuid.New(), "Kari Nordmann", &workspace.ID)

	created, err := svc.Create(ctx, &domain.CreateBusinessRequest{Name: "Fjellheim AS"})
	require.NoError(t, err)

	assert.Equal(t, "lead", created.Status)
	assert.Equal(t, "lead", created.Stage)
	assert.Equal(t, "Norge", created.Country)

	// Creation is logged on the timeline
	var activities []domain.Activity
	require.NoError(t, db.Where("business_id = ?", created.ID).Find(&activities).Error)
	require.Len(t, activities, 1)
	assert.Contains(t, activities[0].Description, "Fjellheim AS")
	assert.Equal(t, "Kari Nordmann", activities[0].UserName)
}

func TestBusinessCreateRejectsInvalidStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.Create(ctx, &domain.CreateBusinessRequest{Name: "X", Stage: "bogus"})
	assert.ErrorIs(t, err, service.ErrInvalidStage)
}

func TestBusinessTagsDeduplicated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.Create(ctx, &domain.CreateBusinessRequest{Name: "A", Tags: []string{"bygg", "VIP"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.CreateBusinessRequest{Name: "B", Tags: []string{"bygg"}})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Tag{}).Where("name = ?", "bygg").Count(&count).Error)
	assert.Equal(t, int64(1), count, "same tag name must resolve to one row")
}

func TestBusinessWorkspaceIsolation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)

	wsA := testutil.CreateTestWorkspace(t, db, "alpha")
	wsB := testutil.CreateTestWorkspace(t, db, "beta")
	business := testutil.CreateTestBusiness(t, db, "Alpha Kunde", &wsA.ID)

	ctxB := testutil.ContextWithUser(uuid.New(), "Per", &wsB.ID)
	_, err := svc.GetByID(ctxB, business.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.Delete(ctxB, business.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	ctxA := testutil.ContextWithUser(uuid.New(), "Kari", &wsA.ID)
	got, err := svc.GetByID(ctxA, business.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha Kunde", got.Name)
}

func TestBusinessGetLeadsExcludesCustomers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	lead := testutil.CreateTestBusiness(t, db, "Lead AS", nil)
	customer := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	require.NoError(t, db.Model(customer).Update("stage", domain.BusinessStageCustomer).Error)

	leads, err := svc.GetLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, lead.ID, leads[0].ID)
}

func TestBusinessUpdateStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")
	business := testutil.CreateTestBusiness(t, db, "Pipeline AS", nil)

	updated, err := svc.UpdateStage(ctx, business.ID, domain.BusinessStageProspect)
	require.NoError(t, err)
	assert.Equal(t, "prospect", updated.Stage)

	// Moving to customer also activates the business
	updated, err = svc.UpdateStage(ctx, business.ID, domain.BusinessStageCustomer)
	require.NoError(t, err)
	assert.Equal(t, "customer", updated.Stage)
	assert.Equal(t, "active", updated.Status)

	var activities []domain.Activity
	require.NoError(t, db.Where("business_id = ?", business.ID).Find(&activities).Error)
	assert.Len(t, activities, 2)
}

func TestBusinessUpdateStageNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")
	business := testutil.CreateTestBusiness(t, db, "Stille AS", nil)

	_, err := svc.UpdateStage(ctx, business.ID, domain.BusinessStageLead)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Activity{}).Where("business_id = ?", business.ID).Count(&count).Error)
	assert.Zero(t, count, "unchanged stage must not log an activity")
}

func TestBusinessConvertLeadToCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")
	business := testutil.CreateTestBusiness(t, db, "Konvertert AS", nil)

	converted, err := svc.ConvertLeadToCustomer(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, "customer", converted.Stage)
	assert.Equal(t, "active", converted.Status)

	_, err = svc.ConvertLeadToCustomer(ctx, business.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestBusinessUpdatePartial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")
	business := testutil.CreateTestBusiness(t, db, "Delvis AS", nil)

	newCity := "Bergen"
	updated, err := svc.Update(ctx, business.ID, &domain.UpdateBusinessRequest{City: &newCity})
	require.NoError(t, err)
	assert.Equal(t, "Bergen", updated.City)
	assert.Equal(t, "Delvis AS", updated.Name, "omitted fields stay unchanged")

	tags := []string{"entreprenør"}
	updated, err = svc.Update(ctx, business.ID, &domain.UpdateBusinessRequest{Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, []string{"entreprenør"}, updated.Tags)
}

func TestBusinessListFiltersAndPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	for _, name := range []string{"Nordbygg AS", "Sørbygg AS", "Vestservice AS"} {
		testutil.CreateTestBusiness(t, db, name, nil)
	}

	result, err := svc.List(ctx, domain.BusinessListParams{Search: "bygg", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)

	result, err = svc.List(ctx, domain.BusinessListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, 2, result.TotalPages)

	_, err = svc.List(ctx, domain.BusinessListParams{Status: "bogus"})
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestBusinessAddTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")
	business := testutil.CreateTestBusiness(t, db, "Tagget AS", nil)

	updated, err := svc.AddTags(ctx, business.ID, []string{"bygg", "VIP"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bygg", "VIP"}, updated.Tags)

	// Re-adding an attached tag is a no-op, new names still land
	updated, err = svc.AddTags(ctx, business.ID, []string{"bygg", "nord"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bygg", "VIP", "nord"}, updated.Tags)

	_, err = svc.AddTags(ctx, uuid.New(), []string{"bygg"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestBusinessRemoveTag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	created, err := svc.Create(ctx, &domain.CreateBusinessRequest{Name: "A", Tags: []string{"bygg", "VIP"}})
	require.NoError(t, err)

	updated, err := svc.RemoveTag(ctx, created.ID, "bygg")
	require.NoError(t, err)
	assert.Equal(t, []string{"VIP"}, updated.Tags)

	// Detaching must not delete the tag row itself
	var count int64
	require.NoError(t, db.Model(&domain.Tag{}).Where("name = ?", "bygg").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = svc.RemoveTag(ctx, created.ID, "bygg")
	assert.ErrorIs(t, err, service.ErrTagNotFound)

	_, err = svc.RemoveTag(ctx, uuid.New(), "VIP")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestBusinessLeadsNewestCreatedFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	older := testutil.CreateTestBusiness(t, db, "Older", nil)
	newer := testutil.CreateTestBusiness(t, db, "Newer", nil)
	require.NoError(t, db.Model(older).Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)

	// Touching the older lead bumps updated_at but must not reorder
	require.NoError(t, db.Model(older).Update("notes", "ringt").Error)

	leads, err := svc.GetLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, newer.ID, leads[0].ID)
	assert.Equal(t, older.ID, leads[1].ID)
}

func TestBusinessListDefaultOrderIsNameAscending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newBusinessService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	for _, name := range []string{"Cedertre AS", "Alpha AS", "Birk AS"} {
		testutil.CreateTestBusiness(t, db, name, nil)
	}

	result, err := svc.List(ctx, domain.BusinessListParams{PageSize: 10})
	require.NoError(t, err)

	names := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Alpha AS", "Birk AS", "Cedertre AS"}, names)
}
