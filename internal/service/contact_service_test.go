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

func newContactService(db *gorm.DB) *service.ContactService {
	return service.NewContactService(
		repository.NewContactRepository(db),
		repository.NewBusinessRepository(db),
		testutil.NewTestLogger(),
	)
}

func TestContactPrimaryIsExclusive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	first, err := svc.Create(ctx, business.ID, &domain.CreateContactRequest{
		FirstName: "Per",
		LastName:  "Olsen",
		IsPrimary: true,
	})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)

	second, err := svc.Create(ctx, business.ID, &domain.CreateContactRequest{
		FirstName: "Nina",
		LastName:  "Berg",
		IsPrimary: true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsPrimary)

	contacts, err := svc.ListByBusiness(ctx, business.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	var primaries int
	for _, c := range contacts {
		if c.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries, "only one contact can be primary")
}

func TestContactUpdatePromotesPrimary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	first, err := svc.Create(ctx, business.ID, &domain.CreateContactRequest{FirstName: "Per", LastName: "Olsen", IsPrimary: true})
	require.NoError(t, err)
	second, err := svc.Create(ctx, business.ID, &domain.CreateContactRequest{FirstName: "Nina", LastName: "Berg"})
	require.NoError(t, err)

	makePrimary := true
	_, err = svc.Update(ctx, second.ID, &domain.UpdateContactRequest{IsPrimary: &makePrimary})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPrimary)
}

func TestContactCreateUnknownBusiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.Create(ctx, uuid.New(), &domain.CreateContactRequest{FirstName: "Per", LastName: "Olsen"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestContactWorkspaceIsolation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)

	wsA := testutil.CreateTestWorkspace(t, db, "alpha")
	wsB := testutil.CreateTestWorkspace(t, db, "beta")
	business := testutil.CreateTestBusiness(t, db, "Alpha Kunde", &wsA.ID)

	ctxA := testutil.ContextWithUser(uuid.New(), "Kari", &wsA.ID)
	contact, err := svc.Create(ctxA, business.ID, &domain.CreateContactRequest{FirstName: "Per", LastName: "Olsen"})
	require.NoError(t, err)

	ctxB := testutil.ContextWithUser(uuid.New(), "Ola", &wsB.ID)
	_, err = svc.GetByID(ctxB, contact.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.Delete(ctxB, contact.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestContactDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newContactService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	contact, err := svc.Create(ctx, business.ID, &domain.CreateContactRequest{FirstName: "Per", LastName: "Olsen"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, contact.ID))
	_, err = svc.GetByID(ctx, contact.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
