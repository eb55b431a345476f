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

func newOfferService(db *gorm.DB) *service.OfferService {
	return service.NewOfferService(
		repository.NewOfferRepository(db),
		repository.NewBusinessRepository(db),
		repository.NewActivityRepository(db),
		testutil.NewTestLogger(),
	)
}

func createOffer(t *testing.T, svc *service.OfferService, businessID uuid.UUID) *domain.OfferResponse {
	t.Helper()
	created, err := svc.Create(testutil.ContextUnscoped(uuid.New(), "Kari"), &domain.CreateOfferRequest{
		BusinessID: businessID,
		Title:      "Vedlikeholdsavtale",
		Items: []domain.OfferItemRequest{
			{Description: "Timer", Quantity: 10, UnitPrice: 1500},
			{Description: "Lisens", Quantity: 2, UnitPrice: 500},
		},
	})
	require.NoError(t, err)
	return created
}

func TestOfferCreateComputesTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newOfferService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)

	offer := createOffer(t, svc, business.ID)

	assert.Equal(t, "draft", offer.Status)
	assert.Equal(t, "NOK", offer.Currency)
	assert.Equal(t, 16000.0, offer.Total)
	require.Len(t, offer.Items, 2)
	assert.Equal(t, 15000.0, offer.Items[0].LineTotal)
	assert.Equal(t, 1000.0, offer.Items[1].LineTotal)
}

func TestOfferCreateUnknownBusiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newOfferService(db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.Create(ctx, &domain.CreateOfferRequest{
		BusinessID: uuid.New(),
		Title:      "X",
		Items:      []domain.OfferItemRequest{{Description: "Timer", Quantity: 1, UnitPrice: 1}},
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestOfferUpdateReplacesItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newOfferService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	offer := createOffer(t, svc, business.ID)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	items := []domain.OfferItemRequest{{Description: "Fastpris", Quantity: 1, UnitPrice: 25000}}
	updated, err := svc.Update(ctx, offer.ID, &domain.UpdateOfferRequest{Items: &items})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 25000.0, updated.Total)

	var count int64
	require.NoError(t, db.Model(&domain.OfferItem{}).Where("offer_id = ?", offer.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "old line items must be removed")
}

func TestOfferUpdateOnlyWhenDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newOfferService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	offer := createOffer(t, svc, business.ID)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.UpdateStatus(ctx, offer.ID, domain.OfferStatusSent)
	require.NoError(t, err)

	title := "Revidert"
	_, err = svc.Update(ctx, offer.ID, &domain.UpdateOfferRequest{Title: &title})
	assert.ErrorIs(t, err, service.ErrOfferNotEditable)
}

func TestOfferStatusTransitions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newOfferService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	// draft cannot jump straight to accepted
	offer := createOffer(t, svc, business.ID)
	_, err := svc.UpdateStatus(ctx, offer.ID, domain.OfferStatusAccepted)
	assert.ErrorIs(t, err, service.ErrConflict)

	sent, err := svc.UpdateStatus(ctx, offer.ID, domain.OfferStatusSent)
	require.NoError(t, err)
	assert.Equal(t, "sent", sent.Status)
	require.NotNil(t, sent.SentAt)

	accepted, err := svc.UpdateStatus(ctx, offer.ID, domain.OfferStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)

	_, err = svc.UpdateStatus(ctx, offer.ID, domain.OfferStatusRejected)
	assert.ErrorIs(t, err, service.ErrConflict, "accepted is terminal")

	_, err = svc.UpdateStatus(ctx, offer.ID, "bogus")
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestOfferExpireOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newOfferService(db)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	overdue := createOffer(t, svc, business.ID)
	current := createOffer(t, svc, business.ID)
	stillDraft := createOffer(t, svc, business.ID)

	for _, id := range []uuid.UUID{overdue.ID, current.ID} {
		_, err := svc.UpdateStatus(ctx, id, domain.OfferStatusSent)
		require.NoError(t, err)
	}

	past := time.Now().UTC().Add(-24 * time.Hour)
	future := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, db.Model(&domain.Offer{}).Where("id = ?", overdue.ID).Update("expires_at", past).Error)
	require.NoError(t, db.Model(&domain.Offer{}).Where("id = ?", current.ID).Update("expires_at", future).Error)
	require.NoError(t, db.Model(&domain.Offer{}).Where("id = ?", stillDraft.ID).Update("expires_at", past).Error)

	count, err := svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := svc.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Status)

	got, err = svc.GetByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, "sent", got.Status)

	got, err = svc.GetByID(ctx, stillDraft.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)
}
