package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vekst-crm/crm-api/internal/config"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/repository"
	"github.com/vekst-crm/crm-api/internal/service"
	"github.com/vekst-crm/crm-api/internal/sms"
	"github.com/vekst-crm/crm-api/internal/testutil"
	"gorm.io/gorm"
)

type gatewayCall struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

// fakeGateway records sends and answers like the SMS gateway. Set
// failNext to make the next call return a 500.
type fakeGateway struct {
	server   *httptest.Server
	calls    []gatewayCall
	failNext bool
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	gw := &fakeGateway{}
	gw.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var call gatewayCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gw.calls = append(gw.calls, call)
		if gw.failNext {
			gw.failNext = false
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"carrier unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"messageId":"gw-42","status":"queued"}`))
	}))
	t.Cleanup(gw.server.Close)
	return gw
}

func newSmsService(db *gorm.DB, gw *fakeGateway, enabled bool) *service.SmsService {
	client := sms.NewClient(&config.SmsConfig{
		BaseURL:              gw.server.URL,
		APIKey:               "test-key",
		Sender:               "Vekst",
		RequestTimeoutSecond: 5,
	})
	return service.NewSmsService(
		repository.NewSmsRepository(db),
		repository.NewBusinessRepository(db),
		repository.NewContactRepository(db),
		client,
		enabled,
		testutil.NewTestLogger(),
	)
}

func TestSmsSendExplicitRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := newFakeGateway(t)
	svc := newSmsService(db, gw, true)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	msg, err := svc.Send(ctx, &domain.SendSmsRequest{
		BusinessID: business.ID,
		Recipient:  "+4798765432",
		Content:    "Tilbudet er klart",
	})
	require.NoError(t, err)
	assert.Equal(t, "sent", msg.Status)
	assert.Equal(t, "+4798765432", msg.Recipient)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, "+4798765432", gw.calls[0].To)
	assert.Equal(t, "Vekst", gw.calls[0].From)

	var stored domain.SmsMessage
	require.NoError(t, db.First(&stored, "id = ?", msg.ID).Error)
	assert.Equal(t, "gw-42", stored.GatewayMessageID)
}

func TestSmsRecipientFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := newFakeGateway(t)
	svc := newSmsService(db, gw, true)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	require.NoError(t, db.Create(&domain.Contact{
		BusinessID: business.ID,
		FirstName:  "Per",
		LastName:   "Olsen",
		Phone:      "+4711122333",
		IsPrimary:  true,
	}).Error)

	msg, err := svc.Send(ctx, &domain.SendSmsRequest{BusinessID: business.ID, Content: "Hei"})
	require.NoError(t, err)
	assert.Equal(t, "+4711122333", msg.Recipient, "primary contact phone wins")

	// Without a primary contact the business number is used
	require.NoError(t, db.Model(&domain.Contact{}).Where("business_id = ?", business.ID).Update("is_primary", false).Error)
	msg, err = svc.Send(ctx, &domain.SendSmsRequest{BusinessID: business.ID, Content: "Hei igjen"})
	require.NoError(t, err)
	assert.Equal(t, business.Phone, msg.Recipient)
}

func TestSmsNoRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := newFakeGateway(t)
	svc := newSmsService(db, gw, true)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	business := testutil.CreateTestBusiness(t, db, "Uten nummer", nil)
	require.NoError(t, db.Model(business).Update("phone", "").Error)

	_, err := svc.Send(ctx, &domain.SendSmsRequest{BusinessID: business.ID, Content: "Hei"})
	assert.ErrorIs(t, err, service.ErrNoRecipient)
	assert.Empty(t, gw.calls)
}

func TestSmsDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := newFakeGateway(t)
	svc := newSmsService(db, gw, false)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.Send(ctx, &domain.SendSmsRequest{BusinessID: business.ID, Recipient: "+4798765432", Content: "Hei"})
	assert.ErrorIs(t, err, service.ErrSmsDisabled)
}

func TestSmsRequiresUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := newFakeGateway(t)
	svc := newSmsService(db, gw, true)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)

	_, err := svc.Send(context.Background(), &domain.SendSmsRequest{BusinessID: business.ID, Recipient: "+4798765432", Content: "Hei"})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestSmsGatewayFailureIsRecorded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := newFakeGateway(t)
	gw.failNext = true
	svc := newSmsService(db, gw, true)
	business := testutil.CreateTestBusiness(t, db, "Kunde AS", nil)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	_, err := svc.Send(ctx, &domain.SendSmsRequest{BusinessID: business.ID, Recipient: "+4798765432", Content: "Hei"})
	require.Error(t, err)

	var stored domain.SmsMessage
	require.NoError(t, db.First(&stored, "business_id = ?", business.ID).Error)
	assert.Equal(t, domain.SmsStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorDetail, "carrier unavailable")

	history, err := svc.ListByBusiness(ctx, business.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "failed", history[0].Status)
}
