package service_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vekst-crm/crm-api/internal/domain"
	"github.com/vekst-crm/crm-api/internal/repository"
	"github.com/vekst-crm/crm-api/internal/service"
	"github.com/vekst-crm/crm-api/internal/storage"
	"github.com/vekst-crm/crm-api/internal/testutil"
	"gorm.io/gorm"
)

func newTicketService(t *testing.T, db *gorm.DB) *service.TicketService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewTicketService(
		repository.NewTicketRepository(db),
		repository.NewFileRepository(db),
		repository.NewBusinessRepository(db),
		store,
		testutil.NewTestLogger(),
	)
}

func TestTicketCreateUnknownBusiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTicketService(t, db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	missing := uuid.New()
	_, err := svc.Create(ctx, &domain.CreateTicketRequest{Subject: "Ukjent kunde", BusinessID: &missing})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTicketCreateDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTicketService(t, db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	ticket, err := svc.Create(ctx, &domain.CreateTicketRequest{Subject: "Feil i faktura"})
	require.NoError(t, err)
	assert.Equal(t, "unassigned", ticket.Status)
	assert.Equal(t, "medium", ticket.Priority)

	assignee := uuid.New()
	assigned, err := svc.Create(ctx, &domain.CreateTicketRequest{
		Subject:    "Tilgang mangler",
		Priority:   "urgent",
		AssigneeID: &assignee,
	})
	require.NoError(t, err)
	assert.Equal(t, "open", assigned.Status)
	assert.Equal(t, "urgent", assigned.Priority)
}

func TestTicketResolveStampsTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTicketService(t, db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	ticket, err := svc.Create(ctx, &domain.CreateTicketRequest{Subject: "Treg innlogging"})
	require.NoError(t, err)
	assert.Nil(t, ticket.ResolvedAt)

	resolved := "resolved"
	updated, err := svc.Update(ctx, ticket.ID, &domain.UpdateTicketRequest{Status: &resolved})
	require.NoError(t, err)
	assert.Equal(t, "resolved", updated.Status)
	require.NotNil(t, updated.ResolvedAt)

	bogus := "bogus"
	_, err = svc.Update(ctx, ticket.ID, &domain.UpdateTicketRequest{Status: &bogus})
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestTicketAssignmentOpensTicket(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTicketService(t, db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	ticket, err := svc.Create(ctx, &domain.CreateTicketRequest{Subject: "Uten eier"})
	require.NoError(t, err)

	assignee := uuid.New()
	updated, err := svc.Update(ctx, ticket.ID, &domain.UpdateTicketRequest{AssigneeID: &assignee})
	require.NoError(t, err)
	assert.Equal(t, "open", updated.Status)
}

func TestTicketComments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTicketService(t, db)
	userID := uuid.New()
	ctx := testutil.ContextUnscoped(userID, "Kari Nordmann")

	ticket, err := svc.Create(ctx, &domain.CreateTicketRequest{Subject: "Spørsmål om avtale"})
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, ticket.ID, &domain.CreateTicketCommentRequest{Body: "Tar kontakt i morgen"})
	require.NoError(t, err)
	assert.Equal(t, userID, comment.AuthorID)
	assert.Equal(t, "Kari Nordmann", comment.AuthorName)

	_, comments, err := svc.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Tar kontakt i morgen", comments[0].Body)
}

func TestTicketCommentRequiresUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTicketService(t, db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	ticket, err := svc.Create(ctx, &domain.CreateTicketRequest{Subject: "Anonym"})
	require.NoError(t, err)

	_, err = svc.AddComment(context.Background(), ticket.ID, &domain.CreateTicketCommentRequest{Body: "x"})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestTicketAttachments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTicketService(t, db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	ticket, err := svc.Create(ctx, &domain.CreateTicketRequest{Subject: "Se vedlegg"})
	require.NoError(t, err)

	file, err := svc.AttachFile(ctx, ticket.ID, "skjermbilde.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("png-bytes")), file.Size)

	got, reader, err := svc.DownloadFile(ctx, ticket.ID, file.ID)
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
	assert.Equal(t, "skjermbilde.png", got.Filename)

	// A file cannot be fetched through another ticket
	other, err := svc.Create(ctx, &domain.CreateTicketRequest{Subject: "Annen sak"})
	require.NoError(t, err)
	_, _, err = svc.DownloadFile(ctx, other.ID, file.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTicketListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTicketService(t, db)
	ctx := testutil.ContextUnscoped(uuid.New(), "Kari")

	assignee := uuid.New()
	_, err := svc.Create(ctx, &domain.CreateTicketRequest{Subject: "A", AssigneeID: &assignee})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.CreateTicketRequest{Subject: "B"})
	require.NoError(t, err)

	result, err := svc.List(ctx, domain.TicketListParams{AssigneeID: &assignee})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "A", result.Items[0].Subject)

	result, err = svc.List(ctx, domain.TicketListParams{Status: "unassigned"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "B", result.Items[0].Subject)
}
