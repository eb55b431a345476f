package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vekst-crm/crm-api/internal/domain"
)

func TestJobApplicationStatusLabels(t *testing.T) {
	labels := map[domain.JobApplicationStatus]string{
		domain.JobApplicationStatusNew:           "Ny",
		domain.JobApplicationStatusReviewing:     "Under vurdering",
		domain.JobApplicationStatusInterviewed:   "Intervjuet",
		domain.JobApplicationStatusOfferExtended: "Tilbud sendt",
		domain.JobApplicationStatusHired:         "Ansatt",
		domain.JobApplicationStatusRejected:      "Avslått",
	}
	for status, label := range labels {
		assert.Equal(t, label, status.Label())
	}

	// Unknown values fall back to the raw value
	assert.Equal(t, "bogus", domain.JobApplicationStatus("bogus").Label())
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, domain.BusinessStageQualified.IsValid())
	assert.False(t, domain.BusinessStage("won").IsValid())

	assert.True(t, domain.OfferStatusExpired.IsValid())
	assert.False(t, domain.OfferStatus("cancelled").IsValid())

	assert.True(t, domain.TicketStatusWaitingOnCustomer.IsValid())
	assert.False(t, domain.TicketStatus("paused").IsValid())

	assert.True(t, domain.ActivityTypeMeeting.IsValid())
	assert.False(t, domain.ActivityType("fax").IsValid())

	assert.True(t, domain.MailProviderMicrosoft.IsValid())
	assert.False(t, domain.MailProviderName("yahoo").IsValid())
}
