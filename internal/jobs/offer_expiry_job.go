package jobs

import (
	"context"
	"time"

	"github.com/vekst-crm/crm-api/internal/auth"
	"go.uber.org/zap"
)

// OfferExpiryJobName is the name of the offer expiry job
const OfferExpiryJobName = "offer_expiry"

// OfferExpiryService marks sent offers past their expiry date as expired.
// The interface lets the job call the service without importing the
// service package directly.
type OfferExpiryService interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

// OfferExpiryJob expires sent offers whose expiry date has passed.
type OfferExpiryJob struct {
	offerService OfferExpiryService
	logger       *zap.Logger
	timeout      time.Duration
}

// NewOfferExpiryJob creates a new offer expiry job.
// The timeout controls how long the expiry sweep is allowed to run.
func NewOfferExpiryJob(offerService OfferExpiryService, logger *zap.Logger, timeout time.Duration) *OfferExpiryJob {
	return &OfferExpiryJob{
		offerService: offerService,
		logger:       logger,
		timeout:      timeout,
	}
}

// Run executes the offer expiry sweep.
// This is called by the scheduler according to the cron expression.
func (j *OfferExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	// The sweep runs as the system actor across all workspaces
	ctx = auth.SystemContext(ctx)

	start := time.Now()
	j.logger.Info("starting offer expiry job")

	expired, err := j.offerService.ExpireOverdue(ctx)
	if err != nil {
		j.logger.Error("offer expiry job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("offer expiry job finished",
		zap.Int("expired", expired),
		zap.Duration("duration", time.Since(start)))
}
