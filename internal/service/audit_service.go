package service

import (
	"context"
	"time"

	"github.com/fanbacker/internal/logging"
	"github.com/fanbacker/internal/retry"
	"github.com/fanbacker/internal/storage"
)

// AuditService ships audit events to the analytics store after the owning
// Postgres transaction has committed. Delivery is best-effort with backoff;
// a lost audit event never fails or unwinds a money operation.
type AuditService struct {
	repo   *storage.AuditRepository
	logger *logging.Logger
}

// NewAuditService creates a new audit service. repo may be nil when the
// analytics store is not configured; Record becomes a no-op.
func NewAuditService(repo *storage.AuditRepository, logger *logging.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record writes the event asynchronously. The write is detached from the
// caller's context so request cancellation does not drop the event.
func (s *AuditService) Record(event *storage.AuditEvent) {
	if s == nil || s.repo == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		err := retry.WithRetry(ctx, func(ctx context.Context, attempt int) error {
			return s.repo.Insert(ctx, event)
		})
		if err != nil {
			s.logger.WithFields(map[string]interface{}{
				"eventType":  event.EventType,
				"campaignId": event.CampaignID,
				"error":      err.Error(),
			}).Warn("Dropping audit event after retries")
		}
	}()
}
