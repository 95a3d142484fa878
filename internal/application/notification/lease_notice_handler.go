package notification

import (
	"context"
	"fmt"

	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LeaseNoticeHandler turns lease lifecycle events into tenant-facing notices
type LeaseNoticeHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewLeaseNoticeHandler creates a new handler for lease lifecycle events
func NewLeaseNoticeHandler(notifier Notifier, logger *zap.Logger) *LeaseNoticeHandler {
	return &LeaseNoticeHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LeaseNoticeHandler) EventTypes() []string {
	return []string{"LeaseExpiring", "LeaseActivated", "LeaseExpired"}
}

// Handle processes a lease lifecycle event
func (h *LeaseNoticeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var notice Notice

	switch e := event.(type) {
	case *leasing.LeaseExpiringEvent:
		notice = Notice{
			Kind:        NoticeKindLeaseExpiring,
			Subject:     expirySubject(e.DaysUntilEnd),
			Body:        expiryBody(e),
			ReferenceID: e.LeaseID,
			RecipientID: e.TenantID,
		}
	case *leasing.LeaseActivatedEvent:
		notice = Notice{
			Kind:        NoticeKindLeaseActivated,
			Subject:     "Your lease is now active",
			Body:        fmt.Sprintf("Your lease has started and runs until %s.", e.EndDate.Format("January 2, 2006")),
			ReferenceID: e.LeaseID,
			RecipientID: e.TenantID,
		}
	case *leasing.LeaseExpiredEvent:
		notice = Notice{
			Kind:        NoticeKindLeaseExpired,
			Subject:     "Your lease has ended",
			Body:        fmt.Sprintf("Your lease ended on %s. Contact your property manager about next steps.", e.EndDate.Format("January 2, 2006")),
			ReferenceID: e.LeaseID,
			RecipientID: e.TenantID,
		}
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if notice.RecipientID == nil {
		// Vacant leases have nobody to notify
		h.logger.Debug("skipping notice for lease without tenant",
			zap.String("lease_id", notice.ReferenceID.String()),
			zap.String("kind", string(notice.Kind)),
		)
		return nil
	}

	if err := h.notifier.Send(ctx, notice); err != nil {
		h.logger.Error("failed to send lease notice",
			zap.String("lease_id", notice.ReferenceID.String()),
			zap.String("kind", string(notice.Kind)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func expirySubject(daysUntilEnd int) string {
	if daysUntilEnd == 0 {
		return "Your lease expires today"
	}
	return fmt.Sprintf("Your lease expires in %d days", daysUntilEnd)
}

func expiryBody(e *leasing.LeaseExpiringEvent) string {
	property := e.PropertyName
	if property == "" {
		property = "your property"
	}
	return fmt.Sprintf(
		"The lease for %s ends on %s. Contact your property manager to discuss renewal.",
		property, e.EndDate.Format("January 2, 2006"),
	)
}

var _ shared.EventHandler = (*LeaseNoticeHandler)(nil)
