package notification

import (
	"context"
	"fmt"

	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentNoticeHandler turns rent payment events into tenant-facing notices
type PaymentNoticeHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewPaymentNoticeHandler creates a new handler for rent payment events
func NewPaymentNoticeHandler(notifier Notifier, logger *zap.Logger) *PaymentNoticeHandler {
	return &PaymentNoticeHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentNoticeHandler) EventTypes() []string {
	return []string{"RentPaymentDueSoon", "RentPaymentOverdue", "RentPaymentReceived"}
}

// Handle processes a rent payment event
func (h *PaymentNoticeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var notice Notice

	switch e := event.(type) {
	case *leasing.RentPaymentDueSoonEvent:
		notice = Notice{
			Kind:    NoticeKindPaymentDueSoon,
			Subject: fmt.Sprintf("Rent of %s due on %s", e.Amount.StringFixed(2), e.DueDate.Format("January 2")),
			Body: fmt.Sprintf(
				"A rent payment of %s is due in %d days, on %s.",
				e.Amount.StringFixed(2), e.DaysUntilDue, e.DueDate.Format("January 2, 2006"),
			),
			ReferenceID: e.PaymentID,
		}
	case *leasing.RentPaymentOverdueEvent:
		notice = Notice{
			Kind:    NoticeKindPaymentOverdue,
			Subject: fmt.Sprintf("Rent payment overdue: %s", e.TotalAmount.StringFixed(2)),
			Body: fmt.Sprintf(
				"A rent payment of %s was due on %s and is now %d days overdue. Please pay as soon as possible.",
				e.TotalAmount.StringFixed(2), e.DueDate.Format("January 2, 2006"), e.DaysOverdue,
			),
			ReferenceID: e.PaymentID,
		}
	case *leasing.RentPaymentReceivedEvent:
		notice = Notice{
			Kind:    NoticeKindPaymentReceived,
			Subject: fmt.Sprintf("Payment of %s received", e.TotalAmount.StringFixed(2)),
			Body: fmt.Sprintf(
				"Your rent payment of %s has been received. Thank you.",
				e.TotalAmount.StringFixed(2),
			),
			ReferenceID: e.PaymentID,
		}
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if err := h.notifier.Send(ctx, notice); err != nil {
		h.logger.Error("failed to send payment notice",
			zap.String("payment_id", notice.ReferenceID.String()),
			zap.String("kind", string(notice.Kind)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*PaymentNoticeHandler)(nil)
