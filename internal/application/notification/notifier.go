package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoticeKind classifies outbound notices
type NoticeKind string

const (
	NoticeKindLeaseExpiring   NoticeKind = "LEASE_EXPIRING"
	NoticeKindLeaseActivated  NoticeKind = "LEASE_ACTIVATED"
	NoticeKindLeaseExpired    NoticeKind = "LEASE_EXPIRED"
	NoticeKindPaymentDueSoon  NoticeKind = "PAYMENT_DUE_SOON"
	NoticeKindPaymentOverdue  NoticeKind = "PAYMENT_OVERDUE"
	NoticeKindPaymentReceived NoticeKind = "PAYMENT_RECEIVED"
	NoticeKindWelcome         NoticeKind = "WELCOME"
)

// Notice is a single outbound notification. ReferenceID points at the
// aggregate the notice is about (lease, payment or user).
type Notice struct {
	Kind        NoticeKind
	Subject     string
	Body        string
	ReferenceID uuid.UUID
	RecipientID *uuid.UUID
}

// Notifier delivers notices to their recipients. Implementations decide the
// channel (email, SMS, push); handlers only decide the content.
type Notifier interface {
	Send(ctx context.Context, notice Notice) error
}

// LogNotifier writes notices to the application log. It is the default
// delivery channel until an email provider is wired in.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notice
func (n *LogNotifier) Send(_ context.Context, notice Notice) error {
	fields := []zap.Field{
		zap.String("kind", string(notice.Kind)),
		zap.String("subject", notice.Subject),
		zap.String("reference_id", notice.ReferenceID.String()),
	}
	if notice.RecipientID != nil {
		fields = append(fields, zap.String("recipient_id", notice.RecipientID.String()))
	}
	n.logger.Info("notice sent", fields...)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
