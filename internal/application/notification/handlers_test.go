package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubNotifier struct {
	sent []Notice
	fail error
}

func (n *stubNotifier) Send(_ context.Context, notice Notice) error {
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, notice)
	return nil
}

func testLease(t *testing.T, tenantID *uuid.UUID) *leasing.Lease {
	t.Helper()
	lease, err := leasing.NewLease(leasing.NewLeaseInput{
		PropertyID:  uuid.New(),
		TenantID:    tenantID,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		MonthlyRent: decimal.NewFromInt(1800),
	})
	require.NoError(t, err)
	return lease
}

func testPayment(t *testing.T) *leasing.RentPayment {
	t.Helper()
	payment, err := leasing.NewRentPayment(leasing.NewRentPaymentInput{
		LeaseID:       uuid.New(),
		Amount:        decimal.NewFromInt(1800),
		PaymentDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
		PaymentMethod: leasing.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)
	return payment
}

func TestLeaseNoticeHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("expiring lease notifies the tenant", func(t *testing.T) {
		notifier := &stubNotifier{}
		handler := NewLeaseNoticeHandler(notifier, zap.NewNop())

		tenantID := uuid.New()
		lease := testLease(t, &tenantID)
		event := leasing.NewLeaseExpiringEvent(lease, 30, "Dana Smith", "Oak Street 12")

		require.NoError(t, handler.Handle(ctx, event))
		require.Len(t, notifier.sent, 1)

		notice := notifier.sent[0]
		assert.Equal(t, NoticeKindLeaseExpiring, notice.Kind)
		assert.Equal(t, "Your lease expires in 30 days", notice.Subject)
		assert.Contains(t, notice.Body, "Oak Street 12")
		assert.Equal(t, lease.ID, notice.ReferenceID)
		assert.Equal(t, &tenantID, notice.RecipientID)
	})

	t.Run("expiry on the end date itself", func(t *testing.T) {
		notifier := &stubNotifier{}
		handler := NewLeaseNoticeHandler(notifier, zap.NewNop())

		tenantID := uuid.New()
		lease := testLease(t, &tenantID)
		event := leasing.NewLeaseExpiringEvent(lease, 0, "", "")

		require.NoError(t, handler.Handle(ctx, event))
		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "Your lease expires today", notifier.sent[0].Subject)
		assert.Contains(t, notifier.sent[0].Body, "your property")
	})

	t.Run("vacant lease sends nothing", func(t *testing.T) {
		notifier := &stubNotifier{}
		handler := NewLeaseNoticeHandler(notifier, zap.NewNop())

		lease := testLease(t, nil)
		event := leasing.NewLeaseExpiringEvent(lease, 7, "", "")

		require.NoError(t, handler.Handle(ctx, event))
		assert.Empty(t, notifier.sent)
	})

	t.Run("activation and expiry notices", func(t *testing.T) {
		notifier := &stubNotifier{}
		handler := NewLeaseNoticeHandler(notifier, zap.NewNop())

		tenantID := uuid.New()
		lease := testLease(t, &tenantID)

		require.NoError(t, handler.Handle(ctx, leasing.NewLeaseActivatedEvent(lease)))
		require.NoError(t, handler.Handle(ctx, leasing.NewLeaseExpiredEvent(lease)))

		require.Len(t, notifier.sent, 2)
		assert.Equal(t, NoticeKindLeaseActivated, notifier.sent[0].Kind)
		assert.Equal(t, NoticeKindLeaseExpired, notifier.sent[1].Kind)
		assert.Contains(t, notifier.sent[0].Body, "December 31, 2026")
	})

	t.Run("delivery failure surfaces and is logged", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		notifier := &stubNotifier{fail: errors.New("smtp unavailable")}
		handler := NewLeaseNoticeHandler(notifier, zap.New(core))

		tenantID := uuid.New()
		lease := testLease(t, &tenantID)

		err := handler.Handle(ctx, leasing.NewLeaseActivatedEvent(lease))
		require.Error(t, err)
		assert.Equal(t, 1, logs.FilterMessage("failed to send lease notice").Len())
	})

	t.Run("foreign event type is rejected", func(t *testing.T) {
		notifier := &stubNotifier{}
		handler := NewLeaseNoticeHandler(notifier, zap.NewNop())

		payment := testPayment(t)
		err := handler.Handle(ctx, leasing.NewRentPaymentDueSoonEvent(payment, 3))
		assert.Error(t, err)
		assert.Empty(t, notifier.sent)
	})
}

func TestPaymentNoticeHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("due soon reminder", func(t *testing.T) {
		notifier := &stubNotifier{}
		handler := NewPaymentNoticeHandler(notifier, zap.NewNop())

		payment := testPayment(t)
		require.NoError(t, handler.Handle(ctx, leasing.NewRentPaymentDueSoonEvent(payment, 3)))

		require.Len(t, notifier.sent, 1)
		notice := notifier.sent[0]
		assert.Equal(t, NoticeKindPaymentDueSoon, notice.Kind)
		assert.Equal(t, "Rent of 1800.00 due on June 5", notice.Subject)
		assert.Contains(t, notice.Body, "due in 3 days")
		assert.Equal(t, payment.ID, notice.ReferenceID)
	})

	t.Run("overdue nag includes the late fee", func(t *testing.T) {
		notifier := &stubNotifier{}
		handler := NewPaymentNoticeHandler(notifier, zap.NewNop())

		payment := testPayment(t)
		payment.LateFee = decimal.NewFromInt(50)

		require.NoError(t, handler.Handle(ctx, leasing.NewRentPaymentOverdueEvent(payment, 10)))

		require.Len(t, notifier.sent, 1)
		notice := notifier.sent[0]
		assert.Equal(t, NoticeKindPaymentOverdue, notice.Kind)
		assert.Contains(t, notice.Subject, "1850.00")
		assert.Contains(t, notice.Body, "10 days overdue")
	})

	t.Run("delivery failure surfaces", func(t *testing.T) {
		notifier := &stubNotifier{fail: errors.New("smtp unavailable")}
		handler := NewPaymentNoticeHandler(notifier, zap.NewNop())

		payment := testPayment(t)
		err := handler.Handle(ctx, leasing.NewRentPaymentOverdueEvent(payment, 1))
		assert.Error(t, err)
	})
}

func TestWelcomeHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("registered user gets a welcome notice", func(t *testing.T) {
		notifier := &stubNotifier{}
		handler := NewWelcomeHandler(notifier, zap.NewNop())

		user, err := identity.NewUser("dana@example.com", "password1", identity.UserRoleOwner)
		require.NoError(t, err)
		events := user.GetDomainEvents()
		require.Len(t, events, 1)

		require.NoError(t, handler.Handle(ctx, events[0]))
		require.Len(t, notifier.sent, 1)

		notice := notifier.sent[0]
		assert.Equal(t, NoticeKindWelcome, notice.Kind)
		assert.Contains(t, notice.Body, "dana@example.com")
		assert.Equal(t, user.ID, notice.ReferenceID)
	})

	t.Run("foreign event type is rejected", func(t *testing.T) {
		notifier := &stubNotifier{}
		handler := NewWelcomeHandler(notifier, zap.NewNop())

		payment := testPayment(t)
		err := handler.Handle(ctx, leasing.NewRentPaymentDueSoonEvent(payment, 3))
		assert.Error(t, err)
	})
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	notifier := NewLogNotifier(zap.New(core))

	recipient := uuid.New()
	err := notifier.Send(context.Background(), Notice{
		Kind:        NoticeKindWelcome,
		Subject:     "Welcome to Rentfolio",
		ReferenceID: recipient,
		RecipientID: &recipient,
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("notice sent").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "WELCOME", entries[0].ContextMap()["kind"])
}
