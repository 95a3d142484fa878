package notification

import (
	"context"
	"fmt"

	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WelcomeHandler sends a welcome notice to newly registered users
type WelcomeHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewWelcomeHandler creates a new handler for user registration events
func NewWelcomeHandler(notifier Notifier, logger *zap.Logger) *WelcomeHandler {
	return &WelcomeHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *WelcomeHandler) EventTypes() []string {
	return []string{"UserRegistered"}
}

// Handle processes a user registration event
func (h *WelcomeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	registered, ok := event.(*identity.UserRegisteredEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	userID := registered.UserID
	notice := Notice{
		Kind:        NoticeKindWelcome,
		Subject:     "Welcome to Rentfolio",
		Body:        fmt.Sprintf("Your account %s has been created. You can sign in right away.", registered.Email),
		ReferenceID: userID,
		RecipientID: &userID,
	}

	if err := h.notifier.Send(ctx, notice); err != nil {
		h.logger.Error("failed to send welcome notice",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*WelcomeHandler)(nil)
