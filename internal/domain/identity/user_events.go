package identity

import (
	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
)

// UserRegisteredEvent is raised when a user account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   UserRole  `json:"role"`
}

// EventType returns the event type name
func (e *UserRegisteredEvent) EventType() string {
	return "UserRegistered"
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(u *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("UserRegistered", "User", u.ID),
		UserID:          u.ID,
		Email:           u.Email,
		Role:            u.Role,
	}
}
