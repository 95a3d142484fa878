package portfolio

import (
	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
)

// PropertyRegisteredEvent is raised when a property is registered
type PropertyRegisteredEvent struct {
	shared.BaseDomainEvent
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	TotalUnits int       `json:"total_units"`
}

// EventType returns the event type name
func (e *PropertyRegisteredEvent) EventType() string {
	return "PropertyRegistered"
}

// NewPropertyRegisteredEvent creates a new PropertyRegisteredEvent
func NewPropertyRegisteredEvent(p *Property) *PropertyRegisteredEvent {
	return &PropertyRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PropertyRegistered", "Property", p.ID),
		PropertyID:      p.ID,
		OwnerID:         p.OwnerID,
		Name:            p.Name,
		City:            p.City,
		TotalUnits:      p.TotalUnits,
	}
}
