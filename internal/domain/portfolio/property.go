package portfolio

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PropertyType classifies a rental property
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "APARTMENT"
	PropertyTypeHouse      PropertyType = "HOUSE"
	PropertyTypeCondo      PropertyType = "CONDO"
	PropertyTypeTownhouse  PropertyType = "TOWNHOUSE"
	PropertyTypeCommercial PropertyType = "COMMERCIAL"
)

// IsValid checks if the property type is valid
func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeCondo,
		PropertyTypeTownhouse, PropertyTypeCommercial:
		return true
	}
	return false
}

// String returns the string representation of PropertyType
func (t PropertyType) String() string {
	return string(t)
}

// Property represents a rental property aggregate root. The owner is the
// authorization anchor: lease and payment operations check the acting user
// against OwnerID.
type Property struct {
	shared.BaseAggregateRoot
	OwnerID      uuid.UUID       `json:"owner_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_property_owner_address,priority:1"`
	Name         string          `json:"name" gorm:"type:varchar(200);not null"`
	AddressLine1 string          `json:"address_line1" gorm:"type:varchar(200);not null;uniqueIndex:idx_property_owner_address,priority:2"`
	AddressLine2 string          `json:"address_line2,omitempty" gorm:"type:varchar(200)"`
	City         string          `json:"city" gorm:"type:varchar(100);not null;uniqueIndex:idx_property_owner_address,priority:3"`
	State        string          `json:"state" gorm:"type:varchar(100)"`
	PostalCode   string          `json:"postal_code" gorm:"type:varchar(20)"`
	PropertyType PropertyType    `json:"property_type" gorm:"type:varchar(20);not null"`
	TotalUnits   int             `json:"total_units" gorm:"not null;default:1"`
	AskingRent   decimal.Decimal `json:"asking_rent" gorm:"type:decimal(10,2);not null;default:0"`
	Description  string          `json:"description,omitempty" gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Property) TableName() string {
	return "properties"
}

// NewPropertyInput carries the fields needed to register a property
type NewPropertyInput struct {
	OwnerID      uuid.UUID
	Name         string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	PropertyType PropertyType
	TotalUnits   int
	AskingRent   decimal.Decimal
	Description  string
}

// NewProperty registers a property. A property has at least one unit;
// single-family homes are one-unit properties.
func NewProperty(input NewPropertyInput) (*Property, error) {
	if input.OwnerID == uuid.Nil {
		return nil, shared.NewValidationError("owner_id", "owner is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, shared.NewValidationError("name", "name is required")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("name", "name cannot exceed 200 characters")
	}
	if strings.TrimSpace(input.AddressLine1) == "" {
		return nil, shared.NewValidationError("address_line1", "address is required")
	}
	if strings.TrimSpace(input.City) == "" {
		return nil, shared.NewValidationError("city", "city is required")
	}
	if !input.PropertyType.IsValid() {
		return nil, shared.NewValidationError("property_type", "unknown property type")
	}
	if input.TotalUnits < 1 {
		return nil, shared.NewValidationError("total_units",
			fmt.Sprintf("total units must be at least 1, got %d", input.TotalUnits))
	}
	if input.AskingRent.IsNegative() {
		return nil, shared.NewValidationError("asking_rent", "asking rent cannot be negative")
	}

	property := &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           input.OwnerID,
		Name:              name,
		AddressLine1:      strings.TrimSpace(input.AddressLine1),
		AddressLine2:      strings.TrimSpace(input.AddressLine2),
		City:              strings.TrimSpace(input.City),
		State:             strings.TrimSpace(input.State),
		PostalCode:        strings.TrimSpace(input.PostalCode),
		PropertyType:      input.PropertyType,
		TotalUnits:        input.TotalUnits,
		AskingRent:        input.AskingRent,
		Description:       input.Description,
	}

	property.AddDomainEvent(NewPropertyRegisteredEvent(property))

	return property, nil
}

// UpdateDetails updates the mutable descriptive fields
func (p *Property) UpdateDetails(name, description string, askingRent decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("name", "name is required")
	}
	if len(name) > 200 {
		return shared.NewValidationError("name", "name cannot exceed 200 characters")
	}
	if askingRent.IsNegative() {
		return shared.NewValidationError("asking_rent", "asking rent cannot be negative")
	}

	p.Name = name
	p.Description = description
	p.AskingRent = askingRent
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetTotalUnits changes the unit count
func (p *Property) SetTotalUnits(units int) error {
	if units < 1 {
		return shared.NewValidationError("total_units", "total units must be at least 1")
	}
	p.TotalUnits = units
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsOwnedBy reports whether the given user owns this property
func (p *Property) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}
