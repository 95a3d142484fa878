package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/portfolio"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PropertyService provides application-level property operations
type PropertyService struct {
	propertyRepo   portfolio.PropertyRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(
	propertyRepo portfolio.PropertyRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PropertyService {
	return &PropertyService{
		propertyRepo:   propertyRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreatePropertyRequest carries the fields for registering a property
type CreatePropertyRequest struct {
	Name         string          `json:"name" binding:"required"`
	AddressLine1 string          `json:"address_line1" binding:"required"`
	AddressLine2 string          `json:"address_line2"`
	City         string          `json:"city" binding:"required"`
	State        string          `json:"state"`
	PostalCode   string          `json:"postal_code"`
	PropertyType string          `json:"property_type" binding:"required"`
	TotalUnits   int             `json:"total_units" binding:"required"`
	AskingRent   decimal.Decimal `json:"asking_rent"`
	Description  string          `json:"description"`
}

// UpdatePropertyRequest carries the mutable property fields plus the version
// the caller read
type UpdatePropertyRequest struct {
	Version     int              `json:"version" binding:"required"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	AskingRent  *decimal.Decimal `json:"asking_rent"`
	TotalUnits  *int             `json:"total_units"`
}

// PropertyListFilter defines filtering options for property list queries
type PropertyListFilter struct {
	City         string `form:"city"`
	PropertyType string `form:"property_type"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

// PropertyResponse represents a property in API responses
type PropertyResponse struct {
	ID           uuid.UUID       `json:"id"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Name         string          `json:"name"`
	AddressLine1 string          `json:"address_line1"`
	AddressLine2 string          `json:"address_line2,omitempty"`
	City         string          `json:"city"`
	State        string          `json:"state,omitempty"`
	PostalCode   string          `json:"postal_code,omitempty"`
	PropertyType string          `json:"property_type"`
	TotalUnits   int             `json:"total_units"`
	AskingRent   decimal.Decimal `json:"asking_rent"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

func toPropertyResponse(p *portfolio.Property) *PropertyResponse {
	return &PropertyResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		AddressLine1: p.AddressLine1,
		AddressLine2: p.AddressLine2,
		City:         p.City,
		State:        p.State,
		PostalCode:   p.PostalCode,
		PropertyType: p.PropertyType.String(),
		TotalUnits:   p.TotalUnits,
		AskingRent:   p.AskingRent,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

func (s *PropertyService) publishEvents(ctx context.Context, property *portfolio.Property) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range property.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish property event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	property.ClearDomainEvents()
}

// CreateProperty registers a property owned by the actor. Admins and owners
// may register; tenants may not.
func (s *PropertyService) CreateProperty(ctx context.Context, actor *identity.User, req CreatePropertyRequest) (*PropertyResponse, error) {
	if actor.Role == identity.UserRoleTenant {
		return nil, shared.NewDomainError("FORBIDDEN", "Tenants cannot register properties")
	}

	exists, err := s.propertyRepo.ExistsForOwnerAddress(ctx, actor.ID, req.AddressLine1, req.City)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A property at this address is already registered")
	}

	property, err := portfolio.NewProperty(portfolio.NewPropertyInput{
		OwnerID:      actor.ID,
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		PropertyType: portfolio.PropertyType(req.PropertyType),
		TotalUnits:   req.TotalUnits,
		AskingRent:   req.AskingRent,
		Description:  req.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("Property registered",
		zap.String("property_id", property.ID.String()),
		zap.String("owner_id", property.OwnerID.String()))

	s.publishEvents(ctx, property)

	return toPropertyResponse(property), nil
}

// GetProperty returns a property by ID
func (s *PropertyService) GetProperty(ctx context.Context, actor *identity.User, id uuid.UUID) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Property not found")
	}
	return toPropertyResponse(property), nil
}

// ListProperties lists properties. Owners see their own portfolio; admins
// see everything.
func (s *PropertyService) ListProperties(ctx context.Context, actor *identity.User, filter PropertyListFilter) ([]PropertyResponse, int64, error) {
	domainFilter := portfolio.PropertyFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.City != "" {
		domainFilter.City = &filter.City
	}
	if filter.PropertyType != "" {
		pt := portfolio.PropertyType(filter.PropertyType)
		if !pt.IsValid() {
			return nil, 0, shared.NewValidationError("property_type", "unknown property type")
		}
		domainFilter.PropertyType = &pt
	}
	if !actor.IsAdmin() {
		domainFilter.OwnerID = &actor.ID
	}

	page, err := s.propertyRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PropertyResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, *toPropertyResponse(&page.Items[i]))
	}
	return responses, page.Total, nil
}

// UpdateProperty updates a property with a compare-and-swap on the version
func (s *PropertyService) UpdateProperty(ctx context.Context, actor *identity.User, id uuid.UUID, req UpdatePropertyRequest) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Property not found")
	}
	if !actor.IsAdmin() && !property.IsOwnedBy(actor.ID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the owner or an admin may update this property")
	}
	if req.Version != property.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	name := property.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := property.Description
	if req.Description != nil {
		description = *req.Description
	}
	askingRent := property.AskingRent
	if req.AskingRent != nil {
		askingRent = *req.AskingRent
	}
	if err := property.UpdateDetails(name, description, askingRent); err != nil {
		return nil, err
	}
	if req.TotalUnits != nil && *req.TotalUnits != property.TotalUnits {
		if *req.TotalUnits < 1 {
			return nil, shared.NewValidationError("total_units", "total units must be at least 1")
		}
		// UpdateDetails already bumped the version once for this request
		property.TotalUnits = *req.TotalUnits
	}

	if err := s.propertyRepo.SaveWithLock(ctx, property); err != nil {
		return nil, err
	}

	return toPropertyResponse(property), nil
}

// DeleteProperty removes a property
func (s *PropertyService) DeleteProperty(ctx context.Context, actor *identity.User, id uuid.UUID) error {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if property == nil {
		return shared.NewDomainError("NOT_FOUND", "Property not found")
	}
	if !actor.IsAdmin() && !property.IsOwnedBy(actor.ID) {
		return shared.NewDomainError("FORBIDDEN", "Only the owner or an admin may delete this property")
	}

	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Property deleted",
		zap.String("property_id", id.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}
