package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) (*shared.Paginated[identity.User], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[identity.User]), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveWithLock(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingPublisher captures published events for assertions
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) typesPublished() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}
