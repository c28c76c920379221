package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

// MockGoalRepo is a map-backed GoalRepository that mimics version checks
// and soft deletes.
type MockGoalRepo struct {
	mu            sync.Mutex
	store         map[string]*domain.Goal
	simulateError error
}

func NewMockGoalRepo() *MockGoalRepo {
	return &MockGoalRepo{
		store: make(map[string]*domain.Goal),
	}
}

func (m *MockGoalRepo) Create(ctx context.Context, goal *domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.simulateError != nil {
		return m.simulateError
	}
	if _, exists := m.store[goal.ID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}

	goal.Version = 1
	clone := *goal
	m.store[goal.ID] = &clone
	return nil
}

func (m *MockGoalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.simulateError != nil {
		return nil, m.simulateError
	}
	g, ok := m.store[id]
	if !ok || g.DeletedAt != nil {
		return nil, domain.ErrGoalNotFound
	}
	clone := *g
	return &clone, nil
}

func (m *MockGoalRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.Goal
	for _, g := range m.store {
		if g.UserID == userID && g.DeletedAt == nil {
			clone := *g
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (m *MockGoalRepo) Update(ctx context.Context, goal *domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.simulateError != nil {
		return m.simulateError
	}
	existing, ok := m.store[goal.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrGoalNotFound
	}
	if existing.Version != goal.Version {
		return domain.ErrGoalConflict
	}

	goal.Version++
	clone := *goal
	m.store[goal.ID] = &clone
	return nil
}

func (m *MockGoalRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.simulateError != nil {
		return m.simulateError
	}
	g, ok := m.store[id]
	if !ok || g.DeletedAt != nil {
		return domain.ErrGoalNotFound
	}
	now := time.Now().UTC()
	g.DeletedAt = &now
	g.UpdatedAt = now
	g.Version++
	return nil
}

func (m *MockGoalRepo) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var changes []*domain.Goal
	for _, g := range m.store {
		if g.UserID == userID && g.UpdatedAt.After(since) {
			clone := *g
			changes = append(changes, &clone)
		}
	}
	return changes, nil
}

// seed stores a goal as-is, bypassing Create, so tests control the anchor.
func (m *MockGoalRepo) seed(goals ...*domain.Goal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, g := range goals {
		if g.Version == 0 {
			g.Version = 1
		}
		clone := *g
		m.store[g.ID] = &clone
	}
}
