package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

var (
	_ domain.GoalRepository = (*InMemoryGoalRepository)(nil)
	_ domain.UserRepository = (*InMemoryUserRepository)(nil)
)

// InMemoryGoalRepository keeps goals in process memory. It stores copies so
// callers can never mutate state without going through Update.
type InMemoryGoalRepository struct {
	store map[string]*domain.Goal
	now   func() time.Time

	mu sync.RWMutex
}

func NewInMemoryGoalRepository() *InMemoryGoalRepository {
	return &InMemoryGoalRepository{
		store: make(map[string]*domain.Goal),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func cloneGoal(g *domain.Goal) *domain.Goal {
	c := *g
	if g.DeletedAt != nil {
		d := *g.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}

func (r *InMemoryGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[goal.ID]; exists {
		return domain.ErrGoalConflict
	}

	goal.Version = 1
	r.store[goal.ID] = cloneGoal(goal)
	return nil
}

func (r *InMemoryGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goal, ok := r.store[id]
	if !ok || goal.IsDeleted() {
		return nil, domain.ErrGoalNotFound
	}
	return cloneGoal(goal), nil
}

func (r *InMemoryGoalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goals := []*domain.Goal{}
	for _, g := range r.store {
		if g.UserID == userID && !g.IsDeleted() {
			goals = append(goals, cloneGoal(g))
		}
	}

	sort.Slice(goals, func(i, j int) bool {
		return goals[i].CreatedAt.Before(goals[j].CreatedAt)
	})

	return goals, nil
}

func (r *InMemoryGoalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[goal.ID]
	if !ok || existing.IsDeleted() {
		return domain.ErrGoalNotFound
	}
	if existing.Version != goal.Version {
		return domain.ErrGoalConflict
	}

	existing.Title = goal.Title
	existing.Description = goal.Description
	existing.Version++
	existing.UpdatedAt = r.now()

	goal.Version = existing.Version
	goal.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *InMemoryGoalRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[id]
	if !ok || existing.IsDeleted() {
		return domain.ErrGoalNotFound
	}

	now := r.now()
	existing.DeletedAt = &now
	existing.UpdatedAt = now
	existing.Version++
	return nil
}

func (r *InMemoryGoalRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goals := []*domain.Goal{}
	for _, g := range r.store {
		if g.UserID == userID && g.UpdatedAt.After(since) {
			goals = append(goals, cloneGoal(g))
		}
	}

	sort.Slice(goals, func(i, j int) bool {
		return goals[i].UpdatedAt.Before(goals[j].UpdatedAt)
	})

	return goals, nil
}

type InMemoryUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return domain.ErrEmailAlreadyExists
	}

	u := *user
	r.byID[user.ID] = &u
	r.byEmail[email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return domain.ErrUserNotFound
	}

	u := *user
	r.byID[user.ID] = &u
	return nil
}
