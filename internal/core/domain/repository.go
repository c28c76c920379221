package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrGoalConflict = errors.New("goal version conflict")
)

type GoalRepository interface {
	// Create persists a new goal. The goal's Version is set to 1.
	Create(ctx context.Context, goal *Goal) error

	// GetByID retrieves an active (non-deleted) goal by its unique identifier.
	GetByID(ctx context.Context, id string) (*Goal, error)

	// ListByUserID retrieves all active goals of a user, oldest anchor first.
	ListByUserID(ctx context.Context, userID string) ([]*Goal, error)

	// Update modifies an existing goal.
	// Implementations must check goal.Version and bump it on success.
	Update(ctx context.Context, goal *Goal) error

	// Delete soft-deletes a goal, leaving a tombstone for sync clients.
	Delete(ctx context.Context, id string) error

	// GetChanges [SYNC] Returns goals (tombstones included) changed after since.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Goal, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}
