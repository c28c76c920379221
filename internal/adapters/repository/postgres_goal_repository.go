package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.GoalRepository = (*PostgresGoalRepository)(nil)

const goalColumns = `id, user_id, title, description, frequency, version, created_at, updated_at, deleted_at`

type PostgresGoalRepository struct {
	db *sqlx.DB
}

func NewPostgresGoalRepository(db *sqlx.DB) *PostgresGoalRepository {
	return &PostgresGoalRepository{db: db}
}

func (r *PostgresGoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	query := `
        INSERT INTO goals (id, user_id, title, description, frequency, version, created_at, updated_at)
        VALUES (:id, :user_id, :title, :description, :frequency, 1, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: goal %s already exists", domain.ErrGoalConflict, g.ID)
		}
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	g.Version = 1
	return nil
}

func (r *PostgresGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND deleted_at IS NULL`

	var g domain.Goal
	if err := r.db.GetContext(ctx, &g, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return &g, nil
}

func (r *PostgresGoalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	query := `
        SELECT ` + goalColumns + ` FROM goals
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at ASC`

	goals := []*domain.Goal{}
	if err := r.db.SelectContext(ctx, &goals, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return goals, nil
}

func (r *PostgresGoalRepository) Update(ctx context.Context, g *domain.Goal) error {
	query := `
        UPDATE goals SET
            title = $1, description = $2,
            updated_at = NOW(), version = version + 1
        WHERE id = $3 AND version = $4 AND deleted_at IS NULL
        RETURNING version, updated_at`

	var newVersion int
	var newUpdatedAt time.Time

	err := r.db.QueryRowxContext(ctx, query, g.Title, g.Description, g.ID, g.Version).
		Scan(&newVersion, &newUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var count int
			existsQuery := `SELECT count(*) FROM goals WHERE id = $1 AND deleted_at IS NULL`
			if checkErr := r.db.GetContext(ctx, &count, existsQuery, g.ID); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}

			if count == 0 {
				return domain.ErrGoalNotFound
			}
			return domain.ErrGoalConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	g.Version = newVersion
	g.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresGoalRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE goals
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGoalNotFound
	}

	return nil
}

// GetChanges returns every goal touched after since, tombstones included.
func (r *PostgresGoalRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Goal, error) {
	query := `
        SELECT ` + goalColumns + ` FROM goals
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	goals := []*domain.Goal{}
	if err := r.db.SelectContext(ctx, &goals, query, userID, since); err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}

	return goals, nil
}
