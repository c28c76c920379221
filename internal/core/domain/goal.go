package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-goals/internal/core/recurrence"
)

var (
	ErrGoalTitleEmpty     = errors.New("goal title cannot be empty")
	ErrGoalTitleTooLong   = errors.New("goal title is too long (max 100 chars)")
	ErrGoalDescTooLong    = errors.New("goal description is too long (max 500 chars)")
	ErrGoalInvalidUserID  = errors.New("invalid user id")
	ErrGoalDeleted        = errors.New("cannot update a deleted goal")
	ErrFrequencyImmutable = errors.New("goal frequency cannot be changed after creation")
	ErrInvalidFrequency   = recurrence.ErrInvalidFrequency
)

const (
	MaxTitleLen = 100
	MaxDescLen  = 500
)

type Goal struct {
	ID          string               `json:"id" db:"id"`
	UserID      string               `json:"user_id" db:"user_id"`
	Title       string               `json:"title" db:"title"`
	Description string               `json:"description,omitempty" db:"description"`
	Frequency   recurrence.Frequency `json:"frequency" db:"frequency" swaggertype:"string" enums:"daily,weekly,monthly"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// GoalSchedule is the due status of a goal on one calendar day.
type GoalSchedule struct {
	GoalID    string               `json:"goal_id"`
	Frequency recurrence.Frequency `json:"frequency" swaggertype:"string" enums:"daily,weekly,monthly"`
	Anchor    string               `json:"anchor"`
	Date      string               `json:"date"`
	IsLive    bool                 `json:"is_live"`
	NextDue   string               `json:"next_due"`
}

func validateGoal(title, desc string, freq recurrence.Frequency) (string, string, error) {
	cleanTitle := strings.TrimSpace(title)
	if cleanTitle == "" {
		return "", "", ErrGoalTitleEmpty
	}
	if utf8.RuneCountInString(cleanTitle) > MaxTitleLen {
		return "", "", ErrGoalTitleTooLong
	}

	cleanDesc := strings.TrimSpace(desc)
	if utf8.RuneCountInString(cleanDesc) > MaxDescLen {
		return "", "", ErrGoalDescTooLong
	}

	if !freq.Valid() {
		return "", "", ErrInvalidFrequency
	}

	return cleanTitle, cleanDesc, nil
}

func NewGoal(userID, title, description string, freq recurrence.Frequency) (*Goal, error) {
	return newGoalAt(userID, title, description, freq, time.Now().UTC())
}

// RestoreGoal builds a goal whose anchor was set elsewhere, typically by a
// client that created it offline.
func RestoreGoal(userID, title, description string, freq recurrence.Frequency, createdAt time.Time) (*Goal, error) {
	if createdAt.IsZero() {
		return nil, ErrInvalidAnchor
	}
	g, err := newGoalAt(userID, title, description, freq, createdAt.UTC())
	if err != nil {
		return nil, err
	}
	g.UpdatedAt = time.Now().UTC()
	return g, nil
}

func newGoalAt(userID, title, description string, freq recurrence.Frequency, createdAt time.Time) (*Goal, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrGoalInvalidUserID
	}

	cleanTitle, cleanDesc, err := validateGoal(title, description, freq)
	if err != nil {
		return nil, err
	}

	return &Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       cleanTitle,
		Description: cleanDesc,
		Frequency:   freq,
		Version:     1,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

func (g *Goal) Update(title, description string, freq recurrence.Frequency) error {
	if g.DeletedAt != nil {
		return ErrGoalDeleted
	}
	if freq != g.Frequency {
		return ErrFrequencyImmutable
	}

	cleanTitle, cleanDesc, err := validateGoal(title, description, freq)
	if err != nil {
		return err
	}

	g.Title = cleanTitle
	g.Description = cleanDesc
	g.UpdatedAt = time.Now().UTC()

	return nil
}

func (g *Goal) IsDeleted() bool {
	return g.DeletedAt != nil
}

func (g *Goal) Schedule(s *recurrence.Scheduler, on time.Time) GoalSchedule {
	return GoalSchedule{
		GoalID:    g.ID,
		Frequency: g.Frequency,
		Anchor:    s.Normalize(g.CreatedAt).Format(time.DateOnly),
		Date:      s.Normalize(on).Format(time.DateOnly),
		IsLive:    s.IsLive(g.Frequency, g.CreatedAt, on),
		NextDue:   s.NextDueDate(g.Frequency, g.CreatedAt, on).Format(time.DateOnly),
	}
}
