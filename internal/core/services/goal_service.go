package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
	"github.com/comitanigiacomo/kanso-goals/internal/core/recurrence"
)

type GoalService struct {
	repo        domain.GoalRepository
	defaultZone *time.Location
	now         func() time.Time
}

type GoalServiceOption func(*GoalService)

// WithClock replaces the clock used when a caller does not pass a date.
func WithClock(now func() time.Time) GoalServiceOption {
	return func(s *GoalService) {
		s.now = now
	}
}

func WithDefaultLocation(loc *time.Location) GoalServiceOption {
	return func(s *GoalService) {
		if loc != nil {
			s.defaultZone = loc
		}
	}
}

func NewGoalService(repo domain.GoalRepository, opts ...GoalServiceOption) *GoalService {
	s := &GoalService{
		repo:        repo,
		defaultZone: time.UTC,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateGoalInput struct {
	UserID      string
	Title       string
	Description string
	Frequency   string
}

type ImportGoalInput struct {
	UserID      string
	Title       string
	Description string
	Frequency   string
	CreatedAt   string
	Location    *time.Location
}

type UpdateGoalInput struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Frequency   string
	Version     int
}

type DueInput struct {
	UserID   string
	Date     time.Time
	Location *time.Location
}

type DueGoal struct {
	Goal    *domain.Goal `json:"goal"`
	NextDue string       `json:"next_due"`
}

type DueList struct {
	Date     string    `json:"date"`
	Timezone string    `json:"timezone"`
	Goals    []DueGoal `json:"goals"`
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *GoalService) scheduler(loc *time.Location) *recurrence.Scheduler {
	if loc == nil {
		loc = s.defaultZone
	}
	return recurrence.New(loc)
}

func (s *GoalService) Create(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	freq, err := recurrence.ParseFrequency(input.Frequency)
	if err != nil {
		return nil, err
	}

	goal, err := domain.NewGoal(input.UserID, input.Title, input.Description, freq)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

// Import stores a goal that a client created while offline. The client's
// anchor is validated here and nowhere else.
func (s *GoalService) Import(ctx context.Context, input ImportGoalInput) (*domain.Goal, error) {
	freq, err := recurrence.ParseFrequency(input.Frequency)
	if err != nil {
		return nil, err
	}

	loc := input.Location
	if loc == nil {
		loc = s.defaultZone
	}

	anchor, err := domain.ParseAnchor(input.CreatedAt, loc)
	if err != nil {
		return nil, err
	}
	if anchor.After(s.now()) {
		return nil, fmt.Errorf("%w: anchor is in the future", domain.ErrInvalidAnchor)
	}

	goal, err := domain.RestoreGoal(input.UserID, input.Title, input.Description, freq, anchor)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) Get(ctx context.Context, id, userID string) (*domain.Goal, error) {
	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if goal.UserID != userID {
		return nil, domain.ErrGoalNotFound
	}

	return goal, nil
}

func (s *GoalService) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *GoalService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Goal, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *GoalService) Update(ctx context.Context, input UpdateGoalInput) (*domain.Goal, error) {
	goal, err := s.Get(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && goal.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrGoalConflict, input.Version, goal.Version)
	}

	freq := goal.Frequency
	if input.Frequency != "" {
		freq, err = recurrence.ParseFrequency(input.Frequency)
		if err != nil {
			return nil, err
		}
	}

	desc := goal.Description
	if input.Description != nil {
		desc = *input.Description
	}

	if err := goal.Update(mergeString(input.Title, goal.Title), desc, freq); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// ListDue returns the user's goals that are live on input.Date, read as a
// calendar day in input.Location. A zero Date means today.
func (s *GoalService) ListDue(ctx context.Context, input DueInput) (*DueList, error) {
	sched := s.scheduler(input.Location)

	on := input.Date
	if on.IsZero() {
		on = recurrence.NewToday(sched, s.now).Date()
	}

	goals, err := s.repo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	due := make([]DueGoal, 0, len(goals))
	for _, g := range goals {
		if !g.Frequency.Valid() {
			log.Warn().Str("goal_id", g.ID).Stringer("frequency", g.Frequency).Msg("skipping goal with invalid frequency")
			continue
		}
		if !sched.IsLive(g.Frequency, g.CreatedAt, on) {
			continue
		}
		due = append(due, DueGoal{
			Goal:    g,
			NextDue: sched.NextDueDate(g.Frequency, g.CreatedAt, on).Format(time.DateOnly),
		})
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Goal.CreatedAt.Before(due[j].Goal.CreatedAt)
	})

	return &DueList{
		Date:     sched.Normalize(on).Format(time.DateOnly),
		Timezone: sched.Location().String(),
		Goals:    due,
	}, nil
}

// Schedule previews one goal's due status on from and its next due day.
// A zero from means today.
func (s *GoalService) Schedule(ctx context.Context, id, userID string, from time.Time, loc *time.Location) (*domain.GoalSchedule, error) {
	goal, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	sched := s.scheduler(loc)
	if from.IsZero() {
		from = recurrence.NewToday(sched, s.now).Date()
	}

	preview := goal.Schedule(sched, from)
	return &preview, nil
}
