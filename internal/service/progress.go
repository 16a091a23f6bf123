package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"seinfeld/internal/domain"
)

// ProgressService records active days and keeps the streak summary on the
// person in step with them.
type ProgressService struct {
	persons   PersonStore
	progress  ProgressStore
	txManager TransactionManager
	logger    *slog.Logger
}

func NewProgressService(
	persons PersonStore,
	progress ProgressStore,
	txManager TransactionManager,
	logger *slog.Logger,
) *ProgressService {
	return &ProgressService{
		persons:   persons,
		progress:  progress,
		txManager: txManager,
		logger:    logger,
	}
}

// UpdateProgress merges days into the person's record and returns the days
// that were not recorded before, ascending.
func (s *ProgressService) UpdateProgress(ctx context.Context, person *domain.Person, days []time.Time, today time.Time) ([]time.Time, error) {
	fresh, err := s.filterExisting(ctx, person.ID, days)
	if err != nil {
		return nil, fmt.Errorf("filter existing days: %w", err)
	}

	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].Before(fresh[j])
	})

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		streaks, err := s.scan(txCtx, person, fresh)
		if err != nil {
			return err
		}

		person.ApplyStreaks(streaks, domain.Normalize(today))

		if err := s.persons.Save(txCtx, person); err != nil {
			return fmt.Errorf("save person: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("progress updated",
		"login", person.Login,
		"new_days", len(fresh),
		"current_streak", person.CurrentStreakDays(),
		"longest_streak", person.LongestStreakDays(),
	)

	return fresh, nil
}

// scan walks sorted days, extending the stored open streak while the days
// stay contiguous and opening a new one at each gap. Each day is recorded.
func (s *ProgressService) scan(ctx context.Context, person *domain.Person, days []time.Time) ([]*domain.Streak, error) {
	current := person.OpenStreak()
	streaks := []*domain.Streak{current}

	for _, day := range days {
		if current.Current(day) {
			current.Extend(day)
		} else {
			current = domain.OpenStreak(day)
			streaks = append(streaks, current)
		}

		if err := s.progress.Insert(ctx, person.ID, day); err != nil {
			return nil, fmt.Errorf("insert day %s: %w", domain.DayKey(day), err)
		}
	}

	return streaks, nil
}

func (s *ProgressService) filterExisting(ctx context.Context, personID int64, days []time.Time) ([]time.Time, error) {
	if len(days) == 0 {
		return []time.Time{}, nil
	}

	normalized := make([]time.Time, 0, len(days))
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		day := domain.Normalize(d)
		key := domain.DayKey(day)
		if seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, day)
	}

	existing, err := s.progress.FindExisting(ctx, personID, normalized)
	if err != nil {
		return nil, err
	}

	recorded := make(map[string]bool, len(existing))
	for _, d := range existing {
		recorded[domain.DayKey(d)] = true
	}

	fresh := make([]time.Time, 0, len(normalized))
	for _, day := range normalized {
		if !recorded[domain.DayKey(day)] {
			fresh = append(fresh, day)
		}
	}
	return fresh, nil
}

// FixProgress rebuilds the open streak from the recorded days, newest first,
// stopping at the first gap.
func (s *ProgressService) FixProgress(ctx context.Context, person *domain.Person, today time.Time) error {
	days, err := s.progress.ListDescending(ctx, person.ID)
	if err != nil {
		return fmt.Errorf("list progress: %w", err)
	}

	streak := &domain.Streak{}
	for _, d := range days {
		day := domain.Normalize(d)
		if streak.Started == nil {
			streak.Extend(day)
			continue
		}
		if !domain.SameDay(domain.PrevDay(*streak.Started), day) {
			break
		}
		streak.Started = &day
	}

	if streak.Days() == 0 {
		return nil
	}

	person.ApplyStreaks([]*domain.Streak{streak}, domain.Normalize(today))
	if err := s.persons.Save(ctx, person); err != nil {
		return fmt.Errorf("save person: %w", err)
	}

	s.logger.Info("progress fixed",
		"login", person.Login,
		"streak_days", streak.Days(),
		"current_streak", person.CurrentStreakDays(),
	)
	return nil
}

// ClearProgress deletes every recorded day and resets the summary.
func (s *ProgressService) ClearProgress(ctx context.Context, person *domain.Person) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.progress.DeleteAll(txCtx, person.ID); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}

		person.ClearStreaks()

		if err := s.persons.Save(txCtx, person); err != nil {
			return fmt.Errorf("save person: %w", err)
		}
		return nil
	})
}

// ProgressFor returns the recorded days of the given month, widened by pad
// days on both sides, ascending.
func (s *ProgressService) ProgressFor(ctx context.Context, person *domain.Person, year int, month time.Month, pad int) ([]time.Time, error) {
	first := domain.Date(year, month, 1)
	last := first.AddDate(0, 1, -1)

	days, err := s.progress.ListBetween(ctx, person.ID, first.AddDate(0, 0, -pad), last.AddDate(0, 0, pad))
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return days, nil
}
