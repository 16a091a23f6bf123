package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"seinfeld/internal/domain"
)

// ProgressStore keeps one row per person and active day.
type ProgressStore struct {
	db *sqlx.DB
}

func NewProgressStore(db *sqlx.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// FindExisting returns which of days are already recorded for the person.
func (s *ProgressStore) FindExisting(ctx context.Context, personID int64, days []time.Time) ([]time.Time, error) {
	if len(days) == 0 {
		return []time.Time{}, nil
	}

	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = domain.DayKey(d)
	}

	query := `SELECT day FROM progressions WHERE person_id = $1 AND day = ANY($2::date[]) ORDER BY day`
	return s.selectDays(ctx, query, personID, pq.Array(keys))
}

// Insert records day. Recording the same day twice is a no-op.
func (s *ProgressStore) Insert(ctx context.Context, personID int64, day time.Time) error {
	query := `
		INSERT INTO progressions (person_id, day)
		VALUES ($1, $2::date)
		ON CONFLICT (person_id, day) DO NOTHING`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, personID, domain.DayKey(day))
	return err
}

func (s *ProgressStore) DeleteAll(ctx context.Context, personID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM progressions WHERE person_id = $1`, personID)
	return err
}

func (s *ProgressStore) ListDescending(ctx context.Context, personID int64) ([]time.Time, error) {
	query := `SELECT day FROM progressions WHERE person_id = $1 ORDER BY day DESC`
	return s.selectDays(ctx, query, personID)
}

// ListBetween returns recorded days in [from, to], ascending.
func (s *ProgressStore) ListBetween(ctx context.Context, personID int64, from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT day FROM progressions
		WHERE person_id = $1 AND day BETWEEN $2::date AND $3::date
		ORDER BY day`

	return s.selectDays(ctx, query, personID, domain.DayKey(from), domain.DayKey(to))
}

func (s *ProgressStore) selectDays(ctx context.Context, query string, args ...any) ([]time.Time, error) {
	var days []time.Time
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &days, query, args...); err != nil {
		return nil, err
	}
	for i, d := range days {
		days[i] = domain.Normalize(d)
	}
	if days == nil {
		days = []time.Time{}
	}
	return days, nil
}
