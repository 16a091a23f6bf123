package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"seinfeld/internal/domain"
)

const personColumns = `
	id, login, location, time_zone, etag, disabled,
	streak_start, streak_end, current_streak,
	longest_streak, longest_streak_start, longest_streak_end,
	created_at, updated_at`

type PersonStore struct {
	db *sqlx.DB
}

func NewPersonStore(db *sqlx.DB) *PersonStore {
	return &PersonStore{db: db}
}

// Save inserts a new person or updates the stored one with the same login.
func (s *PersonStore) Save(ctx context.Context, person *domain.Person) error {
	login := domain.NormalizeLogin(person.Login)
	if login == "" {
		return domain.ErrInvalidLogin
	}
	person.Login = login

	query := `
		INSERT INTO persons (
			login, location, time_zone, etag, disabled,
			streak_start, streak_end, current_streak,
			longest_streak, longest_streak_start, longest_streak_end
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		ON CONFLICT (login) DO UPDATE SET
			location = EXCLUDED.location,
			time_zone = EXCLUDED.time_zone,
			etag = EXCLUDED.etag,
			disabled = EXCLUDED.disabled,
			streak_start = EXCLUDED.streak_start,
			streak_end = EXCLUDED.streak_end,
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			longest_streak_start = EXCLUDED.longest_streak_start,
			longest_streak_end = EXCLUDED.longest_streak_end,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	exec := GetExecutor(ctx, s.db)
	err := exec.QueryRowxContext(ctx, query,
		person.Login,
		person.Location,
		person.TimeZone,
		person.ETag,
		person.Disabled,
		dateArg(person.StreakStart),
		dateArg(person.StreakEnd),
		person.CurrentStreak,
		person.LongestStreak,
		dateArg(person.LongestStreakStart),
		dateArg(person.LongestStreakEnd),
	).Scan(&person.ID, &person.CreatedAt, &person.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert person %s: %w", person.Login, err)
	}
	return nil
}

func (s *PersonStore) GetByLogin(ctx context.Context, login string) (*domain.Person, error) {
	var person domain.Person
	query := `SELECT ` + personColumns + ` FROM persons WHERE login = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &person, query, domain.NormalizeLogin(login))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPersonNotFound
	}
	if err != nil {
		return nil, err
	}
	normalizeDates(&person)
	return &person, nil
}

// ListActive returns up to limit enabled persons with an id above sinceID,
// ordered by id.
func (s *PersonStore) ListActive(ctx context.Context, sinceID int64, limit int) ([]*domain.Person, error) {
	query := `
		SELECT ` + personColumns + `
		FROM persons
		WHERE disabled = FALSE AND id > $1
		ORDER BY id
		LIMIT $2`

	return s.list(ctx, query, sinceID, limit)
}

func (s *PersonStore) ActivateAll(ctx context.Context) (int64, error) {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE persons SET disabled = FALSE, updated_at = NOW() WHERE disabled = TRUE`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PersonStore) Activate(ctx context.Context, login string) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE persons SET disabled = FALSE, updated_at = NOW() WHERE login = $1`,
		domain.NormalizeLogin(login))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPersonNotFound
	}
	return nil
}

func (s *PersonStore) BestCurrentStreaks(ctx context.Context, limit int) ([]*domain.Person, error) {
	query := `
		SELECT ` + personColumns + `
		FROM persons
		WHERE current_streak > 0
		ORDER BY current_streak DESC, login
		LIMIT $1`

	return s.list(ctx, query, limit)
}

func (s *PersonStore) BestLongestStreaks(ctx context.Context, limit int) ([]*domain.Person, error) {
	query := `
		SELECT ` + personColumns + `
		FROM persons
		WHERE longest_streak > 0
		ORDER BY longest_streak DESC, login
		LIMIT $1`

	return s.list(ctx, query, limit)
}

func (s *PersonStore) list(ctx context.Context, query string, args ...any) ([]*domain.Person, error) {
	var persons []*domain.Person
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &persons, query, args...); err != nil {
		return nil, err
	}
	for _, p := range persons {
		normalizeDates(p)
	}
	return persons, nil
}

// dateArg binds a day as a DATE literal so the session time zone cannot
// shift it.
func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.DayKey(*t)
}

// normalizeDates strips the zone the driver attaches to DATE columns.
func normalizeDates(p *domain.Person) {
	for _, d := range []**time.Time{
		&p.StreakStart,
		&p.StreakEnd,
		&p.LongestStreakStart,
		&p.LongestStreakEnd,
	} {
		if *d != nil {
			day := domain.Normalize(**d)
			*d = &day
		}
	}
}
