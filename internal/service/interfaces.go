package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"seinfeld/internal/domain"
	"seinfeld/internal/feed"
	"seinfeld/internal/source/geonames"
	"seinfeld/internal/source/github"
)

type PersonStore interface {
	Save(ctx context.Context, person *domain.Person) error
	GetByLogin(ctx context.Context, login string) (*domain.Person, error)
	ListActive(ctx context.Context, sinceID int64, limit int) ([]*domain.Person, error)
	ActivateAll(ctx context.Context) (int64, error)
	Activate(ctx context.Context, login string) error
	BestCurrentStreaks(ctx context.Context, limit int) ([]*domain.Person, error)
	BestLongestStreaks(ctx context.Context, limit int) ([]*domain.Person, error)
}

type ProgressStore interface {
	FindExisting(ctx context.Context, personID int64, days []time.Time) ([]time.Time, error)
	Insert(ctx context.Context, personID int64, day time.Time) error
	DeleteAll(ctx context.Context, personID int64) error
	ListDescending(ctx context.Context, personID int64) ([]time.Time, error)
	ListBetween(ctx context.Context, personID int64, from, to time.Time) ([]time.Time, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type FeedSource interface {
	Events(ctx context.Context, person *domain.Person, page int, loc *time.Location) *feed.Feed
}

type ProfileSource interface {
	Profile(ctx context.Context, login string) (*github.Profile, error)
}

type Geocoder interface {
	Search(ctx context.Context, query string) (*geonames.Place, error)
	Timezone(ctx context.Context, lat, lng float64) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, update *domain.StreakUpdate) error
	Close() error
}
