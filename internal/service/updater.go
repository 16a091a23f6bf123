package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"seinfeld/internal/config"
	"seinfeld/internal/domain"
	"seinfeld/internal/feed"
	"seinfeld/internal/metrics"
	"seinfeld/internal/timezone"
)

// Updater refreshes one person at a time from their activity feed.
type Updater struct {
	persons   PersonStore
	progress  *ProgressService
	resolver  *LocationResolver
	feeds     FeedSource
	publisher Publisher
	metrics   *metrics.Metrics
	clock     func() time.Time
	logger    *slog.Logger
	config    config.UpdateConfig
}

func NewUpdater(
	persons PersonStore,
	progress *ProgressService,
	resolver *LocationResolver,
	feeds FeedSource,
	publisher Publisher,
	m *metrics.Metrics,
	clock func() time.Time,
	logger *slog.Logger,
	cfg config.UpdateConfig,
) *Updater {
	if clock == nil {
		clock = time.Now
	}
	return &Updater{
		persons:   persons,
		progress:  progress,
		resolver:  resolver,
		feeds:     feeds,
		publisher: publisher,
		metrics:   m,
		clock:     clock,
		logger:    logger,
		config:    cfg,
	}
}

// Run refreshes the person's location, fetches one page of their feed and
// merges the committed days. It returns nil when the feed turned out to be
// gone, in which case the person is saved as disabled.
func (u *Updater) Run(ctx context.Context, person *domain.Person, today *time.Time, page int) (*feed.Feed, error) {
	f, _, err := u.run(ctx, person, today, page)
	return f, err
}

func (u *Updater) run(ctx context.Context, person *domain.Person, today *time.Time, page int) (*feed.Feed, []time.Time, error) {
	logger := u.logger.With("login", person.Login)

	oldLocation := person.LocationString()
	if err := u.resolver.ResolveLocation(ctx, person); err != nil {
		return nil, nil, fmt.Errorf("resolve location: %w", err)
	}
	if person.LocationString() != oldLocation {
		logger.Debug("location changed", "from", oldLocation, "to", person.LocationString())
		if err := u.resolver.ResolveTimezone(ctx, person); err != nil {
			return nil, nil, fmt.Errorf("resolve timezone: %w", err)
		}
	}

	loc := timezone.Location(person.TimeZoneName())

	f := u.feeds.Events(ctx, person, page, loc)
	if f.Disabled() {
		person.Disabled = true
		if err := u.persons.Save(ctx, person); err != nil {
			return nil, nil, fmt.Errorf("save disabled person: %w", err)
		}
		logger.Info("person disabled", "url", f.URL)
		return nil, nil, nil
	}

	etag := f.ETag
	person.ETag = &etag

	day := domain.Day(u.clock(), loc)
	if today != nil {
		day = domain.Normalize(*today)
	}

	newDays, err := u.progress.UpdateProgress(ctx, person, f.CommittedDays(), day)
	if err != nil {
		return nil, nil, fmt.Errorf("update progress: %w", err)
	}

	return f, newDays, nil
}

// UpdateAll runs every active person, paging through them by id. Failures
// for one person are counted and logged without stopping the pass.
func (u *Updater) UpdateAll(ctx context.Context) (*domain.UpdateStats, error) {
	startTime := time.Now()
	u.logger.Info("starting update",
		"batch_size", u.config.BatchSize,
		"page", u.config.Page,
	)

	stats := &domain.UpdateStats{}

	var since int64
	for {
		persons, err := u.persons.ListActive(ctx, since, u.config.BatchSize)
		if err != nil {
			return stats, fmt.Errorf("list active persons: %w", err)
		}
		if len(persons) == 0 {
			break
		}

		for _, person := range persons {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if person.ID > since {
				since = person.ID
			}
			u.updateOne(ctx, person, stats)
		}
	}

	stats.Duration = time.Since(startTime)
	u.metrics.ObservePass(stats.Duration)

	u.logger.Info("update completed",
		"processed", stats.Processed,
		"updated", stats.Updated,
		"disabled", stats.Disabled,
		"errors", stats.Errors,
		"new_days", stats.NewDays,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (u *Updater) updateOne(ctx context.Context, person *domain.Person, stats *domain.UpdateStats) {
	start := time.Now()
	stats.Processed++

	f, newDays, err := u.run(ctx, person, nil, u.config.Page)
	switch {
	case err != nil:
		stats.Errors++
		u.metrics.ObserveRun(metrics.OutcomeError, 0, time.Since(start))
		if !errors.Is(err, context.Canceled) {
			u.logger.Error("update failed", "login", person.Login, "error", err)
		}
		return
	case f == nil:
		stats.Disabled++
		u.metrics.ObserveRun(metrics.OutcomeDisabled, 0, time.Since(start))
		return
	}

	stats.Updated++
	stats.NewDays += len(newDays)
	u.metrics.ObserveRun(metrics.OutcomeUpdated, len(newDays), time.Since(start))

	if published, err := u.publish(ctx, person, newDays); err != nil {
		stats.Errors++
	} else if published {
		stats.Published++
	}
}

func (u *Updater) publish(ctx context.Context, person *domain.Person, newDays []time.Time) (bool, error) {
	if u.publisher == nil || len(newDays) == 0 {
		return false, nil
	}
	if err := u.publisher.Publish(ctx, domain.NewStreakUpdate(person, newDays)); err != nil {
		u.logger.Warn("publish failed", "login", person.Login, "error", err)
		return false, err
	}
	return true, nil
}

// RunLogin updates a single stored person by login.
func (u *Updater) RunLogin(ctx context.Context, login string) (*domain.Person, *feed.Feed, error) {
	person, err := u.persons.GetByLogin(ctx, domain.NormalizeLogin(login))
	if err != nil {
		return nil, nil, err
	}

	f, newDays, err := u.run(ctx, person, nil, u.config.Page)
	if err != nil {
		return person, nil, err
	}

	if f != nil {
		_, _ = u.publish(ctx, person, newDays)
	}
	return person, f, nil
}
