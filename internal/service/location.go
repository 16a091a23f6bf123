package service

import (
	"context"
	"fmt"
	"log/slog"

	"seinfeld/internal/domain"
	"seinfeld/internal/timezone"
)

// LocationResolver refreshes a person's location from their profile and
// derives a time zone name from it.
type LocationResolver struct {
	profiles ProfileSource
	geocoder Geocoder
	persons  PersonStore
	logger   *slog.Logger
}

func NewLocationResolver(
	profiles ProfileSource,
	geocoder Geocoder,
	persons PersonStore,
	logger *slog.Logger,
) *LocationResolver {
	return &LocationResolver{
		profiles: profiles,
		geocoder: geocoder,
		persons:  persons,
		logger:   logger,
	}
}

// ResolveLocation copies the profile location onto the person and saves it.
// A failed or empty profile lookup leaves the person untouched.
func (r *LocationResolver) ResolveLocation(ctx context.Context, person *domain.Person) error {
	profile, err := r.profiles.Profile(ctx, person.Login)
	if err != nil {
		r.logger.Warn("profile lookup failed", "login", person.Login, "error", err)
		return nil
	}
	if profile == nil {
		r.logger.Debug("empty profile", "login", person.Login)
		return nil
	}

	person.Location = profile.Location
	if err := r.persons.Save(ctx, person); err != nil {
		return fmt.Errorf("save person: %w", err)
	}
	return nil
}

// ResolveTimezone sets the time zone from the person's location and saves
// the person. A person without a location gets UTC. When the location
// cannot be resolved the time zone is left as is.
func (r *LocationResolver) ResolveTimezone(ctx context.Context, person *domain.Person) error {
	if location := person.LocationString(); location == "" {
		utc := timezone.UTC
		person.TimeZone = &utc
	} else if name, ok := r.lookupTimezone(ctx, person.Login, location); ok {
		person.TimeZone = &name
	}

	if err := r.persons.Save(ctx, person); err != nil {
		return fmt.Errorf("save person: %w", err)
	}
	return nil
}

func (r *LocationResolver) lookupTimezone(ctx context.Context, login, location string) (string, bool) {
	logger := r.logger.With("login", login, "location", location)

	place, err := r.geocoder.Search(ctx, location)
	if err != nil {
		logger.Warn("geocode failed", "error", err)
		return "", false
	}
	if place == nil {
		logger.Debug("location not found")
		return "", false
	}

	id, err := r.geocoder.Timezone(ctx, place.Lat, place.Lng)
	if err != nil {
		logger.Warn("timezone lookup failed", "error", err)
		return "", false
	}
	if id == "" {
		logger.Debug("no timezone at coordinates", "lat", place.Lat, "lng", place.Lng)
		return "", false
	}

	name, ok := timezone.FromID(id)
	if !ok {
		logger.Debug("unrecognized timezone", "timezone_id", id)
		return "", false
	}
	return name, true
}
