// Package feed parses a page of activity events and reduces it to the
// calendar days with qualifying activity.
package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"seinfeld/internal/domain"
	"seinfeld/internal/transport"
)

// DirectURL marks a feed built from data obtained out of band.
const DirectURL = "direct"

// Feed is one parsed page of a person's events.
type Feed struct {
	Login string
	URL   string
	Items []Event
	ETag  string

	disabled bool
	loc      *time.Location

	once sync.Once
	days []time.Time
}

// New parses data directly. Dates are computed in loc.
func New(login string, data []byte, loc *time.Location) *Feed {
	f := newFeed(login, DirectURL, loc)
	f.parse(data, nil)
	return f
}

// FromResponse builds a feed from a fetched response. Anything other than a
// success or a 304 disables the feed without parsing.
func FromResponse(login, url string, resp *transport.Response, loc *time.Location) *Feed {
	f := newFeed(login, url, loc)
	if !(resp.Success() || resp.NotModified()) {
		f.disabled = true
		return f
	}
	f.ETag = resp.Header.Get("ETag")
	f.parse(resp.Body, nil)
	return f
}

// FromError builds an empty feed for a failed fetch. A not-found failure
// disables it.
func FromError(login, url string, err error, loc *time.Location) *Feed {
	f := newFeed(login, url, loc)
	f.parse(nil, err)
	return f
}

func newFeed(login, url string, loc *time.Location) *Feed {
	if loc == nil {
		loc = time.UTC
	}
	return &Feed{
		Login: domain.NormalizeLogin(login),
		URL:   url,
		Items: []Event{},
		loc:   loc,
	}
}

func (f *Feed) parse(data []byte, err error) {
	if err == nil {
		f.Items, err = decode(data)
	}
	if err != nil {
		f.Items = []Event{}
		if errors.Is(err, transport.ErrNotFound) {
			f.disabled = true
		}
	}
}

func decode(data []byte) ([]Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Event{}, nil
	}
	var items []Event
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	if items == nil {
		items = []Event{}
	}
	return items, nil
}

// Disabled reports whether the feed could not be fetched.
func (f *Feed) Disabled() bool {
	return f.disabled
}

// Location is the zone committed days are computed in.
func (f *Feed) Location() *time.Location {
	return f.loc
}

// CommittedDays returns the unique days with qualifying events, in the order
// they first appear in the feed.
func (f *Feed) CommittedDays() []time.Time {
	f.once.Do(func() {
		seen := make(map[string]bool)
		f.days = []time.Time{}
		for _, item := range f.Items {
			if !IsCommitEvent(item) {
				continue
			}
			created, err := time.Parse(time.RFC3339, item.CreatedAt)
			if err != nil {
				continue
			}
			day := domain.Day(created, f.loc)
			key := domain.DayKey(day)
			if seen[key] {
				continue
			}
			seen[key] = true
			f.days = append(f.days, day)
		}
	})
	return f.days
}

func (f *Feed) String() string {
	return fmt.Sprintf("#<Feed:%s (%d)>", f.URL, len(f.Items))
}
