package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"seinfeld/internal/domain"
	"seinfeld/internal/feed"
	"seinfeld/internal/transport"
)

const (
	SourceID       = "github"
	DefaultBaseURL = "https://api.github.com"
)

// Config holds GitHub source configuration.
type Config struct {
	BaseURL string
}

// Client reads public events and profiles from the GitHub API.
type Client struct {
	transport transport.Client
	baseURL   string
	logger    *slog.Logger
}

// New creates a new GitHub source.
func New(cfg Config, t transport.Client, logger *slog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		transport: t,
		baseURL:   strings.TrimRight(base, "/"),
		logger:    logger.With("source", SourceID),
	}
}

func (c *Client) eventsURL(login string) string {
	return fmt.Sprintf("%s/users/%s/events", c.baseURL, url.PathEscape(login))
}

// Events fetches one page of the person's public events, revalidating
// against the stored etag. Committed days of the returned feed are computed
// in loc.
func (c *Client) Events(ctx context.Context, person *domain.Person, page int, loc *time.Location) *feed.Feed {
	if page < 1 {
		page = 1
	}
	target := c.eventsURL(person.Login)

	header := http.Header{}
	if etag := person.ETagString(); etag != "" {
		header.Set("If-None-Match", etag)
	}
	query := url.Values{"page": {strconv.Itoa(page)}}

	resp, err := c.transport.Get(ctx, target, header, query)
	if err != nil {
		c.logger.Warn("fetch events failed",
			"login", person.Login,
			"page", page,
			"error", err,
		)
		return feed.FromError(person.Login, target, err, loc)
	}

	f := feed.FromResponse(person.Login, target, resp, loc)
	c.logger.Debug("fetched events",
		"login", person.Login,
		"page", page,
		"status", resp.Status,
		"items", len(f.Items),
		"disabled", f.Disabled(),
	)
	return f
}

// Profile fetches the user record. A JSON null body yields a nil profile.
func (c *Client) Profile(ctx context.Context, login string) (*Profile, error) {
	target := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(login))

	resp, err := c.transport.Get(ctx, target, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if err := resp.Err(target); err != nil {
		return nil, err
	}

	var profile *Profile
	if err := json.Unmarshal(resp.Body, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return profile, nil
}
