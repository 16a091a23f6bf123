package geonames

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"seinfeld/internal/transport"
)

const (
	SourceID       = "geonames"
	DefaultBaseURL = "http://api.geonames.org"
)

// Config holds GeoNames source configuration.
type Config struct {
	BaseURL  string
	Username string
}

// Client geocodes free-form locations and looks up their time zone.
type Client struct {
	transport transport.Client
	baseURL   string
	username  string
	logger    *slog.Logger
}

// New creates a new GeoNames source.
func New(cfg Config, t transport.Client, logger *slog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		transport: t,
		baseURL:   strings.TrimRight(base, "/"),
		username:  cfg.Username,
		logger:    logger.With("source", SourceID),
	}
}

// Search returns the best match for query, or nil when nothing with
// coordinates matched.
func (c *Client) Search(ctx context.Context, query string) (*Place, error) {
	params := url.Values{
		"maxRows": {"1"},
		"q":       {query},
	}

	var body searchResponse
	if err := c.get(ctx, "searchJSON", params, &body); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if len(body.Geonames) == 0 {
		c.logger.Debug("no geonames match", "query", query)
		return nil, nil
	}
	hit := body.Geonames[0]
	if hit.Lat == nil || hit.Lng == nil {
		c.logger.Debug("geonames match without coordinates", "query", query)
		return nil, nil
	}
	return &Place{Name: hit.Name, Lat: float64(*hit.Lat), Lng: float64(*hit.Lng)}, nil
}

// Timezone returns the IANA zone id at the given coordinates.
func (c *Client) Timezone(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng": {strconv.FormatFloat(lng, 'f', -1, 64)},
	}

	var body timezoneResponse
	if err := c.get(ctx, "timezoneJSON", params, &body); err != nil {
		return "", fmt.Errorf("timezone at %v,%v: %w", lat, lng, err)
	}
	return body.TimezoneID, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if c.username != "" {
		params.Set("username", c.username)
	}
	target := c.baseURL + "/" + endpoint

	resp, err := c.transport.Get(ctx, target, nil, params)
	if err != nil {
		return err
	}
	if err := resp.Err(target); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
