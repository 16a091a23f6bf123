package geonames

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seinfeld/internal/transport"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tr := transport.NewHTTPClient(transport.Config{Timeout: time.Second, MaxAttempts: 1}, logger)
	return New(Config{BaseURL: server.URL, Username: "seinfeld"}, tr, logger)
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searchJSON", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("maxRows"))
		assert.Equal(t, "Boulder, CO", r.URL.Query().Get("q"))
		assert.Equal(t, "seinfeld", r.URL.Query().Get("username"))
		_, _ = io.WriteString(w, `{"geonames":[{"lng":-105.2705456,"lat":40.0149856}]}`)
	})

	place, err := client.Search(context.Background(), "Boulder, CO")
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.InDelta(t, 40.0149856, place.Lat, 1e-9)
	assert.InDelta(t, -105.2705456, place.Lng, 1e-9)
}

func TestSearch_StringCoordinates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"geonames":[{"name":"Boulder","lng":"-105.27054","lat":"40.01499"}]}`)
	})

	place, err := client.Search(context.Background(), "Boulder")
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Equal(t, "Boulder", place.Name)
	assert.InDelta(t, 40.01499, place.Lat, 1e-9)
}

func TestSearch_NoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"geonames":[]}`)
	})

	place, err := client.Search(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestSearch_MissingCoordinates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"geonames":[{"name":"Atlantis","lat":12.5}]}`)
	})

	place, err := client.Search(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestSearch_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Search(context.Background(), "Boulder")
	var statusErr *transport.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestTimezone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/timezoneJSON", r.URL.Path)
		assert.Equal(t, "40.0149856", r.URL.Query().Get("lat"))
		assert.Equal(t, "-105.2705456", r.URL.Query().Get("lng"))
		_, _ = io.WriteString(w, `{"timezoneId":"America/Denver"}`)
	})

	id, err := client.Timezone(context.Background(), 40.0149856, -105.2705456)
	require.NoError(t, err)
	assert.Equal(t, "America/Denver", id)
}

func TestTimezone_InvalidBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	_, err := client.Timezone(context.Background(), 1, 2)
	assert.Error(t, err)
}
