// Package api serves the admin HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"seinfeld/internal/domain"
	"seinfeld/internal/feed"
	"seinfeld/internal/timezone"
)

type PersonStore interface {
	GetByLogin(ctx context.Context, login string) (*domain.Person, error)
	ActivateAll(ctx context.Context) (int64, error)
	Activate(ctx context.Context, login string) error
	BestCurrentStreaks(ctx context.Context, limit int) ([]*domain.Person, error)
	BestLongestStreaks(ctx context.Context, limit int) ([]*domain.Person, error)
}

type Updater interface {
	RunLogin(ctx context.Context, login string) (*domain.Person, *feed.Feed, error)
}

type ProgressReader interface {
	ProgressFor(ctx context.Context, person *domain.Person, year int, month time.Month, pad int) ([]time.Time, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Config struct {
	LeaderLimit int
	CalendarPad int
}

type Handler struct {
	persons  PersonStore
	updater  Updater
	progress ProgressReader
	db       Pinger
	clock    func() time.Time
	logger   *slog.Logger
	config   Config
}

func NewHandler(
	persons PersonStore,
	updater Updater,
	progress ProgressReader,
	db Pinger,
	clock func() time.Time,
	logger *slog.Logger,
	cfg Config,
) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		persons:  persons,
		updater:  updater,
		progress: progress,
		db:       db,
		clock:    clock,
		logger:   logger,
		config:   cfg,
	}
}

type personView struct {
	Login              string     `json:"login"`
	Location           *string    `json:"location"`
	TimeZone           string     `json:"time_zone"`
	Disabled           bool       `json:"disabled"`
	StreakStart        *time.Time `json:"streak_start"`
	StreakEnd          *time.Time `json:"streak_end"`
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	LongestStreakStart *time.Time `json:"longest_streak_start"`
	LongestStreakEnd   *time.Time `json:"longest_streak_end"`
	LongestStreakURL   string     `json:"longest_streak_url"`
	TimeLeft           string     `json:"time_left"`
}

func (h *Handler) view(p *domain.Person) personView {
	return personView{
		Login:              p.Login,
		Location:           p.Location,
		TimeZone:           p.TimeZoneName(),
		Disabled:           p.Disabled,
		StreakStart:        p.StreakStart,
		StreakEnd:          p.StreakEnd,
		CurrentStreak:      p.CurrentStreakDays(),
		LongestStreak:      p.LongestStreakDays(),
		LongestStreakStart: p.LongestStreakStart,
		LongestStreakEnd:   p.LongestStreakEnd,
		LongestStreakURL:   p.LongestStreakURL(),
		TimeLeft:           domain.TimeLeft(h.clock(), timezone.Location(p.TimeZoneName())),
	}
}

func (h *Handler) views(persons []*domain.Person) []personView {
	out := make([]personView, len(persons))
	for i, p := range persons {
		out[i] = h.view(p)
	}
	return out
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	person, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, h.view(person))
}

type updateResponse struct {
	Person        personView `json:"person"`
	Events        int        `json:"events"`
	CommittedDays []string   `json:"committed_days"`
}

// UpdatePerson runs the updater for one stored person.
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	login := mux.Vars(r)["login"]

	person, f, err := h.updater.RunLogin(r.Context(), login)
	if errors.Is(err, domain.ErrPersonNotFound) {
		respondWithError(w, http.StatusNotFound, "person not found")
		return
	}
	if err != nil {
		h.logger.Error("manual update failed", "login", login, "error", err)
		respondWithError(w, http.StatusInternalServerError, "update failed")
		return
	}

	resp := updateResponse{Person: h.view(person), CommittedDays: []string{}}
	if f != nil {
		resp.Events = len(f.Items)
		for _, d := range f.CommittedDays() {
			resp.CommittedDays = append(resp.CommittedDays, domain.DayKey(d))
		}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

type calendarResponse struct {
	Login string   `json:"login"`
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Days  []string `json:"days"`
}

// GetCalendar lists the recorded days of one month, padded on both sides.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		respondWithError(w, http.StatusBadRequest, "invalid month")
		return
	}

	person, ok := h.lookup(w, r)
	if !ok {
		return
	}

	days, err := h.progress.ProgressFor(r.Context(), person, year, time.Month(month), h.config.CalendarPad)
	if err != nil {
		h.logger.Error("progress lookup failed", "login", person.Login, "error", err)
		respondWithError(w, http.StatusInternalServerError, "progress lookup failed")
		return
	}

	resp := calendarResponse{Login: person.Login, Year: year, Month: month, Days: make([]string, len(days))}
	for i, d := range days {
		resp.Days[i] = domain.DayKey(d)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

type leadersResponse struct {
	Current []personView `json:"current"`
	Longest []personView `json:"longest"`
}

func (h *Handler) GetLeaders(w http.ResponseWriter, r *http.Request) {
	current, err := h.persons.BestCurrentStreaks(r.Context(), h.config.LeaderLimit)
	if err != nil {
		h.logger.Error("current leaders failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "leaders lookup failed")
		return
	}
	longest, err := h.persons.BestLongestStreaks(r.Context(), h.config.LeaderLimit)
	if err != nil {
		h.logger.Error("longest leaders failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "leaders lookup failed")
		return
	}

	respondWithJSON(w, http.StatusOK, leadersResponse{
		Current: h.views(current),
		Longest: h.views(longest),
	})
}

func (h *Handler) ActivateAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.persons.ActivateAll(r.Context())
	if err != nil {
		h.logger.Error("activate all failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "activation failed")
		return
	}
	h.logger.Info("persons activated", "count", n)
	respondWithJSON(w, http.StatusOK, map[string]int64{"activated": n})
}

func (h *Handler) ActivatePerson(w http.ResponseWriter, r *http.Request) {
	login := mux.Vars(r)["login"]

	err := h.persons.Activate(r.Context(), login)
	if errors.Is(err, domain.ErrPersonNotFound) {
		respondWithError(w, http.StatusNotFound, "person not found")
		return
	}
	if err != nil {
		h.logger.Error("activate failed", "login", login, "error", err)
		respondWithError(w, http.StatusInternalServerError, "activation failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*domain.Person, bool) {
	login := mux.Vars(r)["login"]

	person, err := h.persons.GetByLogin(r.Context(), login)
	if errors.Is(err, domain.ErrPersonNotFound) {
		respondWithError(w, http.StatusNotFound, "person not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("person lookup failed", "login", login, "error", err)
		respondWithError(w, http.StatusInternalServerError, "person lookup failed")
		return nil, false
	}
	return person, true
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
