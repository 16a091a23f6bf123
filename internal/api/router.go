package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"seinfeld/internal/metrics"
)

// NewRouter wires the admin routes. metricsHandler may be nil.
func NewRouter(h *Handler, m *metrics.Metrics, metricsHandler http.Handler, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(m.Middleware)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	r.HandleFunc("/leaders", h.GetLeaders).Methods(http.MethodGet)
	r.HandleFunc("/persons/activate", h.ActivateAll).Methods(http.MethodPost)

	r.HandleFunc("/~{login}", h.GetPerson).Methods(http.MethodGet)
	r.HandleFunc("/~{login}/update", h.UpdatePerson).Methods(http.MethodPost)
	r.HandleFunc("/~{login}/activate", h.ActivatePerson).Methods(http.MethodPost)
	r.HandleFunc("/~{login}/{year:[0-9]{4}}/{month:[0-9]{1,2}}", h.GetCalendar).Methods(http.MethodGet)

	logged := handlers.CustomLoggingHandler(io.Discard, r, func(_ io.Writer, p handlers.LogFormatterParams) {
		logger.Info("http request",
			"method", p.Request.Method,
			"path", p.URL.Path,
			"status", p.StatusCode,
			"size", p.Size,
		)
	})

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)(logged)
}
