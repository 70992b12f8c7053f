package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"focustrack/app"
	"focustrack/internal"
	apperrors "focustrack/internal/errors"
	"focustrack/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes the tracker's status and correction surface over HTTP.
// The core engines have no knowledge of it; everything here goes through
// their public methods and the repository ports.
type Server struct {
	router      chi.Router
	tracker     *app.Tracker
	categorizer *app.Categorizer
	summaries   *app.SummaryService
	activities  ports.ActivityRepository
	projects    ports.ProjectRepository
	rules       ports.RuleRepository
	hub         *EventHub
	logger      *internal.Logger
}

// NewServer creates the HTTP server and wires its routes.
func NewServer(tracker *app.Tracker, categorizer *app.Categorizer, summaries *app.SummaryService,
	activities ports.ActivityRepository, projects ports.ProjectRepository, rules ports.RuleRepository,
	logger *internal.Logger) *Server {

	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		tracker:     tracker,
		categorizer: categorizer,
		summaries:   summaries,
		activities:  activities,
		projects:    projects,
		rules:       rules,
		hub:         NewEventHub(tracker, logger),
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/activities", s.handleListActivities)
		r.Get("/summary", s.handleSummary)
		r.Get("/export", s.handleExport)

		r.Post("/activity/project", s.handleAssignProject)
		r.Delete("/activity/project", s.handleClearProject)
		r.Post("/corrections", s.handleCorrection)

		r.Get("/projects", s.handleListProjects)
		r.Post("/projects", s.handleSaveProject)
		r.Delete("/projects/{id}", s.handleDeleteProject)

		r.Get("/rules", s.handleListRules)
		r.Post("/rules", s.handleCreateRule)
		r.Delete("/rules/{id}", s.handleDeleteRule)
	})

	r.Get("/ws", s.hub.HandleWebSocket)

	s.router = r
	return s
}

// Handler returns the root handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	s.logger.Info("api listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	}
	s.respondJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}

// timeRange parses from/to query params, defaulting to today.
func timeRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.Add(24 * time.Hour)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, apperrors.InvalidInput("from must be RFC3339")
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, apperrors.InvalidInput("to must be RFC3339")
		}
		to = parsed
	}
	return from, to, nil
}
