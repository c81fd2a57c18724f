package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"docfill/internal/access"
	"docfill/internal/pipeline"
	"docfill/internal/storage"
)

// PlanDirectory exposes the plan lookups the API serves directly; the
// permission and quota checks on the fill path run inside the pipeline.
type PlanDirectory interface {
	PlanFor(userID string) access.Plan
	CheckTemplateLimit(userID string, currentCount int) error
}

// Server exposes template upload, document fill and rendering download
// over HTTP.
type Server struct {
	engine *pipeline.Engine
	store  storage.Store
	access access.Controller
	plans  PlanDirectory
	addr   string
	logger *zap.Logger
}

// NewServer wires the API against the fill engine and its stores.
func NewServer(engine *pipeline.Engine, store storage.Store, ctrl access.Controller, plans PlanDirectory, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine: engine,
		store:  store,
		access: ctrl,
		plans:  plans,
		addr:   addr,
		logger: logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/templates", s.handleTemplates)
	mux.HandleFunc("/api/documents", s.handleFill)
	mux.HandleFunc("/api/documents/", s.handleDocument)
	mux.HandleFunc("/api/users/", s.handleUserPlan)
	return s.loggingMiddleware(mux)
}

// Start serves until the context is cancelled, then drains in-flight
// requests before returning.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError maps fill pipeline failures onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, access.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, access.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// requestUser identifies the caller. Without the header every request
// shares the anonymous identity and its default plan.
func requestUser(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}
