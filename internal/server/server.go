// Package server exposes the analytics as a JSON API for the browser dashboard.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-Id"
	shutdownTimeout = 10 * time.Second
)

// localOrigins are allowed when no origin is configured.
var localOrigins = []string{"http://localhost", "http://localhost:*", "http://127.0.0.1", "http://127.0.0.1:*"}

type requestIDKey struct{}

// Server routes API requests to the core analytics.
type Server struct {
	router chi.Router
	cfg    *contract.Config
	mgr    contract.CacheManager
	log    zerolog.Logger
}

// New creates a server for cfg. Every request works on a clone of cfg.
// Without configured origins only pages served from localhost may call the API.
func New(cfg *contract.Config, mgr contract.CacheManager, log zerolog.Logger) *Server {
	s := &Server{router: chi.NewRouter(), cfg: cfg, mgr: mgr, log: log}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = localOrigins
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	s.router.Use(s.requestID, s.requestLog, middleware.Recoverer)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/repos/{owner}", s.handleRepos)
	s.router.Route("/api/repos/{owner}/{repo}", func(r chi.Router) {
		r.Get("/churn", s.handleChurn)
		r.Get("/heatmap", s.handleHeatmap)
		r.Get("/branches", s.handleBranches)
		r.Get("/prs", s.handlePRs)
		r.Get("/report", s.handleReport)
		r.Get("/overview", s.handleOverview)
		r.Get("/compare", s.handleCompare)
		r.Get("/commits/{sha}/diff", s.handleDiff)
		r.Get("/commits/{sha}/secrets", s.handleSecrets)
		r.Get("/commits/{sha}/summary", s.handleSummary)
		r.Get("/contents/*", s.handleGetContent)
		r.Put("/contents/*", s.handlePutContent)
	})
}

// Router returns the HTTP handler of the server.
func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// requestID tags every request with a unique id, reusing a caller supplied one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// requestLog writes one log line per request.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		id, _ := r.Context().Value(requestIDKey{}).(string)
		s.log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

// writeJSON writes data with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError reports err as a {code, message} body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	appErr := fromError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("code", string(appErr.Code)).Msg("Request failed")
	}
	s.writeJSON(w, appErr, appErr.StatusCode)
}
