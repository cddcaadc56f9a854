// Package api exposes the dashboard core over a small JSON HTTP surface for
// the browser frontend.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"marketdash/internal/logging"
	"marketdash/internal/session"
)

// Server serves the dashboard API.
type Server struct {
	sess   *session.Session
	logger zerolog.Logger
	mux    *http.ServeMux
}

// NewServer creates a server around a session.
func NewServer(sess *session.Session, logger zerolog.Logger) *Server {
	s := &Server{
		sess:   sess,
		logger: logger.With().Str("component", "api").Logger(),
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/assets", s.handleAssets)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /api/alerts", s.handleListAlerts)
	s.mux.HandleFunc("POST /api/alerts", s.handleCreateAlert)
	s.mux.HandleFunc("DELETE /api/alerts/{id}", s.handleRemoveAlert)
	s.mux.HandleFunc("GET /api/notifications", s.handleListNotifications)
	s.mux.HandleFunc("DELETE /api/notifications/{id}", s.handleDismissNotification)
	s.mux.HandleFunc("POST /api/insight", s.handleInsight)
	s.mux.HandleFunc("PUT /api/settings", s.handleSettings)
}

// Handler returns the root handler with request logging attached.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe blocks serving the API until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info().Str("addr", addr).Msg("API listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithLogger(r.Context(), s.logger)
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.LogAPICall(s.logger, r.Method, r.URL.Path, time.Since(start), nil)
	})
}
