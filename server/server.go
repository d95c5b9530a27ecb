// Package server exposes the chat pipeline over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DachengChen/paiChat/db"
	"github.com/DachengChen/paiChat/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wires the chi router around the session manager.
type Server struct {
	sessions *session.Manager
	schema   *db.SchemaCatalog
	log      *slog.Logger
	router   chi.Router
}

// New builds the HTTP surface.
func New(sessions *session.Manager, schema *db.SchemaCatalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		sessions: sessions,
		schema:   schema,
		log:      logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/schema", s.handleSchema)
	})
	s.router = r
	return s
}

// ServeHTTP makes Server a http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("server: listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
