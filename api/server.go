package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openlems/lems-backend/api/handlers"
	"github.com/openlems/lems-backend/pkg/jwt"
)

// Server is the HTTP boundary: command endpoints feed the per-division
// serializer, snapshot endpoints read the record store directly.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer assembles the chi router. All division-scoped routes sit
// behind the bearer-token middleware; /healthz stays open for probes.
func NewServer(
	listenAddress string,
	jwtService jwt.Service,
	field *handlers.FieldHandler,
	judging *handlers.JudgingHandler,
	scoring *handlers.ScoringHandler,
	snapshot *handlers.SnapshotHandler,
	logger *slog.Logger,
) *Server {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(handlers.AuthMiddleware(jwtService))

		field.Routes(r)
		judging.Routes(r)
		scoring.Routes(r)
		snapshot.Routes(r)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              listenAddress,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("API server listening", slog.String("address", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
