// Package api hosts the public HTTP server: middleware, health and the
// versioned REST routes.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"spotvibe/internal/infra/api/apiv1"
	"spotvibe/internal/infra/redis"
	"spotvibe/internal/infra/security"
)

type Options struct {
	Port      int
	JWTSecret []byte
	// Limiter throttles the whole surface; nil disables throttling.
	Limiter        *redis.RateLimiter
	RequestTimeout time.Duration
	RateLimit      int
	RateWindow     time.Duration
}

type Server struct {
	srv *http.Server
	log *zerolog.Logger
}

func NewServer(v1 *apiv1.Server, opt Options, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "APIServer").Logger()

	if opt.RequestTimeout <= 0 {
		opt.RequestTimeout = 30 * time.Second
	}
	if opt.RateLimit <= 0 {
		opt.RateLimit = 120
	}
	if opt.RateWindow <= 0 {
		opt.RateWindow = time.Minute
	}

	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(Recover(&l))
	r.Use(RequestLog(&l))
	r.Use(Timeout(opt.RequestTimeout))
	r.Use(RateLimit(opt.Limiter, "api", opt.RateLimit, opt.RateWindow))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	apiv1.RegisterAPIV1(r, v1, security.Auth(opt.JWTSecret))

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", opt.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: &l,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("Starting API server")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("Stopping API server")
		return s.srv.Shutdown(shutCtx)
	}
}
