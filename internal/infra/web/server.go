package web

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"activation-code-service/internal/domain/ports/repository"
	"activation-code-service/internal/usecase"
)

// Limiter gates requests per client key. Satisfied by the redis rate limiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	redeemUC usecase.RedeemUseCase
	statsUC  usecase.StatsUseCase
	codes    repository.ActivationCodeRepository
	log      *zerolog.Logger

	limiter    Limiter // nil disables rate limiting
	rateLimit  int
	rateWindow time.Duration
	reqTimeout time.Duration
}

func NewServer(
	redeemUC usecase.RedeemUseCase,
	statsUC usecase.StatsUseCase,
	codes repository.ActivationCodeRepository,
	logger *zerolog.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		redeemUC:   redeemUC,
		statsUC:    statsUC,
		codes:      codes,
		log:        logger,
		reqTimeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type Option func(*Server)

// WithRateLimiter enables per-client rate limiting on the activate route.
func WithRateLimiter(l Limiter, limit int, window time.Duration) Option {
	return func(s *Server) {
		s.limiter = l
		s.rateLimit = limit
		s.rateWindow = window
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.reqTimeout = d }
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(CORS())
	r.Use(Timeout(s.reqTimeout))

	r.MethodNotAllowed(methodNotAllowedHandler)

	activate := s.activateHandler()
	if s.limiter != nil && s.rateLimit > 0 {
		activate = s.rateLimitMiddleware(activate)
	}
	r.Get("/api/activate", activate)
	r.Post("/api/activate", activate)
	r.Get("/api/status", s.statusHandler())
	r.Get("/health", s.healthHandler())
	r.Method("GET", "/metrics", promhttp.Handler())

	return r
}
