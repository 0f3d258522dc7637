package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gamebot-panel/internal/infra/security"
	"gamebot-panel/internal/usecase"
)

// SessionManager is the slice of the redis session store the web layer needs.
type SessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, sid string) (string, error)
	Delete(ctx context.Context, sid string) error
}

// LoginLimiter throttles authentication attempts.
type LoginLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Options struct {
	LoginAttempts int
	LoginWindow   time.Duration
	SessionTTL    time.Duration
	SecureCookies bool
}

type Server struct {
	accountUC usecase.AccountUseCase
	licUC     usecase.LicensingUseCase
	botUC     usecase.BotUseCase
	statsUC   usecase.StatsUseCase
	auditUC   usecase.AuditUseCase
	sessions  SessionManager
	limiter   LoginLimiter
	codec     *security.TokenCodec
	opts      Options
	log       *zerolog.Logger
}

func NewServer(
	accountUC usecase.AccountUseCase,
	licUC usecase.LicensingUseCase,
	botUC usecase.BotUseCase,
	statsUC usecase.StatsUseCase,
	auditUC usecase.AuditUseCase,
	sessions SessionManager,
	limiter LoginLimiter,
	codec *security.TokenCodec,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "Web").Logger()
	return &Server{
		accountUC: accountUC,
		licUC:     licUC,
		botUC:     botUC,
		statsUC:   statsUC,
		auditUC:   auditUC,
		sessions:  sessions,
		limiter:   limiter,
		codec:     codec,
		opts:      opts,
		log:       &l,
	}
}

// Routes builds the full router. Gating is explicit middleware per group:
// session first, then the developer or activation guard where required.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireSession)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)
			r.Post("/activate", s.handleActivate)

			r.Group(func(r chi.Router) {
				r.Use(s.RequireActivation)

				r.Get("/dashboard", s.handleDashboard)
				r.Get("/bots", s.handleListBots)
				r.Post("/bots", s.handleAddBot)
				r.Delete("/bots/{id}", s.handleDeleteBot)
			})

			r.Route("/dev", func(r chi.Router) {
				r.Use(s.RequireDeveloper)

				r.Get("/stats", s.handleDevStats)
				r.Get("/codes", s.handleListCodes)
				r.Post("/codes", s.handleIssueCode)
				r.Delete("/codes/{id}", s.handleDeactivateCode)
				r.Get("/users", s.handleListUsers)
				r.Get("/logs", s.handleLogs)
			})
		})
	})

	return r
}
