package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamebot-panel/internal/config"
	pg "gamebot-panel/internal/infra/db/postgres"
	"gamebot-panel/internal/infra/logging"
	"gamebot-panel/internal/infra/metrics"
	red "gamebot-panel/internal/infra/redis"
	"gamebot-panel/internal/infra/sched"
	"gamebot-panel/internal/infra/security"
	"gamebot-panel/internal/infra/web"
	"gamebot-panel/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	sessions := red.NewSessionStore(redisClient, cfg.Auth.SessionTTL)
	limiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	codeRepo := pg.NewActivationCodeRepo(pool)
	activationRepo := pg.NewActivationRepo(pool)
	botRepo := pg.NewBotAccountRepo(pool)
	connLogRepo := pg.NewConnectionLogRepo(pool)
	sysLogRepo := pg.NewSystemLogRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	accountUC := usecase.NewAccountUseCase(userRepo, connLogRepo, sysLogRepo, tm, logger)
	licUC := usecase.NewLicensingUseCase(codeRepo, activationRepo, connLogRepo, sysLogRepo, tm, logger)
	botUC := usecase.NewBotUseCase(botRepo, connLogRepo, tm, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, codeRepo, activationRepo, botRepo, logger)
	auditUC := usecase.NewAuditUseCase(connLogRepo, sysLogRepo)

	// ---- Bootstrap developer ----
	if cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword != "" {
		if err := accountUC.EnsureDeveloper(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			logger.Fatal().Err(err).Msg("bootstrap developer")
		}
	} else {
		logger.Warn().Msg("auth.admin_username/admin_password not set; no developer account bootstrapped")
	}

	// ---- Expiry worker ----
	worker := sched.NewExpiryWorker(cfg.Sweep.Interval, licUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- HTTP server ----
	codec := security.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	srv := web.NewServer(accountUC, licUC, botUC, statsUC, auditUC, sessions, limiter, codec, web.Options{
		LoginAttempts: cfg.Auth.LoginAttempts,
		LoginWindow:   cfg.Auth.LoginWindow,
		SessionTTL:    cfg.Auth.SessionTTL,
		SecureCookies: cfg.Auth.SecureCookies && !cfg.Runtime.Dev,
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
