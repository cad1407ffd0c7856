// File: cmd/app/main.go
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

	"activation-code-service/internal/config"
	pg "activation-code-service/internal/infra/db/postgres"
	"activation-code-service/internal/infra/logging"
	"activation-code-service/internal/infra/metrics"
	red "activation-code-service/internal/infra/redis"
	"activation-code-service/internal/infra/web"
	"activation-code-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("ensure schema")
	}

	// ---- Repositories & use cases ----
	codeRepo := pg.NewActivationCodeRepo(pool)
	redeemUC := usecase.NewRedeemUseCase(codeRepo, logger)
	statsUC := usecase.NewStatsUseCase(codeRepo, logger)

	// ---- Metrics ----
	metrics.MustRegister()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Optional Redis rate limiting ----
	opts := []web.Option{web.WithRequestTimeout(cfg.Server.RequestTimeout)}
	if cfg.Redis.URL != "" && cfg.RateLimit.Limit > 0 {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect")
		}
		defer redisClient.Close()
		limiter := red.NewRateLimiter(redisClient)
		opts = append(opts, web.WithRateLimiter(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window))
		logger.Info().Int("limit", cfg.RateLimit.Limit).Dur("window", cfg.RateLimit.Window).Msg("rate limiting enabled")
	}

	// ---- HTTP server ----
	srv := web.NewServer(redeemUC, statsUC, codeRepo, logger, opts...)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
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
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
