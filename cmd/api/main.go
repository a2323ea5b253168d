package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"autodialer/internal/audit"
	"autodialer/internal/calls"
	"autodialer/internal/campaign"
	"autodialer/internal/config"
	"autodialer/internal/dialer"
	"autodialer/internal/httpapi"
	"autodialer/internal/metrics"
	"autodialer/internal/reporting"
	"autodialer/internal/throttle"
	"autodialer/pkg/logger"
	"autodialer/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
	}

	var (
		m        *metrics.Metrics
		recorder httpapi.Recorder
		metricsH http.Handler
	)
	opts := []dialer.Option{dialer.WithLogger(log)}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		recorder = m
		metricsH = m.Handler()
		opts = append(opts, dialer.WithObserver(m))
	}

	history := calls.NewHistory()
	opts = append(opts, dialer.WithHistory(history))

	var rng *rand.Rand
	if cfg.Dialer.RandomSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.Dialer.RandomSeed))
	}
	session := dialer.NewSession(
		dialer.NewWeightedOutcomes(rng, nil),
		dialer.Config{MaxRedials: cfg.Dialer.MaxRedials, BatchSize: cfg.Dialer.BatchSize},
		opts...,
	)

	h := httpapi.Handlers{
		Campaign:       campaign.New(),
		Dialer:         session,
		Reports:        reporting.NewService(reporting.NewHistoryRepo(history)),
		Activity:       audit.NewService(audit.NewMemoryRepo()),
		Quota:          throttle.New(cfg.Dialer.MaxCallsPerHour, rdb),
		Metrics:        recorder,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.MaxMultipartMemory = cfg.Upload.MaxBytes
	registerRoutes(r, h, metricsH)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening",
			"addr", srv.Addr,
			"env", cfg.App.Env,
			"redis_quota", cfg.RedisEnabled(),
			"max_calls_per_hour", cfg.Dialer.MaxCallsPerHour,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
