package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quadratic01/portfolio-api/config"
	httpapi "github.com/quadratic01/portfolio-api/internal/api/http"
	"github.com/quadratic01/portfolio-api/internal/api/http/middleware"
	"github.com/quadratic01/portfolio-api/internal/bootstrap"
	contactservice "github.com/quadratic01/portfolio-api/internal/contacts/service"
	"github.com/quadratic01/portfolio-api/internal/logging"
	"github.com/quadratic01/portfolio-api/internal/metrics"
	"github.com/quadratic01/portfolio-api/internal/notify"
	cronjob "github.com/quadratic01/portfolio-api/internal/projects/cron"
	"github.com/quadratic01/portfolio-api/internal/projects/github"
	projectservice "github.com/quadratic01/portfolio-api/internal/projects/service"
	"github.com/quadratic01/portfolio-api/internal/storage/memory"
)

const serviceName = "portfolio-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.New(logging.Options{
		Level:   cfg.App.LogLevel,
		Format:  cfg.App.LogFormat,
		Service: serviceName,
		Version: cfg.App.Version,
	})
	log.Logger = logger

	bootstrap.SetGinMode(cfg.App.Environment)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("stopped")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	policy, err := projectservice.ParseEmptyResultPolicy(cfg.Sync.EmptyPolicy)
	if err != nil {
		return fmt.Errorf("invalid sync policy: %w", err)
	}

	m := metrics.New()
	store := memory.New()

	gh := github.NewClient(github.Options{
		BaseURL:  cfg.GitHub.APIURL,
		Token:    cfg.GitHub.Token,
		Timeout:  cfg.GitHub.Timeout,
		Recorder: m,
	})

	syncer := projectservice.NewSyncService(store, gh, projectservice.SyncOptions{
		Account:      cfg.GitHub.Username,
		EmptyPolicy:  policy,
		CycleTimeout: 2 * cfg.GitHub.Timeout,
		Recorder:     m,
		Logger:       logging.Component(logger, "project-sync"),
	})

	var redisClient *redis.Client
	var redisPinger httpapi.Pinger
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()
		redisPinger = httpapi.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	notifier := buildNotifier(cfg, redisClient, logging.Component(logger, "notify"))
	intake := contactservice.NewContactService(store, notifier, m, logging.Component(logger, "contacts"))

	if cfg.Security.AdminToken == "" {
		logger.Warn().Msg("ADMIN_TOKEN is not set, GET /api/contacts is publicly readable")
	}

	limiter := middleware.NewIPRateLimiter(cfg.Security.ContactRatePerMin, cfg.Security.ContactRateBurst, 10*time.Minute)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Logger:      logger,
		Store:       store,
		Redis:       redisPinger,
		Metrics:     m,
		Projects: bootstrap.ProjectsDeps{
			Syncer:   syncer,
			Profiles: gh,
			Live:     cfg.Sync.Live,
		},
		Contacts: bootstrap.ContactsDeps{
			Intake:  intake,
			Limiter: limiter,
		},
		AllowedOrigins: cfg.Security.CORSAllowedOrigins,
		AdminToken:     cfg.Security.AdminToken,
		TrustedProxies: cfg.Server.TrustedProxies,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var scheduler *cronjob.Scheduler
	if cfg.Sync.Cron != "" {
		scheduler = cronjob.NewScheduler(cfg.Sync.Cron, syncer, 2*cfg.GitHub.Timeout, logging.Component(logger, "scheduler"))
		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("start sync scheduler: %w", err)
		}
	}

	go sweepLimiter(ctx, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.App.Environment).
			Str("github_user", cfg.GitHub.Username).
			Bool("projects_live", cfg.Sync.Live).
			Str("sync_empty_policy", string(syncer.Policy())).
			Str("sync_cron", cfg.Sync.Cron).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-serveErr:
		runErr = fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}
	return runErr
}

func buildNotifier(cfg *config.Config, redisClient *redis.Client, logger zerolog.Logger) notify.Notifier {
	var sinks notify.Multi

	if cfg.Mail.Enabled() {
		mailer, err := notify.NewSMTPMailer(notify.MailerConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			To:       cfg.Mail.To,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("smtp notifications disabled")
		} else {
			sinks = append(sinks, mailer)
			logger.Info().Str("host", cfg.Mail.Host).Msg("smtp notifications enabled")
		}
	}

	if redisClient != nil {
		sinks = append(sinks, notify.NewRedisPublisher(redisClient, notify.DefaultChannel))
		logger.Info().Str("channel", notify.DefaultChannel).Msg("redis notifications enabled")
	}

	if len(sinks) == 0 {
		return notify.Noop{Logger: logger}
	}
	return sinks
}

func sweepLimiter(ctx context.Context, l *middleware.IPRateLimiter) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}
