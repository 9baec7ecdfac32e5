package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chanport/channels-bot/internal/bot"
	"github.com/chanport/channels-bot/internal/database"
	"github.com/chanport/channels-bot/internal/gateway"
	"github.com/chanport/channels-bot/internal/health"
	"github.com/chanport/channels-bot/internal/lifecycle"
	"github.com/chanport/channels-bot/internal/payments"
	"github.com/chanport/channels-bot/internal/repository"
	"github.com/chanport/channels-bot/internal/state"
	"github.com/chanport/channels-bot/pkg/config"
	"github.com/chanport/channels-bot/pkg/graceful"
	"github.com/chanport/channels-bot/pkg/logger"
	pkgredis "github.com/chanport/channels-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		FilePath:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Sentry:     cfg.Sentry.Enabled,
	})
	slog.SetDefault(log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			log.Error("failed to initialize sentry", slog.Any("error", err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	log.Info("starting channels bot",
		slog.String("env", cfg.AppEnv),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("http_port", cfg.Server.Port),
	)

	shutdown := lifecycle.NewShutdown(log)
	checker := health.NewChecker(log)

	var (
		stores repository.Stores
		db     *sql.DB
	)
	switch cfg.Storage.Driver {
	case "postgres":
		db, err = sql.Open("postgres", cfg.Storage.DSN())
		if err != nil {
			log.Error("failed to open database", slog.Any("error", err))
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping database", slog.Any("error", err))
			os.Exit(1)
		}
		if err := database.NewMigrator(db, log).ApplyDir(ctx, "migrations"); err != nil {
			log.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}

		stores = repository.NewPostgresStores(db, log)
		checker.AddCheck("database", health.NewDBChecker(db))
		shutdown.Register("database", func(context.Context) error { return db.Close() })
	default:
		stores = repository.NewFileStores(cfg.Storage.Dir, log)
		checker.AddCheck("store", health.NewFileStoreChecker(cfg.Storage.Dir))
	}

	creds, err := gateway.NewCredentialsProvider(cfg.Gateway.CredentialsFile, log)
	if err != nil {
		log.Error("failed to start credentials provider", slog.Any("error", err))
		os.Exit(1)
	}
	shutdown.Register("credentials-watcher", func(context.Context) error { return creds.Close() })

	if !creds.Configured() {
		log.Warn("payment gateway credentials not configured, payments disabled",
			slog.String("credentials_file", cfg.Gateway.CredentialsFile))
	}

	client := gateway.NewCryptomusClient(gateway.Options{
		BaseURL:       cfg.Gateway.BaseURL,
		CreateTimeout: cfg.Gateway.CreateTimeout,
		StatusTimeout: cfg.Gateway.StatusTimeout,
	}, creds, log)

	paymentService := payments.NewService(
		stores.Payments,
		stores.Amount,
		creds,
		client,
		cfg.Gateway.Network,
		log,
	)

	var sessions state.SessionStorage = state.NewMemoryStorage()
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.New(ctx, pkgredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}

		sessions = state.NewRedisStorage(redisClient.Client, log)
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
		shutdown.Register("redis", func(context.Context) error { return redisClient.Close() })
	}
	machine := state.NewMachine(sessions, log)

	b, err := bot.New(*cfg, log, machine, &stores, paymentService)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	reconciler := payments.NewReconciler(paymentService, b.Notifier(), cfg.Payments.ReconcileInterval, log)
	reconciler.Start()
	shutdown.Register("reconciler", reconciler.Stop)

	go b.Start()
	shutdown.Register("telegram-bot", func(context.Context) error {
		b.Stop()
		return nil
	})

	srv := newHTTPServer(cfg, log, checker)
	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error("http server stopped", slog.Any("error", err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("channels bot stopped")
}

func newHTTPServer(cfg *config.Config, log *slog.Logger, checker *health.Checker) *graceful.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: logger.Middleware(mux),
	}

	return graceful.NewServer(log, httpServer, cfg.Server.ShutdownTimeout)
}
