package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seinfeld/internal/api"
	"seinfeld/internal/config"
	"seinfeld/internal/logging"
	"seinfeld/internal/metrics"
	"seinfeld/internal/publisher"
	"seinfeld/internal/scheduler"
	"seinfeld/internal/service"
	"seinfeld/internal/source/geonames"
	"seinfeld/internal/source/github"
	"seinfeld/internal/storage/postgres"
	"seinfeld/internal/transport"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrate := flag.Bool("migrate", true, "apply database migrations on startup")
	once := flag.Bool("once", false, "run a single update pass and exit")
	login := flag.String("login", "", "update a single person and exit")
	flag.Parse()

	logger, _ := logging.Setup(logging.Options{Level: "info"})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.Setup(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if *migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrated")
	}

	var pub service.Publisher
	if cfg.RabbitMQ.IsEnabled() {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Initialize stores
	personStore := postgres.NewPersonStore(db)
	progressStore := postgres.NewProgressStore(db)
	txManager := postgres.NewTransactionManager(db)

	// Initialize sources
	githubTransport := transport.NewHTTPClient(transport.Config{
		Timeout:           cfg.GitHub.Timeout,
		UserAgent:         cfg.GitHub.UserAgent,
		Token:             cfg.GitHub.Token,
		MaxAttempts:       cfg.GitHub.Retry.MaxAttempts,
		InitialBackoff:    cfg.GitHub.Retry.InitialBackoff,
		MaxBackoff:        cfg.GitHub.Retry.MaxBackoff,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Burst:             cfg.GitHub.Burst,
	}, logger)
	githubSource := github.New(github.Config{BaseURL: cfg.GitHub.BaseURL}, githubTransport, logger)

	geonamesTransport := transport.NewHTTPClient(transport.Config{
		Timeout:        cfg.GeoNames.Timeout,
		UserAgent:      cfg.GitHub.UserAgent,
		MaxAttempts:    cfg.GeoNames.Retry.MaxAttempts,
		InitialBackoff: cfg.GeoNames.Retry.InitialBackoff,
		MaxBackoff:     cfg.GeoNames.Retry.MaxBackoff,
	}, logger)
	geonamesSource := geonames.New(geonames.Config{
		BaseURL:  cfg.GeoNames.BaseURL,
		Username: cfg.GeoNames.Username,
	}, geonamesTransport, logger)

	progressService := service.NewProgressService(personStore, progressStore, txManager, logger)
	resolver := service.NewLocationResolver(githubSource, geonamesSource, personStore, logger)
	updater := service.NewUpdater(
		personStore,
		progressService,
		resolver,
		githubSource,
		pub,
		m,
		time.Now,
		logger,
		cfg.Update,
	)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	switch {
	case *login != "":
		runLogin(ctx, updater, *login, logger)
		return
	case *once:
		if _, err := updater.UpdateAll(ctx); err != nil {
			logger.Error("update failed", "error", err)
			os.Exit(1)
		}
		return
	}

	handler := api.NewHandler(
		personStore,
		updater,
		progressService,
		db,
		time.Now,
		logger,
		api.Config{
			LeaderLimit: cfg.HTTP.LeaderLimit,
			CalendarPad: cfg.HTTP.CalendarPad,
		},
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewRouter(handler, m, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting http server", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sched := scheduler.NewScheduler(updater, cfg.Update.Interval, cfg.Update.Timeout, logger)

	logger.Info("starting streak updater",
		"interval", cfg.Update.Interval,
		"batch_size", cfg.Update.BatchSize,
		"publish", pub != nil,
	)

	schedErr := sched.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}

	if schedErr != nil && !errors.Is(schedErr, context.Canceled) {
		logger.Error("scheduler error", "error", schedErr)
		os.Exit(1)
	}
}

func runLogin(ctx context.Context, updater *service.Updater, login string, logger *slog.Logger) {
	person, f, err := updater.RunLogin(ctx, login)
	if err != nil {
		logger.Error("update failed", "login", login, "error", err)
		os.Exit(1)
	}
	if f == nil {
		logger.Info("person disabled", "login", person.Login)
		return
	}
	logger.Info("person updated",
		"login", person.Login,
		"feed", f.String(),
		"current_streak", person.CurrentStreakDays(),
		"longest_streak", person.LongestStreakDays(),
	)
}
