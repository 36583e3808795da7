package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gardiens/internal/app/commands"
	"gardiens/internal/app/dto"
	"gardiens/internal/app/feed"
	listingapp "gardiens/internal/app/handlers/listings"
	sessionapp "gardiens/internal/app/handlers/sessions"
	"gardiens/internal/app/middleware"
	appoutbox "gardiens/internal/app/outbox"
	"gardiens/internal/app/queries"
	domainsession "gardiens/internal/domain/session"
	"gardiens/internal/infra/broker/kafka"
	"gardiens/internal/infra/config"
	mongodb "gardiens/internal/infra/db/mongo"
	ginserver "gardiens/internal/infra/http/gin"
	"gardiens/internal/infra/obs"
	infraoutbox "gardiens/internal/infra/outbox"
	"gardiens/internal/infra/storage/memory"
	"gardiens/internal/infra/upstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("prod", "info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health, app.handlers)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "upstream", cfg.UpstreamURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	worker   *infraoutbox.Worker
	closers  []func(context.Context) error
}

func (a application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var app application
	app.health = obs.HealthHandlers{Checks: map[string]obs.Check{}}

	source, err := upstream.New(cfg.UpstreamURL, cfg.UpstreamTimeout, logger)
	if err != nil {
		return app, err
	}

	var (
		sessionsRepo domainsession.Repository = memory.NewSessionRepository()
		mongoClient  *mongodb.Client
	)
	if cfg.MongoURI != "" {
		mongoClient, err = mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return app, fmt.Errorf("connect mongo: %w", err)
		}
		app.closers = append(app.closers, mongoClient.Close)
		app.health.Checks["mongo"] = mongoClient.Ping
		sessionsRepo = mongodb.NewSessionRepository(mongoClient.DB)
		logger.Info("sessions stored in mongo", "db", cfg.MongoDB)
	}
	uowFactory := memory.NewFactory(sessionsRepo)

	box, err := buildOutbox(ctx, cfg, logger, mongoClient, &app)
	if err != nil {
		return app, err
	}

	deps := sessionapp.Deps{
		UoWFactory: uowFactory,
		Outbox:     box,
		Encoder:    appoutbox.JSONEventEncoder{},
		Feed: &feed.Feed{
			Source:   source,
			Cooldown: cfg.RefreshCooldown,
			Logger:   logger,
		},
		Location: cfg.Location,
		Logger:   logger,
	}

	commandBus := commands.NewInMemoryBus()
	sessionapp.RegisterCommands(commandBus, deps, source)

	queryBus := queries.NewInMemoryBus()
	sessionapp.RegisterQueries(queryBus, deps)
	queries.Register[listingapp.SearchQuery, dto.SearchResult](queryBus, &listingapp.SearchHandler{
		Source:   source,
		Outbox:   box,
		Encoder:  appoutbox.JSONEventEncoder{},
		Location: cfg.Location,
	})
	queries.Register[listingapp.CareTypesQuery, dto.CareTypes](queryBus, &listingapp.CareTypesHandler{Source: source})

	authorizer := sessionapp.Authorizer{UoWFactory: uowFactory}
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.CommandLogging(logger),
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Authorization(authorizer),
		middleware.Transaction(uowFactory, middleware.LockByKey),
		middleware.OutboxFlush(box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidator{}),
		middleware.QueryAuthorization(authorizer),
	)

	app.handlers = ginserver.Handlers{
		Listing: ginserver.ListingHandler{Queries: queryBusWithMiddleware},
		Session: ginserver.SessionHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
	}
	return app, nil
}

// buildOutbox picks where domain events go: nowhere without brokers, otherwise a
// queue drained to kafka, persisted in mongo when it is available.
func buildOutbox(ctx context.Context, cfg config.Config, logger *slog.Logger, mongoClient *mongodb.Client, app *application) (appoutbox.Outbox, error) {
	if !cfg.KafkaEnabled() {
		logger.Info("kafka disabled, domain events are dropped after commit")
		return memory.NewOutbox(), nil
	}

	var (
		box   appoutbox.Outbox
		queue infraoutbox.Queue
	)
	if mongoClient != nil {
		store, err := infraoutbox.NewMongoStore(ctx, mongoClient.DB)
		if err != nil {
			return nil, fmt.Errorf("prepare outbox collection: %w", err)
		}
		box, queue = store, store
	} else {
		q := memory.NewQueue()
		box, queue = q, q
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig(cfg.KafkaClientID))
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	app.closers = append(app.closers, func(context.Context) error { return producer.Close() })

	app.worker = &infraoutbox.Worker{
		Queue:       queue,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	logger.Info("outbox publishing to kafka", "brokers", cfg.KafkaBrokers, "durable", mongoClient != nil)
	return box, nil
}
