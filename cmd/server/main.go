// @title           Feed Gateway API
// @version         1.0
// @description     Social feed gateway: accounts, posts and realtime change events.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "github.com/socialfeed/gateway/docs"
	"github.com/socialfeed/gateway/internal/api"
	"github.com/socialfeed/gateway/internal/api/handler"
	"github.com/socialfeed/gateway/internal/core/ports"
	"github.com/socialfeed/gateway/internal/core/service"
	"github.com/socialfeed/gateway/internal/infrastructure/db/memory"
	mongodb "github.com/socialfeed/gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/socialfeed/gateway/internal/infrastructure/db/redis"
	"github.com/socialfeed/gateway/internal/infrastructure/queue"
	"github.com/socialfeed/gateway/internal/infrastructure/realtime"
	"github.com/socialfeed/gateway/internal/infrastructure/storage"
	"github.com/socialfeed/gateway/internal/infrastructure/token"
	"github.com/socialfeed/gateway/internal/pkg/config"
	"github.com/socialfeed/gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// persistence is the opened store plus what is needed to probe and close it.
type persistence struct {
	identities ports.IdentityRepository
	posts      ports.PostRepository
	idem       ports.IdempotencyStore
	checks     map[string]handler.Check
	close      func(context.Context) error
}

func run() error {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:    cfg.LogLevel,
		Pretty:   cfg.IsDevelopment(),
		Service:  "feed-gateway",
		Instance: instanceName(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		store.idem = redisdb.NewIdempotencyStore(rdb, cfg.Feed.IdempotencyTTL)
		store.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	images, err := storage.NewDiskStore(cfg.Feed.ImageDir)
	if err != nil {
		return err
	}

	// --- Change notification ---
	notifyLog := logger.Component("notifier")
	dispatcher := queue.NewDispatcher(cfg.Notifier.Workers, cfg.Notifier.Buffer, notifyLog)
	hub := realtime.NewHub(cfg.Feed.CORSOrigins, logger.Component("realtime"))
	var fanout realtime.Broadcaster = hub
	var bus *redisdb.EventBus
	if rdb != nil {
		bus = redisdb.NewEventBus(rdb, cfg.Redis.Channel, hub, logger.Component("event_bus"))
		fanout = bus
	}
	publisher := realtime.NewPublisher(dispatcher, fanout, notifyLog)
	janitor := storage.NewJanitor(images, dispatcher, logger.Component("assets"))

	// --- Operations ---
	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(store.identities, tokens, logger.Component("auth"))
	feedService := service.NewFeedService(store.posts, store.identities, publisher, janitor, store.idem, cfg.Feed.PageSize, logger.Component("feed"))
	ops := service.NewOperations(authService, feedService)
	registry, err := ops.Registry()
	if err != nil {
		return fmt.Errorf("register operations: %w", err)
	}

	e := api.NewRouter(api.Dependencies{
		Operations:  ops,
		Registry:    registry,
		Verifier:    tokens,
		Images:      images,
		Cleaner:     janitor,
		Realtime:    hub,
		ImageDir:    images.Dir(),
		CORSOrigins: cfg.Feed.CORSOrigins,
		Checks:      store.checks,
		Log:         logger.Component("http"),
	})

	// Workers outlive the request context so accepted jobs drain at shutdown.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("server started")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if bus != nil {
		g.Go(func() error {
			return bus.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := e.Shutdown(shutdownCtx)
		hub.Close()
		stopWorkers()
		dispatcher.Wait()
		return err
	})

	return g.Wait()
}

// instanceName identifies this process in logs shared across gateways.
func instanceName() string {
	host, err := os.Hostname()
	if err != nil {
		return fmt.Sprintf("pid-%d", os.Getpid())
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*persistence, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		mem := memory.NewStore()
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return &persistence{
			identities: mem,
			posts:      mem.Posts(),
			idem:       mem,
			checks:     map[string]handler.Check{},
			close:      func(context.Context) error { return nil },
		}, nil

	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		identities := mongodb.NewIdentityRepository(db)
		posts := mongodb.NewPostRepository(db)
		if err := identities.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure identity indexes: %w", err)
		}
		if err := posts.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure post indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

		checks := map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
		}
		return &persistence{
			identities: identities,
			posts:      posts,
			idem:       memory.NewStore(), // replaced by the Redis store when configured
			checks:     checks,
			close:      client.Disconnect,
		}, nil
	}
}
