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

	"golang.org/x/sync/errgroup"

	"custodian/internal/demo/fixtures"
	"custodian/internal/demo/handler"
	demometrics "custodian/internal/demo/metrics"
	"custodian/internal/demo/models"
	"custodian/internal/demo/ports"
	"custodian/internal/demo/publisher"
	"custodian/internal/demo/service"
	"custodian/internal/demo/status"
	runstore "custodian/internal/demo/store/run"
	statusstore "custodian/internal/demo/store/status"
	httpapi "custodian/internal/http"
	"custodian/internal/identity"
	"custodian/internal/ledger/fabric"
	"custodian/internal/ledger/memory"
	"custodian/internal/platform/config"
	"custodian/internal/platform/httpserver"
	"custodian/internal/platform/logger"
	"custodian/internal/platform/metrics"
	"custodian/internal/platform/postgres"
	"custodian/internal/platform/redis"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "custodian: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := fixtures.Load(cfg.Demo.FixturesPath)
	if err != nil {
		return err
	}
	directory, err := identity.Load(cfg.Demo.IdentitiesPath)
	if err != nil {
		return err
	}
	authority, err := directory.Resolve(cfg.Demo.Authority)
	if err != nil {
		return fmt.Errorf("demo authority: %w", err)
	}

	checks := map[string]httpapi.HealthCheck{}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
	}

	statuses, err := newStatusStore(cfg, redisClient)
	if err != nil {
		return err
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	var runs ports.RunStore = runstore.NewInMemoryStore()
	if db != nil {
		defer db.Close()
		pg := runstore.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		runs = pg
		checks["postgres"] = db.PingContext
	}

	ledger, stream, err := newLedger(cfg.Ledger, authority, log)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithAuthority(cfg.Demo.Authority),
		service.WithMetrics(demometrics.New(nil)),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := publisher.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.StatusTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.EnsureTopic(ctx, 1, 1); err != nil {
			log.Warn("kafka status topic not ensured", "topic", cfg.Kafka.StatusTopic, "error", err)
		}
		opts = append(opts, service.WithSinks(sink))
	}

	svc, err := service.New(service.Deps{
		Scenarios:   catalog,
		Ledger:      ledger,
		Stream:      stream,
		Identities:  directory,
		StatusStore: statuses,
		Runs:        runs,
		Logger:      log,
	}, opts...)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:   log,
		Metrics:  metrics.New(nil),
		Checks:   checks,
		Handlers: []httpapi.Registrar{handler.New(svc, log)},
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting custodian",
			"addr", cfg.Server.Addr,
			"ledger", cfg.Ledger.Backend,
			"status_backend", cfg.Demo.StatusBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newStatusStore(cfg config.Config, client *redis.Client) (status.Store, error) {
	switch cfg.Demo.StatusBackend {
	case config.StatusBackendRedis:
		if client == nil {
			return nil, errors.New("redis status backend needs REDIS_URL")
		}
		return statusstore.NewRedisStore(client.Client), nil
	case config.StatusBackendMemory:
		return statusstore.NewInMemoryStore(), nil
	default:
		return statusstore.NewFileStore(cfg.Demo.StatusPath)
	}
}

func newLedger(cfg config.Ledger, authority models.Identity, log *slog.Logger) (ports.Ledger, ports.EventStream, error) {
	if cfg.Backend != config.LedgerBackendFabric {
		l := memory.New()
		return l, l, nil
	}
	client, err := fabric.New(fabric.Config{
		ConfigPath:     cfg.ConfigPath,
		Channel:        cfg.Channel,
		Contract:       cfg.Contract,
		WalletPath:     cfg.WalletPath,
		EventFilter:    cfg.EventFilter,
		CreateFunction: cfg.CreateFunction,
		Authority:      authority,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}
