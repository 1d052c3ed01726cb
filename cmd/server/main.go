// Command server runs the medcommons coordination service: participant
// registry, encrypted record ledger, research query coordinator, and
// governance, behind one HTTP surface.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"medcommons/internal/attest"
	"medcommons/internal/governance"
	governancehandler "medcommons/internal/governance/handler"
	"medcommons/internal/jwttoken"
	"medcommons/internal/ledger"
	ledgerhandler "medcommons/internal/ledger/handler"
	"medcommons/internal/platform/config"
	"medcommons/internal/platform/httpserver"
	"medcommons/internal/platform/logger"
	"medcommons/internal/platform/metrics"
	platformredis "medcommons/internal/platform/redis"
	"medcommons/internal/query"
	"medcommons/internal/query/compute"
	queryhandler "medcommons/internal/query/handler"
	"medcommons/internal/registry"
	registryhandler "medcommons/internal/registry/handler"
	httptransport "medcommons/internal/transport/http"
	"medcommons/pkg/platform/events"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Backing stores: Postgres and Redis when configured, in-memory
	// otherwise.
	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Notification pipeline: bus -> worker -> sinks.
	bus := events.NewBus(1024, log)
	eventStore := events.NewInMemoryStore()
	sinks := []events.Sink{eventStore}
	var reader httptransport.EventReader = eventStore
	if db != nil {
		pgStore := events.NewPostgresStore(db)
		sinks = append(sinks, pgStore)
		reader = pgStore
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.EventsTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}
	worker := events.NewWorker(bus.Inbox(), log, sinks...)

	// Domain services.
	var registryStore registry.Store = registry.NewInMemoryStore()
	var ledgerStore ledger.Store = ledger.NewInMemoryStore()
	var governanceStore governance.Store = governance.NewInMemoryStore()
	if db != nil {
		registryStore = registry.NewPostgresStore(db)
		ledgerStore = ledger.NewPostgresStore(db)
		governanceStore = governance.NewPostgresStore(db)
	}

	registryService := registry.NewService(registryStore,
		registry.WithLogger(log), registry.WithPublisher(bus), registry.WithMetrics(m))
	ledgerService := ledger.NewService(ledgerStore, registryService,
		ledger.WithLogger(log), ledger.WithPublisher(bus), ledger.WithMetrics(m))
	governanceService := governance.NewService(governanceStore, registryService,
		governance.WithLogger(log), governance.WithPublisher(bus), governance.WithMetrics(m))

	var pendingStore query.PendingStore = query.NewInMemoryPendingStore()
	var cleartextStore query.CleartextStore = query.NewInMemoryCleartextStore()
	if redisClient != nil {
		pendingStore = query.NewRedisPendingStore(redisClient, 0)
		cleartextStore = query.NewRedisCleartextStore(redisClient, config.DecryptedResultTTL)
	}

	if cfg.VerifierPublicKey == "" {
		return errors.New("MEDCOMMONS_VERIFIER_PUBLIC_KEY is required")
	}
	verifier, err := attest.NewEd25519Verifier(cfg.VerifierPublicKey)
	if err != nil {
		return err
	}
	gateway := compute.New(cfg.GatewayURL, cfg.CallbackBaseURL, compute.WithLogger(log))

	queryOpts := []query.Option{
		query.WithLogger(log), query.WithPublisher(bus), query.WithMetrics(m),
	}
	if cfg.RequireApproval {
		queryOpts = append(queryOpts, query.WithApprovalGate(governanceService))
	}
	queryService := query.NewService(
		query.NewInMemoryQueryStore(),
		pendingStore,
		cleartextStore,
		registryService,
		ledgerService,
		gateway,
		gateway,
		verifier,
		queryOpts...,
	)

	// Transport.
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "medcommons", "medcommons")
	qh := queryhandler.New(queryService, log)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        m,
		TokenValidator: jwttoken.NewJWTServiceAdapter(jwtService),
		Registry:       registryhandler.New(registryService, log),
		Ledger:         ledgerhandler.New(ledgerService, log),
		Query:          qh,
		Governance:     governancehandler.New(governanceService, log),
		Notifications:  httptransport.NewNotificationsHandler(reader, log),
		Callbacks:      qh,
		Health: func(r chi.Router) {
			r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
				if db != nil {
					if err := db.PingContext(req.Context()); err != nil {
						http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
						return
					}
				}
				if redisClient != nil {
					if err := redisClient.Health(req.Context()); err != nil {
						http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
						return
					}
				}
				w.WriteHeader(http.StatusOK)
			})
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return worker.Run(ctx)
	})
	group.Go(func() error {
		log.Info("starting medcommons server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
