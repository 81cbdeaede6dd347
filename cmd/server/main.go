// Command server wires the votegate services together and runs the HTTP
// server. Business logic lives in the internal service packages; main only
// selects store backends, builds the dependency graph and manages lifecycle.
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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"votegate/internal/admin"
	adminHandler "votegate/internal/admin/handler"
	"votegate/internal/audit"
	auditHandler "votegate/internal/audit/handler"
	"votegate/internal/ballot"
	ballotHandler "votegate/internal/ballot/handler"
	"votegate/internal/election"
	electionHandler "votegate/internal/election/handler"
	httpapi "votegate/internal/http"
	"votegate/internal/identity"
	identityHandler "votegate/internal/identity/handler"
	"votegate/internal/platform/config"
	"votegate/internal/platform/httpserver"
	"votegate/internal/platform/logger"
	"votegate/internal/platform/metrics"
	"votegate/internal/platform/postgres"
	platformRedis "votegate/internal/platform/redis"
	"votegate/internal/registration"
	registrationHandler "votegate/internal/registration/handler"
	"votegate/internal/tally"
	tallyHandler "votegate/internal/tally/handler"
	id "votegate/pkg/domain"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx := context.Background()

	// Store backends: postgres when configured, in-memory otherwise.
	var (
		electionStore     election.Store
		registrationStore registration.Store
		voteStore         ballot.Store
		auditStore        audit.Store
		db                *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		electionStore = election.NewPostgresStore(db)
		registrationStore = registration.NewPostgresStore(db)
		voteStore = ballot.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		electionStore = election.NewInMemoryStore()
		registrationStore = registration.NewInMemoryStore()
		voteStore = ballot.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	auditOpts := []audit.Option{}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return err
		}
		auditOpts = append(auditOpts, audit.WithSink(sink))
		log.Info("audit events forwarded to kafka", "topic", cfg.AuditTopic)
	}
	auditLog := audit.NewPublisher(auditStore, log, auditOpts...)
	defer auditLog.Close()

	registry, err := identity.NewFileRegistry(cfg.RegistryPath)
	if err != nil {
		return err
	}
	log.Info("identity registry loaded", "registrants", registry.Size(), "path", cfg.RegistryPath)

	sealer, err := ballot.NewSealer(cfg.BallotMasterKey)
	if err != nil {
		return err
	}

	adminSvc, err := admin.NewService(cfg.Admin, log, admin.WithAuditPublisher(auditLog))
	if err != nil {
		return err
	}

	ballotOpts := []ballot.Option{
		ballot.WithAuditPublisher(auditLog),
		ballot.WithMetrics(ballot.NewMetrics(prometheus.DefaultRegisterer)),
	}
	redisClient, err := platformRedis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		ballotOpts = append(ballotOpts, ballot.WithGuard(ballot.NewRedisGuard(redisClient, log)))
		log.Info("duplicate-vote reservation enabled")
	}

	// The election directory and the ledgers reference each other (cascade
	// deletes one way, window checks the other), so construction happens in
	// dependency order with the directory last.
	var electionSvc *election.Service

	finder := &electionFinder{resolve: func() *election.Service { return electionSvc }}

	ballotSvc, err := ballot.NewService(voteStore, finder, sealer, log, ballotOpts...)
	if err != nil {
		return err
	}

	registrationSvc, err := registration.NewService(registrationStore, finder, log,
		registration.WithAuditPublisher(auditLog))
	if err != nil {
		return err
	}

	electionSvc, err = election.NewService(electionStore, registrationSvc, ballotSvc, log,
		election.WithAuditPublisher(auditLog))
	if err != nil {
		return err
	}

	identitySvc, err := identity.NewService(
		registry,
		identity.NewHistogramComparator(),
		identity.NewLedgerHistory(registrationSvc, ballotSvc),
		log,
		identity.WithThreshold(cfg.FaceMatchThreshold),
		identity.WithAuditPublisher(auditLog),
		identity.WithMetrics(identity.NewMetrics(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		return err
	}

	tallySvc, err := tally.NewService(electionSvc, voteStore, log, tally.WithAuditPublisher(auditLog))
	if err != nil {
		return err
	}

	router := httpapi.New(httpapi.Handlers{
		Admin:        adminHandler.New(adminSvc, log),
		Election:     electionHandler.New(electionSvc, log),
		Identity:     identityHandler.New(identitySvc, log),
		Registration: registrationHandler.New(registrationSvc, registry, log),
		Ballot:       ballotHandler.New(ballotSvc, log),
		Tally:        tallyHandler.New(tallySvc, log),
		Audit:        auditHandler.New(auditLog, log),
	}, adminSvc, metrics.New(), log, healthHandler(db, redisClient))

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting votegate", "addr", cfg.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// electionFinder defers resolution of the election service so the ledgers
// can be constructed before the directory that cascades into them.
type electionFinder struct {
	resolve func() *election.Service
}

func (f *electionFinder) Get(ctx context.Context, electionID id.ElectionID) (election.Election, error) {
	return f.resolve().Get(ctx, electionID)
}

func healthHandler(db *sql.DB, redisClient *platformRedis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
