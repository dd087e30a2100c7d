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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"eventhub/internal/audit"
	audithandler "eventhub/internal/audit/handler"
	"eventhub/internal/audit/outbox"
	"eventhub/internal/event"
	eventhandler "eventhub/internal/event/handler"
	eventmetrics "eventhub/internal/event/metrics"
	eventservice "eventhub/internal/event/service"
	"eventhub/internal/feedback"
	feedbackhandler "eventhub/internal/feedback/handler"
	feedbackservice "eventhub/internal/feedback/service"
	"eventhub/internal/identity"
	identityhandler "eventhub/internal/identity/handler"
	identityservice "eventhub/internal/identity/service"
	"eventhub/internal/identity/token"
	"eventhub/internal/platform/config"
	"eventhub/internal/platform/httpserver"
	"eventhub/internal/platform/logger"
	"eventhub/internal/platform/middleware"
	"eventhub/internal/platform/postgres"
	platredis "eventhub/internal/platform/redis"
	"eventhub/internal/registration"
	registrationhandler "eventhub/internal/registration/handler"
	regmetrics "eventhub/internal/registration/metrics"
	registrationservice "eventhub/internal/registration/service"
	"eventhub/pkg/keymutex"
	"eventhub/pkg/platform/tx"
)

const requestTimeout = 30 * time.Second

// stores groups the storage layer so main can swap the whole set between
// Postgres and in-memory implementations.
type stores struct {
	events   event.Store
	regs     registration.Store
	users    identity.Store
	feedback feedback.Store
	audit    audit.Store
	txRunner tx.Runner
	pool     *sql.DB
}

// main wires storage, services, and transport. Business rules live in the
// internal service packages; this file only connects them.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := buildStores(ctx, cfg, log)
	if st.pool != nil {
		defer st.pool.Close()
	}

	// Token revocation. Redis shares the list across instances; the
	// in-memory list suits a single process.
	var revoked token.RevocationList = token.NewInMemoryRevocationList()
	redisClient, err := platredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		revoked = token.NewRedisRevocationList(redisClient)
		log.Info("using redis token revocation list")
	}

	auditPub := audit.NewPublisher(st.audit)
	locks := keymutex.New()

	regSvc := registrationservice.New(st.regs, st.events, locks, st.txRunner, auditPub,
		registrationservice.WithLogger(log),
		registrationservice.WithMetrics(regmetrics.New()),
	)
	eventSvc := eventservice.New(st.events, regSvc, locks, st.txRunner, auditPub,
		eventservice.WithLogger(log),
		eventservice.WithMetrics(eventmetrics.New()),
	)
	eventSvc.SetCascader(regSvc)

	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL)
	verifier := token.NewVerifier(tokens, revoked)
	idSvc := identityservice.New(st.users, tokens, revoked, st.txRunner, auditPub,
		identityservice.WithLogger(log))

	feedbackSvc := feedbackservice.New(st.feedback, st.events, st.regs, st.txRunner, auditPub,
		feedbackservice.WithLogger(log))

	idHandler := identityhandler.New(idSvc, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.ClientMetadata)
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(middleware.ContentTypeJSON)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		idHandler.RegisterPublic(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(verifier, log))
			idHandler.RegisterProtected(r)
			eventhandler.New(eventSvc, log).Register(r)
			registrationhandler.New(regSvc, log).Register(r)
			feedbackhandler.New(feedbackSvc, log).Register(r)
			audithandler.New(st.audit, auditPub, log).Register(r)
		})
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting eventhub", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	startOutboxWorker(ctx, g, cfg, st.pool, log)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// buildStores selects Postgres when configured and falls back to in-memory
// stores so the server runs without external dependencies in development.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) stores {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory storage")
		return stores{
			events:   event.NewInMemoryStore(),
			regs:     registration.NewInMemoryStore(),
			users:    identity.NewInMemoryStore(),
			feedback: feedback.NewInMemoryStore(),
			audit:    audit.NewInMemoryStore(),
			txRunner: tx.NopRunner{},
		}
	}

	pool, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("using postgres storage")
	return stores{
		events:   event.NewPostgres(pool),
		regs:     registration.NewPostgres(pool),
		users:    identity.NewPostgres(pool),
		feedback: feedback.NewPostgres(pool),
		audit:    audit.NewPostgres(pool),
		txRunner: tx.NewSQLRunner(pool),
		pool:     pool,
	}
}

// startOutboxWorker drains audit entries into Kafka. It only runs with
// Postgres storage, where mutations write outbox rows transactionally.
func startOutboxWorker(ctx context.Context, g *errgroup.Group, cfg config.Server, pool *sql.DB, log *slog.Logger) {
	if len(cfg.KafkaBrokers) == 0 || pool == nil {
		return
	}

	client, err := kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBrokers...))
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	if err := outbox.EnsureTopic(ctx, client, cfg.AuditTopic); err != nil {
		log.Error("audit topic creation failed", "error", err)
		os.Exit(1)
	}

	worker := outbox.NewWorker(pool, client, cfg.AuditTopic, log)
	g.Go(func() error {
		defer client.Close()
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	log.Info("outbox worker started", "topic", cfg.AuditTopic)
}
