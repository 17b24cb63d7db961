package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	jwttoken "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/jwt_token"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/pipeline"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/platform/config"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/platform/httpserver"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/platform/logger"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/platform/metrics"
	platformredis "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/platform/redis"
	httptransport "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/transport/http"
	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit/recorder"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit/store/memory"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit/store/postgres"
	redisstore "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit/store/redis"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit/store/sqlite"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/fieldcrypt"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/metadata"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/ratelimit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor/alerting"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/validation"
)

const (
	recentAlertCapacity = 200
	sweepInterval       = time.Minute
	shutdownTimeout     = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the pkg/platform packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.SlogLevel(), cfg.LogFormat)
	slog.SetDefault(log)
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, closeStore, err := openAuditStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := recorder.New(store,
		recorder.WithLogger(log),
		recorder.WithMetrics(recorder.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	alerts := alerting.NewRecentBuffer(recentAlertCapacity)
	dispatchers, closeDispatchers, err := buildDispatchers(ctx, cfg, log, alerts)
	if err != nil {
		return err
	}
	defer closeDispatchers()

	mon, err := monitor.New(rec, dispatchers,
		monitor.WithLogger(log),
		monitor.WithMetrics(monitor.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	fields := fieldcrypt.NewFieldSet(slices.Concat(fieldcrypt.DefaultSensitiveFields, cfg.SensitiveFields)...)
	crypt, err := fieldcrypt.New(cfg.EncryptionKey,
		fieldcrypt.WithLogger(log),
		fieldcrypt.WithMetrics(fieldcrypt.NewMetrics(reg)),
		fieldcrypt.WithFieldSet(fields),
	)
	if err != nil {
		return err
	}

	validationMetrics := validation.NewMetrics(reg)
	pipe, err := pipeline.New(crypt, rec,
		pipeline.WithLogger(log),
		pipeline.WithValidationMetrics(validationMetrics),
	)
	if err != nil {
		return err
	}

	trusted, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:            log,
		Gatherer:          reg,
		HTTPMetrics:       metrics.New(reg),
		ValidationMetrics: validationMetrics,
		Limiter:           limiter,
		JWT:               jwttoken.NewVerifier(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience),
		Recorder:          rec,
		Monitor:           mon,
		Alerts:            alerts,
		Pipeline:          pipe,
		TrustedProxies:    trusted,
		AdminToken:        cfg.AdminAPIToken,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting storefront trust service",
			"addr", cfg.Addr,
			"env", cfg.Env,
			"audit_store", cfg.AuditStore,
			"sensitive_fields", fields.Names(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		limiter.RunSweeper(gctx, sweepInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openAuditStore builds the configured audit store. The returned close func
// is always safe to call.
func openAuditStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (audit.Store, func(), error) {
	noop := func() {}
	switch cfg.AuditStore {
	case config.AuditStorePostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("ping postgres: %w", err)
		}
		store := postgres.New(db, postgres.WithTable(cfg.AuditTable))
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return store, func() { _ = db.Close() }, nil

	case config.AuditStoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil

	case config.AuditStoreRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		store := redisstore.New(client, redisstore.WithStream(cfg.AuditStream))
		return store, func() { _ = client.Close() }, nil

	default:
		log.Warn("using in-memory audit store")
		return memory.New(), noop, nil
	}
}

// buildDispatchers assembles the alert fan-out: console log and the recent
// buffer always, plus webhook and Kafka when configured.
func buildDispatchers(ctx context.Context, cfg *config.Config, log *slog.Logger, recent *alerting.RecentBuffer) (alerting.Fanout, func(), error) {
	fanout := alerting.Fanout{alerting.NewLogDispatcher(log), recent}
	closeFn := func() {}

	if cfg.AlertWebhookURL != "" {
		wh, err := alerting.NewWebhookDispatcher(cfg.AlertWebhookURL)
		if err != nil {
			return nil, closeFn, err
		}
		fanout = append(fanout, wh)
	}

	if len(cfg.KafkaBrokers) > 0 {
		kd, err := alerting.NewKafkaDispatcher(cfg.KafkaBrokers, cfg.AlertTopic)
		if err != nil {
			return nil, closeFn, err
		}
		if err := kd.EnsureTopic(ctx, 1, 1); err != nil {
			log.Warn("could not ensure alert topic; relying on broker auto-creation",
				"topic", cfg.AlertTopic,
				"error", err,
			)
		}
		fanout = append(fanout, kd)
		closeFn = kd.Close
	}

	return fanout, closeFn, nil
}
