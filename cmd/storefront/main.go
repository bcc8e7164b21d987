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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/counts"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/scope"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storefront"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
)

const sweepEvery = time.Hour

// sessions bundles the chosen backend with its readiness check and cleanup.
// purge is nil when the backend expires sessions on its own.
type sessions struct {
	backend session.Backend
	ready   func(ctx context.Context) error
	purge   func(ctx context.Context, before time.Time) ([]string, error)
	close   func() error
}

func openSessions(ctx context.Context, cfg config.Config, log *slog.Logger) (*sessions, error) {
	sealer := session.NewSealer(cfg.SessionSecret)
	if sealer == nil && cfg.SessionDriver != "memory" {
		log.Warn("session_secret_missing", "driver", cfg.SessionDriver)
	}

	switch cfg.SessionDriver {
	case "memory":
		return &sessions{backend: session.NewMemoryBackend(), close: func() error { return nil }}, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return &sessions{
			backend: session.NewRedisBackend(rdb, cfg.SessionTTL, sealer),
			ready:   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			close:   rdb.Close,
		}, nil

	default:
		gdb, err := db.Open(ctx, cfg.SessionDriver, cfg.SessionDSN)
		if err != nil {
			return nil, err
		}
		backend, err := session.NewGormBackend(ctx, gdb, sealer)
		if err != nil {
			_ = db.Close(gdb)
			return nil, err
		}
		return &sessions{
			backend: backend,
			ready:   func(ctx context.Context) error { return ping(ctx, gdb) },
			purge:   backend.Purge,
			close:   func() error { return db.Close(gdb) },
		}, nil
	}
}

func ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// sweepLoop deletes expired session rows and releases the count state of
// scopes that are gone or idle for a whole session lifetime.
func sweepLoop(ctx context.Context, sess *sessions, store *counts.Store, ttl time.Duration, log *slog.Logger) {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sweep(ctx, sess, store, time.Now().Add(-ttl), log)
		}
	}
}

func sweep(ctx context.Context, sess *sessions, store *counts.Store, before time.Time, log *slog.Logger) {
	if sess.purge != nil {
		ids, err := sess.purge(ctx, before)
		if err != nil {
			log.Error("session_purge_error", "error", err)
		} else if len(ids) > 0 {
			store.Drop(ids...)
			log.Info("sessions purged", "count", len(ids))
		}
	}
	if n := store.DropIdle(before); n > 0 {
		log.Info("idle count scopes dropped", "count", n, "remaining", store.Len())
	}
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sess, err := openSessions(ctx, cfg, log)
	if err != nil {
		log.Error("session_backend_error", "driver", cfg.SessionDriver, "error", err)
		os.Exit(1)
	}

	countOpts := []counts.Option{counts.WithObserver(metrics.RecordCountSync)}
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers, log)
		if err != nil {
			log.Error("kafka_producer_error", "error", err)
			os.Exit(1)
		}
		countOpts = append(countOpts, counts.WithPublisher(mykafka.CountPublisher{Producer: prod, Topic: cfg.KafkaTopic}))
	}

	client := apiclient.NewClient(
		apiclient.WithBaseURL(cfg.APIBaseURL),
		apiclient.WithMediaBaseURL(cfg.MediaBaseURL),
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithObserver(metrics.ObserveUpstream),
	)

	countStore := counts.New(countOpts...)
	go sweepLoop(ctx, sess, countStore, cfg.SessionTTL, log)

	svc := storefront.NewService(storefront.Deps{
		Client:   client,
		Sessions: sess.backend,
		Counts:   countStore,
		Notices:  notify.NewCenter(),
	})

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CookieSecure

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(log))
	e.Use(metrics.Middleware())

	httpserver.Register(e, &httpserver.Deps{
		Handler: &httpserver.Handler{Svc: svc},
		CSRF:    csrfCfg,
		Scope:   scope.Config{Secure: cfg.CookieSecure, MaxAge: cfg.SessionTTL},
		Ready:   sess.ready,
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.HTTPTimeout,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info("listening", "addr", cfg.ListenAddr, "api", cfg.APIBaseURL, "sessions", cfg.SessionDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	go func() {
		<-quit
		log.Warn("force exit")
		os.Exit(1)
	}()

	log.Info("shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	if err := sess.close(); err != nil {
		log.Error("session_close_error", "error", err)
	}
	countStore.Close()
	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Error("kafka_close_error", "error", err)
		}
	}

	log.Info("shutdown complete")
}
