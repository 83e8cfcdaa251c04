// Command server runs the HTTP governance service.
//
// @title        HTTP Governance API
// @version      1.0
// @description  Version registry and access log queries. Failures are answered with 200 and an errorCode/errorMsg body.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-http-governance/internal/accesslog"
	"github.com/tbourn/go-http-governance/internal/config"
	"github.com/tbourn/go-http-governance/internal/faults"
	httpapi "github.com/tbourn/go-http-governance/internal/http"
	"github.com/tbourn/go-http-governance/internal/http/handlers"
	"github.com/tbourn/go-http-governance/internal/observability"
	"github.com/tbourn/go-http-governance/internal/registry"
	"github.com/tbourn/go-http-governance/internal/repo"
	"github.com/tbourn/go-http-governance/internal/sysutil"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.ConfigureLogger(cfg.LogLevel, cfg.LogPretty, nil)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	serverID := sysutil.FirstNonEmpty(cfg.ServerID, hostname())

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{Version: version, InstanceID: serverID})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(sctx)
	}()

	var db *gorm.DB
	if cfg.AccessLogSink == "db" || cfg.AccessLogSink == "both" {
		if db, err = openStore(cfg); err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
	}

	overloads, closeOverloads, err := newOverloads(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeOverloads()

	emitter := &accesslog.Assembler{
		Handler:  newSink(cfg.AccessLogSink, db, log.Logger),
		Identity: accesslog.StaticIdentity(serverID),
	}
	classifier := faults.NewClassifier(faults.StaticResolver{
		AuthFail: faults.Classified{Code: cfg.ErrorCodes.AuthFailCode, Msg: cfg.ErrorCodes.AuthFailMsg},
		Overload: faults.Classified{Code: cfg.ErrorCodes.OverloadCode, Msg: cfg.ErrorCodes.OverloadMsg},
	})

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:        db,
		Versions:  registry.NewVersions(),
		Overloads: overloads,
		Pipeline:  handlers.NewPipeline(classifier, emitter),
		Emitter:   emitter,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("server_id", serverID).
			Str("access_log_sink", cfg.AccessLogSink).
			Str("overload_backend", cfg.Governance.OverloadBackend).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// openStore opens the SQLite database, instruments it when tracing is on and
// migrates the access log schema.
func openStore(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			return nil, err
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// newOverloads returns the overload registry for the configured backend and
// a closer for its resources.
func newOverloads(ctx context.Context, cfg config.Config) (httpapi.OverloadStore, func(), error) {
	if cfg.Governance.OverloadBackend != "redis" {
		return registry.NewOverloads(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := registry.NewRedisOverloads(client, "overload")
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// newSink builds the access log handler for ACCESS_LOG_SINK. "none" still
// assembles records and logs REQUEST_TIME, it only skips the sink.
func newSink(kind string, db *gorm.DB, lg zerolog.Logger) accesslog.Handler {
	logSink := accesslog.LogHandler{Logger: &lg}
	switch kind {
	case "log":
		return logSink
	case "db":
		return accesslog.StoreHandler{DB: db}
	case "both":
		return accesslog.Multi{logSink, accesslog.StoreHandler{DB: db}}
	default:
		return nil
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}
