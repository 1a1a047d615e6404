// Package server wires the drawing server together: storage, optional
// Redis, services and the HTTP API, and runs it until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/cache"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/config"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *cache.Redis
	server *httpapi.HTTPServer
}

func newLogger(c *config.Config) logging.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(c.LogLevel)})
	return logging.NewSlogLogger(slog.New(h))
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := newLogger(c)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var (
		revoker   services.Revoker
		snapCache services.SnapshotCache
	)
	if c.RedisAddr != "" {
		app.redis = cache.NewRedis(c.RedisAddr, logger)
		if err := app.redis.Ping(ctx); err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		revoker = cache.NewRevocationList(app.redis)
		snapCache = cache.NewSnapshotCache(app.redis, c.SnapshotCacheTTL)
	} else {
		logger.Info(ctx, "redis not configured, snapshot cache and session revocation disabled")
	}

	us := services.NewUserService(db, rm, c, revoker)
	ds := services.NewDrawingService(db, rm, c)
	ss := services.NewSnapshotService(db, rm, snapCache, logger)

	app.server = httpapi.NewHTTPServer(c.EndpointAddr, logger, us, ds, ss)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "error closing redis", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "error closing database", "error", err)
	}
}
