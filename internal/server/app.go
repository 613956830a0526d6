// Package server wires the work log store: Postgres with migrations, the
// domain services, the change feed source, the gRPC endpoint, the
// Prometheus endpoint and the refresh token pruning job.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/dmitrijs2005/worklogger/internal/logging"
	"github.com/dmitrijs2005/worklogger/internal/server/config"
	"github.com/dmitrijs2005/worklogger/internal/server/notify"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/worklogger/internal/server/services"

	gs "github.com/dmitrijs2005/worklogger/internal/server/grpc"
)

// feedSource keeps the broker supplied with committed changes until ctx is
// done.
type feedSource interface {
	Run(ctx context.Context) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	registry *prometheus.Registry
	redis    *redis.Client

	users    *services.UserService
	profiles *services.ProfileService
	entries  *services.EntryService
	exports  *services.ExportService
	broker   *notify.Broker
	source   feedSource
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, registry: prometheus.NewRegistry()}
	app.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.broker = notify.NewBroker(logger, notify.NewMetrics(app.registry))

	var publisher services.Publisher
	switch c.NotifyBackend {
	case config.NotifyPostgres:
		app.source = notify.NewPGListener(c.DatabaseDSN, app.broker, logger)
	case config.NotifyRedis:
		app.redis = redis.NewClient(&redis.Options{
			Addr:         c.RedisAddr,
			DialTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxRetries:   3,
		})
		feed := notify.NewRedisFeed(app.redis, app.broker, logger)
		app.source = feed
		publisher = feed
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unknown notify backend %q", c.NotifyBackend)
	}

	app.users = services.NewUserService(db, rm, c, logger)
	app.profiles = services.NewProfileService(db, rm, logger)
	app.entries = services.NewEntryService(db, rm, publisher, logger)
	app.exports = services.NewExportService(db, rm, c, logger)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, gs.Services{
		Users:    app.users,
		Profiles: app.profiles,
		Entries:  app.entries,
		Exports:  app.exports,
		Feed:     app.broker,
	}, app.config.SecretKey, app.registry)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context) {
	if app.config.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry}))
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "metrics server failed", "error", err)
	}
}

func (app *App) startFeed(ctx context.Context) {
	if err := app.source.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		app.logger.Error(ctx, "change feed stopped", "error", err)
	}
}

// newPruneScheduler returns nil when schedule is empty.
func (app *App) newPruneScheduler(ctx context.Context, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := app.users.PruneRefreshTokens(ctx)
		if err != nil {
			app.logger.Error(ctx, "refresh token pruning failed", "error", err)
			return
		}
		app.logger.Info(ctx, "expired refresh tokens pruned", "count", n)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	return c, nil
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	_ = app.db.Close()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	pruner, err := app.newPruneScheduler(ctx, app.config.PruneSchedule)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		return
	}
	if pruner != nil {
		pruner.Start()
		defer func() { <-pruner.Stop().Done() }()
	}

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startFeed(ctx)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
}
