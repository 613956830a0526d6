package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/worklogger/internal/client/client"
	"github.com/dmitrijs2005/worklogger/internal/client/config"
	"github.com/dmitrijs2005/worklogger/internal/client/export"
	"github.com/dmitrijs2005/worklogger/internal/client/identity"
	"github.com/dmitrijs2005/worklogger/internal/client/projection"
	"github.com/dmitrijs2005/worklogger/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/worklogger/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/worklogger/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/worklogger/internal/client/services"
	"github.com/dmitrijs2005/worklogger/internal/client/syncer"
	"github.com/dmitrijs2005/worklogger/internal/filex"
	"github.com/dmitrijs2005/worklogger/internal/logging"
	"github.com/dmitrijs2005/worklogger/internal/timex"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type submitter interface {
	Submit(ctx context.Context, f *services.Form) (services.Status, error)
	InFlight() bool
}

type deleter interface {
	Delete(ctx context.Context, id string) error
}

type exporter interface {
	Export(ctx context.Context, f export.Filter, format string, upload bool) (*services.ExportResult, error)
	RetryUploads(ctx context.Context) (int, error)
}

type syncRunner interface {
	Run(ctx context.Context)
	State() syncer.State
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	authService services.AuthService
	submission  submitter
	deletion    deleter
	exports     exporter
	ids         *identity.Context
	views       *projection.Store
	sync        syncRunner

	form   services.Form
	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	Mode Mode
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewWorkLogClientService(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	exportDir, err := filex.EnsureDir(c.ExportDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	views := projection.NewStore(c.RecentLimit)
	ids := identity.New(apiClient, profiles.NewSQLiteRepository(db), logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		authService: services.NewAuthService(apiClient, metadata.NewSQLiteRepository(db), logger),
		submission:  services.NewSubmissionService(apiClient, logger),
		deletion:    services.NewDeletionService(apiClient, views, logger),
		exports:     services.NewExportService(views, apiClient, uploads.NewSQLiteRepository(db), exportDir, logger),
		ids:         ids,
		views:       views,
		sync:        syncer.New(apiClient, ids, views, logger, nil, syncer.Config{}),
		form:        services.Form{Date: timex.Today()},
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

// Run restores the previous session if there is one, starts the background
// workers and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.sync.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	defer func() {
		cancel()
		wg.Wait()
		_ = a.authService.Close(context.Background())
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	a.restore(ctx)
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	return a.ids.Identity() != nil
}

// timeout bounds a single command by the configured request timeout.
func (a *App) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	d := 10 * time.Second
	if a.config != nil && a.config.RequestTimeout > 0 {
		d = a.config.RequestTimeout
	}
	return context.WithTimeout(ctx, d)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
