package application

import (
	"context"
	"fmt"
	"io"
	"time"

	"composite-client/internal/config"
	"composite-client/internal/domain/ports/adapter"
	"composite-client/internal/domain/ports/repository"
	"composite-client/internal/infra/adapters/console"
	"composite-client/internal/infra/composite"
	"composite-client/internal/infra/credstore"
	pg "composite-client/internal/infra/db/postgres"
	adminhttp "composite-client/internal/infra/http"
	"composite-client/internal/infra/memory"
	red "composite-client/internal/infra/redis"
	"composite-client/internal/infra/sched"
	"composite-client/internal/infra/telegram"
	"composite-client/internal/infra/worker"
	"composite-client/internal/usecase"

	"github.com/rs/zerolog"
)

// Options override parts of the wiring, mostly for tests and the demo.
type Options struct {
	// Out receives share card outcomes; nil disables the console notifier.
	Out  io.Writer
	JSON bool
	// API replaces the composite HTTP client.
	API adapter.CompositeAPI
	// Credentials replaces the credential file.
	Credentials repository.CredentialStore
}

// App holds the wired use cases of one process.
type App struct {
	Config *config.Config
	Log    *zerolog.Logger

	API      adapter.CompositeAPI
	Registry repository.SessionRegistry
	Jobs     repository.ShareCardJobRepository
	Pool     *worker.Pool

	Catalog    usecase.CatalogUseCase
	Session    usecase.SessionUseCase
	Users      usecase.UserUseCase
	Reviews    usecase.ReviewUseCase
	ShareCards usecase.ShareCardUseCase

	closers []func()
}

// New wires the composite client, the share card infrastructure and the use
// cases. Redis and Postgres are used when their URLs are configured; otherwise
// sessions and job history live in memory.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, opts Options) (_ *App, err error) {
	a := &App{Config: cfg, Log: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.API = opts.API
	if a.API == nil {
		a.API = composite.NewClient(cfg.API, logger)
	}

	var movies adapter.MovieAPI = a.API
	cached, err := composite.NewMovieCacheDecorator(a.API, cfg.Cache)
	if err != nil {
		logger.Warn().Err(err).Msg("movie cache disabled")
	} else {
		movies = cached
		a.closers = append(a.closers, cached.Close)
	}

	creds := opts.Credentials
	if creds == nil {
		fs, err := credstore.NewFileStore(cfg.Session.Path)
		if err != nil {
			return nil, err
		}
		creds = fs
	}

	if err := a.openRegistry(ctx); err != nil {
		return nil, err
	}
	if err := a.openJobs(ctx); err != nil {
		return nil, err
	}

	a.Pool = worker.NewPool(cfg.Scheduler.Workers, logger)
	a.Pool.Start(ctx)
	a.closers = append(a.closers, a.Pool.Stop)

	var notifiers []adapter.Notifier
	if opts.Out != nil {
		notifiers = append(notifiers, console.NewNotifier(opts.Out, opts.JSON))
	}
	if cfg.Telegram.Token != "" {
		tg, err := telegram.NewNotifier(cfg.Telegram, logger)
		if err != nil {
			// notifications are optional; the flow works without them
			logger.Warn().Err(err).Msg("telegram notifier disabled")
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	a.Session = usecase.NewSessionUseCase(a.API, creds, logger)
	a.Catalog = usecase.NewCatalogUseCase(movies, a.API, cfg.Paging)
	a.Users = usecase.NewUserUseCase(a.API, a.Session, logger)
	a.Reviews = usecase.NewReviewUseCase(a.API, a.Session, logger)
	a.ShareCards = usecase.NewShareCardUseCase(a.API, a.Jobs, a.Registry, a.Pool, cfg.Poll, logger, notifiers...)

	logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Int("workers", a.Pool.Size()).
		Int("notifiers", len(notifiers)).
		Msg("application wired")
	return a, nil
}

func (a *App) openRegistry(ctx context.Context) error {
	if a.Config.Redis.URL == "" {
		a.Registry = memory.NewSessionRegistry()
		return nil
	}
	client, err := red.NewClient(ctx, &a.Config.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.Registry = red.NewSessionLocker(client, a.Config.Poll.LockTTL, a.Log)
	return nil
}

func (a *App) openJobs(ctx context.Context) error {
	if a.Config.Database.URL == "" {
		a.Jobs = memory.NewShareCardJobRepo()
		return nil
	}
	pool, err := pg.Connect(ctx, a.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := pg.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	statsCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	a.closers = append(a.closers, stop)
	go pg.ObservePool(statsCtx, pool, 30*time.Second, a.Log)
	a.Jobs = pg.NewShareCardJobRepo(pool)
	return nil
}

// RecheckWorker re-polls abandoned jobs on the configured schedule.
func (a *App) RecheckWorker() *sched.RecheckWorker {
	return sched.NewRecheckWorker(a.Config.Scheduler, a.Jobs, a.ShareCards, a.Log)
}

func (a *App) AdminServer() *adminhttp.Server {
	return adminhttp.NewServer(a.Config.Admin.Port, a.Registry, a.Jobs, a.API, a.Log)
}

// Close releases everything New opened, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
