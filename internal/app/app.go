package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/httpapi"
	"NewsScanner/internal/infrastructure/fetcher"
	"NewsScanner/internal/infrastructure/parser"
	"NewsScanner/internal/infrastructure/queue"
	"NewsScanner/internal/infrastructure/scheduler"
	"NewsScanner/internal/infrastructure/storage"
	"NewsScanner/internal/infrastructure/telegram"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/scanner"
	"NewsScanner/internal/usecase"
	"NewsScanner/pkg/logger"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	repo      *storage.ArticleRepository
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *httpapi.Server
	closers   []func() error
}

// New opens the store, migrates it and builds every component.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dialect := storage.Dialect(cfg.Database.Driver)
	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a := &Application{cfg: cfg, logger: baseLogger, db: db}
	a.closers = append(a.closers, db.Close)

	if err := storage.Migrate(ctx, db, dialect); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.repo = storage.NewArticleRepository(db, dialect)

	tenants, vendors := a.directories(dialect)

	httpFetcher := fetcher.New(nil, fetcher.Options{
		Timeout:     cfg.Fetcher.Timeout,
		MaxAttempts: cfg.Fetcher.MaxAttempts,
		BaseDelay:   cfg.Fetcher.BaseDelay,
		UserAgents:  cfg.Fetcher.UserAgents,
	}, baseLogger.With("component", "fetcher"))

	registry := scanner.NewRegistry(
		parser.NewFeedAdapter(httpFetcher, baseLogger.With("component", "scanner.feed")),
		parser.NewPageAdapter(httpFetcher, baseLogger.With("component", "scanner.page")),
	)
	source := parser.NewStrategySourceFromConfig(registry, cfg, baseLogger.With("component", "source"))

	deps := usecase.PipelineDeps{
		Source:      source,
		Repository:  a.repo,
		Tenants:     tenants,
		Vendors:     vendors,
		MinAlert:    domain.Severity(cfg.Notifications.Telegram.MinSeverity),
		Concurrency: cfg.Ingestion.Concurrency,
		Logger:      baseLogger.With("component", "pipeline"),
	}
	if cfg.Redis.Addr != "" {
		client := queue.NewRedisClient(cfg.Redis.Addr)
		a.closers = append(a.closers, client.Close)
		deps.Publisher = queue.NewRedisPublisher(client, cfg.Redis.Queue)
	}
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); tg.Configured() {
		deps.Notifier = tg
	}
	a.pipeline = usecase.NewPipeline(deps)

	sweeper := usecase.NewRetentionSweeper(a.repo, cfg.Retention.Window(), cfg.Retention.SoftDelete,
		baseLogger.With("component", "retention"))

	timer := scheduler.NewCronScheduler(cfg.Scheduler.Location(), logger.NewCron(baseLogger.With("component", "cron")))
	a.scheduler, err = usecase.NewScheduler(usecase.SchedulerDeps{
		Timer:         timer,
		Ingestor:      a.pipeline,
		Sweeper:       sweeper,
		IngestionSpec: cfg.Scheduler.Ingestion,
		RetentionSpec: cfg.Scheduler.Retention,
		Logger:        baseLogger.With("component", "scheduler"),
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	a.server = httpapi.NewServer(a.scheduler, a.repo, baseLogger.With("component", "http"))

	return a, nil
}

func (a *Application) directories(dialect storage.Dialect) (ports.TenantDirectory, ports.VendorDirectory) {
	if a.cfg.Directory.Mode == config.DirectoryStatic {
		vendors := make(map[string][]domain.Vendor, len(a.cfg.Directory.Vendors))
		for tenant, list := range a.cfg.Directory.Vendors {
			for _, v := range list {
				vendors[tenant] = append(vendors[tenant], domain.Vendor{ID: v.ID, Name: v.Name})
			}
		}
		dir := storage.NewStaticDirectory(a.cfg.Directory.Tenants, vendors)
		return dir, dir
	}
	dir := storage.NewDirectory(a.db, dialect)
	return dir, dir
}

// Serve starts the timers and the admin API, blocking until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	a.scheduler.Start()
	defer a.scheduler.Stop()

	return a.server.Run(ctx, a.cfg.HTTP.Addr)
}

// RunOnce runs one ingestion pass for tenantID, or for every tenant when it is empty.
func (a *Application) RunOnce(ctx context.Context, tenantID string) (usecase.PassSummary, error) {
	return a.scheduler.TriggerNow(ctx, tenantID)
}

// Sweep runs one retention pass.
func (a *Application) Sweep(ctx context.Context) (int64, error) {
	return a.scheduler.Sweep(ctx)
}

// Close releases the database and queue connections.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Migrate opens the configured store and creates its schema.
func Migrate(ctx context.Context, cfg config.Config) error {
	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return storage.Migrate(ctx, db, storage.Dialect(cfg.Database.Driver))
}
