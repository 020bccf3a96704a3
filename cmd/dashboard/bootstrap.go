package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"trading-dashboard/internal/analytics"
	"trading-dashboard/internal/containers"
	"trading-dashboard/internal/ingest"
	"trading-dashboard/internal/interfaces"
	"trading-dashboard/internal/ledger"
	"trading-dashboard/internal/logger"
	"trading-dashboard/internal/metrics"
	"trading-dashboard/internal/source"
	"trading-dashboard/internal/store"
	"trading-dashboard/internal/summary"
)

// storeSet is the full persistence surface. Both the gorm store and the
// in-memory store satisfy it.
type storeSet interface {
	interfaces.PositionStore
	interfaces.StatusStore
	interfaces.SummaryStore
	interfaces.ContainerStore
	interfaces.StatsStore
}

// application bundles the wired services the main loop and cron jobs
// operate on.
type application struct {
	cfg       *store.Config
	ledger    *ledger.Ledger
	summaries *summary.Aggregator
	analytics *analytics.Service
	ingest    *ingest.Service
}

// initializeSystem loads the environment and initializes the logger and
// tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// buildStores opens postgres in LIVE mode and falls back to the
// in-memory store in DEMO mode, so the dashboard runs without any
// database at hand.
func buildStores(ctx context.Context, cfg *store.Config) (storeSet, error) {
	if cfg.Mode == "LIVE" {
		db, err := store.OpenDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		logger.Info(ctx, "Connected to postgres", "dsn_env", cfg.Database.DSNEnv)
		return store.NewGorm(db), nil
	}

	logger.Warn(ctx, "Running in DEMO mode - data is kept in memory only")
	return store.NewMemory(), nil
}

func buildApp(cfg *store.Config, stores storeSet) *application {
	var src interfaces.LogSource
	var provider interfaces.ContainerProvider
	if cfg.Mode == "LIVE" {
		src = source.NewFileSource(cfg.LogDir)
		provider = containers.NewFileProvider(cfg.LogDir, cfg.Containers)
	} else {
		src = source.NewSampleSource(cfg.StatusContainer, containerNames(cfg))
		provider = containers.NewStaticProvider(cfg.Containers)
	}

	ledg := ledger.New(stores)
	return &application{
		cfg:       cfg,
		ledger:    ledg,
		summaries: summary.New(stores, stores),
		analytics: analytics.New(stores, stores),
		ingest:    ingest.New(cfg, src, provider, ledg, stores, stores),
	}
}

func containerNames(cfg *store.Config) []string {
	names := make([]string, 0, len(cfg.Containers))
	for _, ref := range cfg.Containers {
		names = append(names, ref.Name)
	}
	return names
}

// scheduleJobs registers the rollup and stats cron jobs. A job still
// running when its next slot arrives is skipped, not stacked.
func scheduleJobs(ctx context.Context, cfg *store.Config, app *application) *cron.Cron {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	mustSchedule(c, cfg.Schedule.Daily, func() {
		runDailyRollup(ctx, app, time.Now().UTC().AddDate(0, 0, -1))
	})
	mustSchedule(c, cfg.Schedule.Weekly, func() {
		runWeeklyRollup(ctx, app, time.Now().UTC())
	})
	mustSchedule(c, cfg.Schedule.Monthly, func() {
		runMonthlyRollup(ctx, app, time.Now().UTC())
	})
	mustSchedule(c, cfg.Schedule.Stats, func() {
		if err := app.analytics.RefreshStats(ctx, app.cfg.Users()); err != nil {
			logger.Warn(ctx, "Stats refresh failed", "error", err)
		}
	})

	return c
}

func mustSchedule(c *cron.Cron, spec string, job func()) {
	if _, err := c.AddFunc(spec, job); err != nil {
		panic(fmt.Sprintf("invalid cron spec %q: %v", spec, err))
	}
}

func runDailyRollup(ctx context.Context, app *application, date time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if _, err := app.summaries.SummarizeDaily(ctx, day); err != nil && !errors.Is(err, summary.ErrNoData) {
		metrics.IncRollup("daily", "error")
		logger.ErrorWithErr(ctx, "Daily rollup failed", err, "date", day.Format("2006-01-02"))
		return
	}
	metrics.IncRollup("daily", "ok")
	logger.Rollup(ctx, "daily", day.Format("2006-01-02"))
}

// runWeeklyRollup summarizes the week that ended before now. Weeks
// start on Monday.
func runWeeklyRollup(ctx context.Context, app *application, now time.Time) {
	weekStart := startOfWeek(now).AddDate(0, 0, -7)
	if _, err := app.summaries.SummarizeWeekly(ctx, weekStart); err != nil && !errors.Is(err, summary.ErrNoData) {
		metrics.IncRollup("weekly", "error")
		logger.ErrorWithErr(ctx, "Weekly rollup failed", err, "week_start", weekStart.Format("2006-01-02"))
		return
	}
	metrics.IncRollup("weekly", "ok")
	logger.Rollup(ctx, "weekly", weekStart.Format("2006-01-02"))
}

func runMonthlyRollup(ctx context.Context, app *application, now time.Time) {
	prev := now.AddDate(0, -1, 0)
	if _, err := app.summaries.SummarizeMonthly(ctx, prev.Year(), prev.Month()); err != nil && !errors.Is(err, summary.ErrNoData) {
		metrics.IncRollup("monthly", "error")
		logger.ErrorWithErr(ctx, "Monthly rollup failed", err, "year", prev.Year(), "month", int(prev.Month()))
		return
	}
	metrics.IncRollup("monthly", "ok")
	logger.Rollup(ctx, "monthly", fmt.Sprintf("%04d-%02d", prev.Year(), int(prev.Month())))
}

func startOfWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}
