package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-dashboard/internal/api"
	"trading-dashboard/internal/logger"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	stores, err := buildStores(ctx, cfg)
	must(err)

	app := buildApp(cfg, stores)

	cronRunner := scheduleJobs(ctx, cfg, app)
	cronRunner.Start()
	defer cronRunner.Stop()

	server := api.NewServer(cfg.HTTPAddr, api.Deps{
		Ingest:     app.ingest,
		Ledger:     app.ledger,
		Positions:  stores,
		Summaries:  app.summaries,
		Analytics:  app.analytics,
		Containers: stores,
	})
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	// First pass before the poll loop so the API has data immediately.
	if err := app.ingest.Run(ctx); err != nil {
		logger.Warn(ctx, "Initial parse pass failed", "error", err)
	}

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	logger.Info(ctx, "Dashboard started", "mode", cfg.Mode, "addr", cfg.HTTPAddr, "containers", len(cfg.Containers))
	for {
		select {
		case <-tick.C:
			if err := app.ingest.Run(ctx); err != nil {
				logger.Warn(ctx, "Parse pass failed", "error", err)
			}
		case err := <-serverErr:
			if err != nil {
				logger.ErrorWithErr(ctx, "HTTP server exited", err)
			}
			shutdown(app)
			return
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			cancel()
			<-serverErr
			shutdown(app)
			return
		}
	}
}

// shutdown rolls up the current day so a restart does not lose the
// partial period, then flushes the tracer.
func shutdown(app *application) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runDailyRollup(ctx, app, time.Now().UTC())
	if err := logger.Shutdown(ctx); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}
}
