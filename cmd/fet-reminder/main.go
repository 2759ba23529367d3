package main

import (
	"context"
	"time"

	"github.com/SDhanushDev/fet/internal/cli"
	"github.com/SDhanushDev/fet/internal/notify"
)

// fet-reminder runs the meal reminder schedule as a standalone process. It
// reads notification settings from the store at startup and re-reads them
// periodically to pick up changes saved through the API.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting fet-reminder")

	store := cli.InitStore(logger, cfg)
	scheduler := notify.NewScheduler(nil)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := scheduler.Stop(stopCtx); err != nil {
			logger.Warn("Scheduler stop timed out", "error", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	})

	reload := func() {
		settings, err := store.GetNotificationSettings(ctx)
		if err != nil {
			logger.Error("Failed to read notification settings", "error", err)
			return
		}
		if err := scheduler.Schedule(ctx, settings); err != nil {
			logger.Error("Failed to schedule reminders", "error", err)
			return
		}
		logger.Info("Reminders scheduled",
			"enabled", settings.Enabled,
			"entries", scheduler.Entries())
	}

	reload()
	scheduler.Start()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				reload()
			case <-ctx.Done():
				return
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Reminder shutdown complete")
}
