package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/optifeed/optifeed/config"
	"github.com/optifeed/optifeed/internal/analysis"
	"github.com/optifeed/optifeed/internal/db"
	"github.com/optifeed/optifeed/internal/logging"
	"github.com/optifeed/optifeed/internal/pipeline"
	"github.com/optifeed/optifeed/internal/signals"
	"github.com/optifeed/optifeed/internal/tasks"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	c := cron.New()

	alertsSpec := config.GetEnv("ALERTS_CRON", "0 6,18 * * *")
	if _, err := c.AddFunc(alertsSpec, runAlerts); err != nil {
		slog.Error("[Scheduler] Invalid cron spec",
			slog.String("spec", alertsSpec),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[Scheduler] Scheduler started. Waiting for jobs...",
		slog.String("alerts", alertsSpec))
	c.Run()
}

// runAlerts fires one ingestion cycle, honoring the alerts-enabled flag file
// so alerts can be paused without redeploying.
func runAlerts() {
	flagFile := config.GetEnv("ALERTS_ENABLED_FILE", "alerts_enabled.flag")
	if _, err := os.Stat(flagFile); err != nil {
		slog.Info("[Scheduler] Alerts are disabled. Skipping...")
		return
	}

	slog.Info("[Scheduler] Running alerts pipeline")

	store, err := db.NewStore(config.GetEnv("SQL_DB_FILE", "data/news.db"))
	if err != nil {
		slog.Error("[Scheduler] Failed to open store", slog.String("error", err.Error()))
		return
	}
	defer store.Close()

	generator := analysis.NewOpenAIGenerator("")
	publisher := signals.PublisherFunc(tasks.Publish)
	threshold := config.GetEnvFloat("SIGNAL_MAGNITUDE_THRESHOLD", 0.7)

	if err := pipeline.Run(context.Background(), store, generator, publisher, threshold); err != nil {
		slog.Error("[Scheduler] Alerts pipeline failed", slog.String("error", err.Error()))
	}
}
