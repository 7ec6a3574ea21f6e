package main

import (
	"context"
	"log/slog"
	"os"

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

	store, err := db.NewStore(config.GetEnv("SQL_DB_FILE", "data/news.db"))
	if err != nil {
		slog.Error("[Main] Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	generator := analysis.NewOpenAIGenerator("")
	publisher := signals.PublisherFunc(tasks.Publish)
	threshold := config.GetEnvFloat("SIGNAL_MAGNITUDE_THRESHOLD", 0.7)

	ctx := context.Background()
	if err := pipeline.Run(ctx, store, generator, publisher, threshold); err != nil {
		slog.Error("[Main] Pipeline run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if config.GetEnv("MICRO_ANALYSIS_ENABLED", "") == "true" {
		pipeline.RunMicroAnalysis(ctx, store, generator)
	}
}
