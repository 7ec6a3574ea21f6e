package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/optifeed/optifeed/config"
	"github.com/optifeed/optifeed/internal/analysis"
	"github.com/optifeed/optifeed/internal/clients"
	"github.com/optifeed/optifeed/internal/logging"
	"github.com/optifeed/optifeed/internal/worker"
)

const basePrompt = `You are a helpful assistant that answers questions based on the provided context.
You will receive a question and you should provide a concise and accurate answer.
Make sure to keep your responses short and to the point.
If the question is not clear, ask for clarification.
Answer with a little bit of humor when you can.`

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopChan
		slog.Info("[Main] Shutting down worker gracefully...")
		cancel()
	}()

	var contexts worker.ContextStore
	if config.GetEnv("CONTEXT_STORE_BACKEND", "memory") == "valkey" {
		contexts = worker.NewValkeyContextStore(clients.InitValkey())
		defer clients.CloseValkey()
	} else {
		contexts = worker.NewInMemoryContextStore()
	}

	generator := analysis.NewOpenAIGenerator(basePrompt)
	w := worker.New(contexts, generator, clients.GetTelegramClient())

	if err := w.Run(ctx); err != nil {
		if errors.Is(err, worker.ErrConnectExhausted) {
			slog.Error("[Main] Failed to connect to broker after several attempts. Exiting.")
		} else {
			slog.Error("[Main] Worker stopped", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}
