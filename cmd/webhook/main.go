package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/optifeed/optifeed/config"
	"github.com/optifeed/optifeed/internal/logging"
	"github.com/optifeed/optifeed/internal/models"
	"github.com/optifeed/optifeed/internal/tasks"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/webhook", handleWebhook)

	addr := ":" + config.GetEnv("WEBHOOK_PORT", "8080")
	slog.Info("[Webhook] Listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("[Webhook] Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// handleWebhook wraps the inbound chat payload as an ask task and hands it to
// the broker. The envelope is acknowledged regardless; publishing is
// fire-and-forget.
func handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]bool{"ok": false})
		return
	}

	slog.Debug("[Webhook] Received webhook payload")

	tasks.Publish(models.Task{
		Type: models.TaskTypeAsk,
		Data: json.RawMessage(body),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
