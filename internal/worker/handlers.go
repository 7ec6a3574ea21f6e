package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/optifeed/optifeed/internal/clients"
	"github.com/optifeed/optifeed/internal/models"
)

const llmApologyReply = "❌ Error processing your request. Please try again later."

// processTask routes one decoded task. Unknown types are logged and dropped;
// the surrounding ack still happens.
func (w *Worker) processTask(ctx context.Context, task models.Task) {
	slog.Debug("[Worker] Processing task", slog.String("type", task.Type))

	switch task.Type {
	case models.TaskTypeAsk:
		w.handleAsk(ctx, task)
	case models.TaskTypeAlert:
		w.handleAlert(task)
	default:
		slog.Warn("[Worker] Unknown task type",
			slog.String("type", task.Type))
	}
}

func (w *Worker) handleAsk(ctx context.Context, task models.Task) {
	var payload models.AskPayload
	if err := json.Unmarshal(task.Data, &payload); err != nil {
		slog.Error("[Worker] Failed to decode ask payload",
			slog.String("error", err.Error()))
		return
	}

	query := payload.Message.Text
	userID := payload.Message.From.ID

	if !strings.Contains(query, w.botMention) {
		slog.Debug("[Worker] Query ignored: does not mention bot username")
		return
	}

	switch {
	case strings.HasPrefix(query, "/ping"):
		w.sendChat("🏓 Pong!")
		return
	case strings.HasPrefix(query, "/clear"):
		w.contexts.Clear(userID)
		w.sendChat("🧹 Context cleared.")
		return
	case strings.HasPrefix(query, "/history"):
		size := len(w.contexts.Get(userID))
		w.sendChat(fmt.Sprintf("🧠 %d message(s) in your context.", size))
		return
	}

	prompt := query
	if userID != 0 && userID == w.adminUserID {
		prompt += "\nYou're talking to the admin so call them 'my lord' or another fancy title."
	}

	history := w.contexts.Get(userID)
	w.contexts.Append(userID, models.ConversationTurn{Role: models.RoleUser, Content: query})

	reply, err := w.generator.Generate(ctx, prompt, history)
	if err != nil {
		slog.Error("[Worker] LLM error",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		w.sendChat(llmApologyReply)
		return
	}

	w.contexts.Append(userID, models.ConversationTurn{Role: models.RoleAssistant, Content: reply})
	w.sendChat(reply)
}

func (w *Worker) handleAlert(task models.Task) {
	message := task.Message
	if message == "" {
		message = "⚠️ Empty message"
	}

	// Alert messages arrive pre-formatted and pre-escaped by the signal
	// formatter; send them verbatim.
	result := w.chat.SendMessage(message, clients.PARSE_MODE_MARKDOWN_V2)
	if !result.OK {
		slog.Error("[Worker] Failed to send alert",
			slog.String("error", result.Error))
		return
	}
	slog.Info("[Worker] Sent alert")
}

// sendChat delivers conversational replies, escaping them for MarkdownV2
// since the LLM output is not markup-safe.
func (w *Worker) sendChat(text string) {
	result := w.chat.SendMessage(clients.EscapeMarkdownV2(text), clients.PARSE_MODE_MARKDOWN_V2)
	if !result.OK {
		slog.Error("[Worker] Failed to send chat message",
			slog.String("error", result.Error))
	}
}
