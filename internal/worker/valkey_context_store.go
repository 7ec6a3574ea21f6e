package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/optifeed/optifeed/internal/clients"
	"github.com/optifeed/optifeed/internal/models"
)

const valkeyContextKeyPrefix = "chat:context:"

// ValkeyContextStore keeps conversation contexts in Valkey so multiple worker
// processes share them and they survive restarts. Same trim policy as the
// in-memory store; backend errors degrade to an empty context rather than
// failing the task.
type ValkeyContextStore struct {
	client *clients.ValkeyClient
}

func NewValkeyContextStore(client *clients.ValkeyClient) *ValkeyContextStore {
	return &ValkeyContextStore{client: client}
}

func contextKey(userID int64) string {
	return valkeyContextKeyPrefix + strconv.FormatInt(userID, 10)
}

func (s *ValkeyContextStore) Get(userID int64) []models.ConversationTurn {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	raw, err := s.client.GetString(ctx, contextKey(userID))
	if err != nil {
		slog.Error("[ValkeyContextStore] Failed to fetch context",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return nil
	}
	if raw == "" {
		return nil
	}

	var turns []models.ConversationTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		slog.Error("[ValkeyContextStore] Failed to decode context",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return nil
	}
	return turns
}

func (s *ValkeyContextStore) Append(userID int64, turn models.ConversationTurn) {
	turns := TrimContext(append(s.Get(userID), turn))

	encoded, err := json.Marshal(turns)
	if err != nil {
		slog.Error("[ValkeyContextStore] Failed to encode context",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.client.SetString(ctx, contextKey(userID), string(encoded)); err != nil {
		slog.Error("[ValkeyContextStore] Failed to store context",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
	}
}

func (s *ValkeyContextStore) Clear(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.client.Delete(ctx, contextKey(userID)); err != nil {
		slog.Error("[ValkeyContextStore] Failed to clear context",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
	}
}
