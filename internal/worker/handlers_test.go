package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optifeed/optifeed/internal/clients"
	"github.com/optifeed/optifeed/internal/models"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
	history [][]models.ConversationTurn
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, history []models.ConversationTurn) (string, error) {
	g.prompts = append(g.prompts, prompt)
	g.history = append(g.history, history)
	return g.reply, g.err
}

type fakeChat struct {
	sent   []string
	modes  []string
	result models.SendResult
}

func (c *fakeChat) SendMessage(text string, parseMode string) models.SendResult {
	c.sent = append(c.sent, text)
	c.modes = append(c.modes, parseMode)
	if c.result.OK || c.result.Error != "" {
		return c.result
	}
	return models.SendResult{OK: true}
}

func newTestWorker(gen *fakeGenerator, chat *fakeChat) *Worker {
	return &Worker{
		contexts:    NewInMemoryContextStore(),
		generator:   gen,
		chat:        chat,
		botMention:  "@optifeed_bot",
		adminUserID: 42,
	}
}

func askTask(t *testing.T, text string, userID int64) models.Task {
	t.Helper()
	payload := models.AskPayload{}
	payload.Message.Text = text
	payload.Message.From.ID = userID
	payload.Message.Chat.ID = userID
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return models.Task{Type: models.TaskTypeAsk, Data: data}
}

func TestHandleAskGeneratesReply(t *testing.T) {
	gen := &fakeGenerator{reply: "Markets look calm."}
	chat := &fakeChat{}
	w := newTestWorker(gen, chat)

	w.processTask(context.Background(), askTask(t, "@optifeed_bot how are markets?", 7))

	require.Len(t, chat.sent, 1)
	assert.Equal(t, clients.EscapeMarkdownV2("Markets look calm."), chat.sent[0])
	assert.Equal(t, clients.PARSE_MODE_MARKDOWN_V2, chat.modes[0])

	// Both sides of the exchange land in the user's context.
	turns := w.contexts.Get(7)
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, "@optifeed_bot how are markets?", turns[0].Content)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
}

func TestHandleAskIgnoresWithoutMention(t *testing.T) {
	gen := &fakeGenerator{reply: "should not run"}
	chat := &fakeChat{}
	w := newTestWorker(gen, chat)

	w.processTask(context.Background(), askTask(t, "how are markets?", 7))

	assert.Empty(t, gen.prompts)
	assert.Empty(t, chat.sent)
	assert.Empty(t, w.contexts.Get(7))
}

func TestHandleAskHistoryExcludesCurrentQuery(t *testing.T) {
	gen := &fakeGenerator{reply: "reply"}
	w := newTestWorker(gen, &fakeChat{})

	w.processTask(context.Background(), askTask(t, "@optifeed_bot first", 7))
	w.processTask(context.Background(), askTask(t, "@optifeed_bot second", 7))

	require.Len(t, gen.history, 2)
	assert.Empty(t, gen.history[0])
	// Second call sees the first exchange but not its own query.
	require.Len(t, gen.history[1], 2)
	assert.Equal(t, "@optifeed_bot first", gen.history[1][0].Content)
}

func TestHandleAskPing(t *testing.T) {
	gen := &fakeGenerator{}
	chat := &fakeChat{}
	w := newTestWorker(gen, chat)

	w.processTask(context.Background(), askTask(t, "/ping @optifeed_bot", 7))

	require.Len(t, chat.sent, 1)
	assert.Equal(t, clients.EscapeMarkdownV2("🏓 Pong!"), chat.sent[0])
	assert.Empty(t, gen.prompts)
}

func TestHandleAskClear(t *testing.T) {
	chat := &fakeChat{}
	w := newTestWorker(&fakeGenerator{}, chat)
	w.contexts.Append(7, models.ConversationTurn{Role: models.RoleUser, Content: "old"})

	w.processTask(context.Background(), askTask(t, "/clear @optifeed_bot", 7))

	assert.Empty(t, w.contexts.Get(7))
	require.Len(t, chat.sent, 1)
	assert.Contains(t, chat.sent[0], "Context cleared")
}

func TestHandleAskHistoryCommand(t *testing.T) {
	chat := &fakeChat{}
	w := newTestWorker(&fakeGenerator{}, chat)
	w.contexts.Append(7, models.ConversationTurn{Role: models.RoleUser, Content: "one"})
	w.contexts.Append(7, models.ConversationTurn{Role: models.RoleAssistant, Content: "two"})

	w.processTask(context.Background(), askTask(t, "/history @optifeed_bot", 7))

	require.Len(t, chat.sent, 1)
	assert.Contains(t, chat.sent[0], "2")
}

func TestHandleAskAdminHonorific(t *testing.T) {
	gen := &fakeGenerator{reply: "as you wish"}
	w := newTestWorker(gen, &fakeChat{})

	w.processTask(context.Background(), askTask(t, "@optifeed_bot status?", 42))

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "my lord")

	// Ordinary users get the query untouched.
	w.processTask(context.Background(), askTask(t, "@optifeed_bot status?", 7))
	require.Len(t, gen.prompts, 2)
	assert.Equal(t, "@optifeed_bot status?", gen.prompts[1])
}

func TestHandleAskLLMFailureApologizes(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	chat := &fakeChat{}
	w := newTestWorker(gen, chat)

	w.processTask(context.Background(), askTask(t, "@optifeed_bot hi", 7))

	require.Len(t, chat.sent, 1)
	assert.Equal(t, clients.EscapeMarkdownV2(llmApologyReply), chat.sent[0])

	// The user turn stays; no assistant turn was produced.
	turns := w.contexts.Get(7)
	require.Len(t, turns, 1)
	assert.Equal(t, models.RoleUser, turns[0].Role)
}

func TestHandleAskMalformedPayload(t *testing.T) {
	gen := &fakeGenerator{}
	chat := &fakeChat{}
	w := newTestWorker(gen, chat)

	w.processTask(context.Background(), models.Task{
		Type: models.TaskTypeAsk,
		Data: json.RawMessage(`{"message":`),
	})

	assert.Empty(t, gen.prompts)
	assert.Empty(t, chat.sent)
}

func TestHandleAlertSendsVerbatim(t *testing.T) {
	chat := &fakeChat{}
	w := newTestWorker(&fakeGenerator{}, chat)

	w.processTask(context.Background(), models.Task{
		Type:    models.TaskTypeAlert,
		Message: "*Part 1/2*\n\npre\\-escaped body",
	})

	require.Len(t, chat.sent, 1)
	// Already escaped upstream; no second escaping pass.
	assert.Equal(t, "*Part 1/2*\n\npre\\-escaped body", chat.sent[0])
	assert.Equal(t, clients.PARSE_MODE_MARKDOWN_V2, chat.modes[0])
}

func TestHandleAlertEmptyMessagePlaceholder(t *testing.T) {
	chat := &fakeChat{}
	w := newTestWorker(&fakeGenerator{}, chat)

	w.processTask(context.Background(), models.Task{Type: models.TaskTypeAlert})

	require.Len(t, chat.sent, 1)
	assert.Equal(t, "⚠️ Empty message", chat.sent[0])
}

func TestProcessTaskUnknownTypeDropped(t *testing.T) {
	gen := &fakeGenerator{}
	chat := &fakeChat{}
	w := newTestWorker(gen, chat)

	w.processTask(context.Background(), models.Task{Type: "reindex", Message: "whatever"})

	assert.Empty(t, gen.prompts)
	assert.Empty(t, chat.sent)
}
