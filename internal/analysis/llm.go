package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/optifeed/optifeed/internal/clients"
	"github.com/optifeed/optifeed/internal/models"
)

// Generator is the single capability the rest of the system needs from an
// LLM: turn a prompt plus optional history into text. Retry stays out of
// business logic; implementations own their transport policy.
type Generator interface {
	Generate(ctx context.Context, prompt string, history []models.ConversationTurn) (string, error)
}

// GenerationError wraps any failure of the LLM boundary.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "[LLM] generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// OpenAIGenerator drives chat completions through the shared OpenAI client.
type OpenAIGenerator struct {
	SystemPrompt string
}

func NewOpenAIGenerator(systemPrompt string) *OpenAIGenerator {
	return &OpenAIGenerator{SystemPrompt: systemPrompt}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, history []models.ConversationTurn) (string, error) {
	client := clients.GetOpenAIClient()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if g.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: g.SystemPrompt,
		})
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := client.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    client.Model,
		Messages: messages,
	})
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Err: errors.New("empty completion response")}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var jsonFencePattern = regexp.MustCompile("(?m)^```json|^```|```$")

// ParseJSONBlock strips a markdown ```json fence if present and unmarshals
// the remainder into out.
func ParseJSONBlock(text string, out any) error {
	cleaned := jsonFencePattern.ReplaceAllString(strings.TrimSpace(text), "")
	return json.Unmarshal([]byte(cleaned), out)
}
