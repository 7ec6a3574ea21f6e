package models

import "encoding/json"

const (
	TaskTypeAsk   = "ask"
	TaskTypeAlert = "alert"
)

// Task is the queue payload: a discriminated union over ask (conversational,
// opaque chat payload in Data) and alert (direct notification in Message).
type Task struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// AskPayload mirrors the chat webhook update wrapped inside an ask task.
type AskPayload struct {
	Message struct {
		Text string `json:"text"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// ConversationTurn is one role-tagged message in a user's chat context.
// Process-lifetime only for the in-memory store; never part of the pipeline schema.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
