package models

// SendResult is the structured outcome of a chat transport send. Failures are
// reported here, never raised past the send boundary.
type SendResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
