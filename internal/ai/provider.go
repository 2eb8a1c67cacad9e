package ai

import (
	"context"
	"fmt"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolSpec describes a callable function offered to the model.
// Parameters is a JSON schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is the model's request to invoke one function.
// Arguments holds the raw JSON object the model produced.
type ToolCall struct {
	Name      string
	Arguments string
}

type Completion struct {
	Content  string
	ToolCall *ToolCall
}

// Provider is a language model that may answer with text, a function-call
// intent, or both. Only the first tool call of a reply is surfaced.
type Provider interface {
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*Completion, error)
}

// StatusError carries the upstream HTTP status of a failed model call so
// callers can pass it through.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}
