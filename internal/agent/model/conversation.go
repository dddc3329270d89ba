package model

import (
	"context"
	"encoding/json"
	"time"
)

// APICall is one logged request/response pair against an external API.
type APICall struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Params   map[string]string `json:"params,omitempty"`
	Status   int               `json:"status"`
	Response json.RawMessage   `json:"response,omitempty"`
	Duration time.Duration     `json:"duration_ns"`
	At       time.Time         `json:"at"`
}

type APICallLogRepository interface {
	// Append records a call for the given conversation
	Append(ctx context.Context, conversationID string, call APICall) error

	// List returns the calls recorded for a conversation, oldest first
	List(ctx context.Context, conversationID string) ([]APICall, error)

	// Clear removes the log of a conversation
	Clear(ctx context.Context, conversationID string) error
}

// SessionStore holds turn state between turns of a live conversation.
type SessionStore interface {
	Load(ctx context.Context, conversationID string) (*TurnState, bool, error)
	Save(ctx context.Context, state *TurnState) error
	Delete(ctx context.Context, conversationID string) error
}

type conversationIDKey struct{}

// WithConversationID tags ctx with the conversation a turn belongs to so that
// collaborators deep in the call chain can attribute their work.
func WithConversationID(ctx context.Context, conversationID string) context.Context {
	return context.WithValue(ctx, conversationIDKey{}, conversationID)
}

// ConversationIDFrom returns the conversation id carried by ctx, if any.
func ConversationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(conversationIDKey{}).(string)
	return id
}
