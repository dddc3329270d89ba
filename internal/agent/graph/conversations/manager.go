package conversations

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

const defaultSnippetTurns = 6

// MessagesManager assembles the conversation views handed to the LLM capabilities.
type MessagesManager struct {
	snippetMaxTurns int
}

func NewMessagesManager(config model.ConversationConfig) *MessagesManager {
	n := config.SnippetMaxTurns
	if n <= 0 {
		n = defaultSnippetTurns
	}
	return &MessagesManager{snippetMaxTurns: n}
}

// ClassifierInput is what the intent classifier receives for one turn.
type ClassifierInput struct {
	Snippet       string
	LastUtterance string
	ContextSuffix string
}

// =========== Function for intent classification ===========
func (cm *MessagesManager) BuildClassifierInput(state *model.TurnState) ClassifierInput {
	return ClassifierInput{
		Snippet:       cm.buildSnippet(state.Messages),
		LastUtterance: state.LastUserContent(),
		ContextSuffix: buildContextSuffix(state),
	}
}

func (cm *MessagesManager) buildSnippet(messages []*schema.Message) string {
	recent := trimTail(messages, cm.snippetMaxTurns)

	var b strings.Builder
	for _, msg := range recent {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			b.WriteString("User: " + strings.TrimSpace(msg.Content) + "\n")
		case schema.Assistant:
			b.WriteString("Assistant: " + strings.TrimSpace(msg.Content) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildContextSuffix summarises scratchpad facts the classifier can use.
func buildContextSuffix(state *model.TurnState) string {
	var parts []string
	if state.Registered() {
		if name := state.Inner.Caller.DisplayName(); name != "" {
			parts = append(parts, fmt.Sprintf("The caller is a registered user named %s.", name))
		} else {
			parts = append(parts, "The caller is a registered user.")
		}
	}
	if r := state.Inner.AnalyticsTimeRange; r != nil {
		parts = append(parts, fmt.Sprintf("The previous request covered %s to %s.", r.From, r.To))
	}
	return strings.Join(parts, " ")
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
