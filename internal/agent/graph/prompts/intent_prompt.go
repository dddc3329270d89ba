package prompts

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

var (
	intentSystemPrompt = mustTemplate("intent_prompt.txt")
	intentUserPrompt   = mustTemplate("intent_user.txt")
)

// RenderIntent renders the classifier system prompt and the conversation turn.
func RenderIntent(ctx context.Context, snippet, lastUtterance, contextSuffix string) ([]*schema.Message, error) {
	if snippet == "" {
		snippet = "(no prior messages)"
	}
	return render(ctx, "intent", map[string]any{
		"Labels":        model.Intents,
		"ContextSuffix": contextSuffix,
		"Snippet":       snippet,
		"LastUtterance": lastUtterance,
	},
		schema.SystemMessage(intentSystemPrompt),
		schema.UserMessage(intentUserPrompt),
	)
}
