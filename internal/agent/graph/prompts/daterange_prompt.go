package prompts

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

var dateRangeSystemPrompt = mustTemplate("daterange_prompt.txt")

// RenderDateRange renders the extractor prompt anchored on today.
func RenderDateRange(ctx context.Context, utterance string, today time.Time) ([]*schema.Message, error) {
	return render(ctx, "date_range", map[string]any{
		"Today":     today.Format(model.DateLayout),
		"Weekday":   today.Weekday().String(),
		"Utterance": utterance,
	},
		schema.SystemMessage(dateRangeSystemPrompt),
		schema.UserMessage("{{.Utterance}}"),
	)
}
