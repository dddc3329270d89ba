package prompts

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

var (
	analyticsSystemPrompt   = mustTemplate("synthesis_analytics.txt")
	activeCasesSystemPrompt = mustTemplate("synthesis_active_cases.txt")
	genericSystemPrompt     = mustTemplate("synthesis_generic.txt")
)

func rangeVars(vars map[string]any, rng *model.DateRange) map[string]any {
	vars["HasRange"] = rng != nil
	if rng != nil {
		vars["From"] = rng.From
		vars["To"] = rng.To
	}
	return vars
}

// RenderAnalyticsSynthesis renders the prompt that verbalises an analytics summary.
func RenderAnalyticsSynthesis(ctx context.Context, utterance string, summary *model.AnalyticsSummary, rng *model.DateRange) ([]*schema.Message, error) {
	data, err := compactJSON(summary)
	if err != nil {
		return nil, fmt.Errorf("analytics prompt data: %w", err)
	}
	vars := rangeVars(map[string]any{"Utterance": utterance, "Data": data}, rng)
	return render(ctx, "analytics_synthesis", vars, schema.SystemMessage(analyticsSystemPrompt))
}

// RenderActiveCasesSynthesis renders the prompt that verbalises a page of active cases.
func RenderActiveCasesSynthesis(ctx context.Context, utterance string, page *model.ActiveCasesPage, rng *model.DateRange) ([]*schema.Message, error) {
	data, err := compactJSON(page)
	if err != nil {
		return nil, fmt.Errorf("active cases prompt data: %w", err)
	}
	vars := rangeVars(map[string]any{"Utterance": utterance, "Data": data}, rng)
	return render(ctx, "active_cases_synthesis", vars, schema.SystemMessage(activeCasesSystemPrompt))
}

// RenderGenericSynthesis renders the prompt that rewrites a canned reply.
func RenderGenericSynthesis(ctx context.Context, text string, mode model.OutputMode) ([]*schema.Message, error) {
	return render(ctx, "generic_synthesis", map[string]any{
		"Text":     text,
		"TextMode": mode == model.OutputModeText,
	}, schema.SystemMessage(genericSystemPrompt))
}
