package prompts

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

func TestRenderIntent(t *testing.T) {
	msgs, err := RenderIntent(context.Background(), "User: hi", "show active cases", "The caller is a registered user.")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, schema.System, msgs[0].Role)
	for _, label := range model.Intents {
		assert.Contains(t, msgs[0].Content, "- "+string(label)+"\n")
	}
	assert.Contains(t, msgs[0].Content, "Context: The caller is a registered user.")

	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "User: hi")
	assert.Contains(t, msgs[1].Content, "Latest utterance: show active cases")
}

func TestRenderIntentWithoutContext(t *testing.T) {
	msgs, err := RenderIntent(context.Background(), "", "hello", "")
	require.NoError(t, err)
	assert.NotContains(t, msgs[0].Content, "Context:")
	assert.Contains(t, msgs[1].Content, "(no prior messages)")
}

func TestRenderDateRange(t *testing.T) {
	today := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	msgs, err := RenderDateRange(context.Background(), "what about {{last}} year", today)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "Today is 2026-10-17 (Saturday)")
	assert.Equal(t, "what about {{last}} year", msgs[1].Content)
}

func TestRenderAnalyticsSynthesis(t *testing.T) {
	summary := &model.AnalyticsSummary{ActiveCasesCount: "42"}
	rng := &model.DateRange{From: "2025-01-01", To: "2025-12-31"}

	msgs, err := RenderAnalyticsSynthesis(context.Background(), "how many active cases", summary, rng)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "The data covers 2025-01-01 to 2025-12-31.")
	assert.Contains(t, msgs[0].Content, `"activeCasesCount":"42"`)
	assert.Contains(t, msgs[0].Content, "Caller question: how many active cases")

	msgs, err = RenderAnalyticsSynthesis(context.Background(), "q", summary, nil)
	require.NoError(t, err)
	assert.NotContains(t, msgs[0].Content, "The data covers")
}

func TestRenderActiveCasesSynthesis(t *testing.T) {
	page := &model.ActiveCasesPage{Data: []model.ActiveCase{{CaseID: "7", ClientName: "Ada Diaz", CasePhase: "Discovery"}}}
	msgs, err := RenderActiveCasesSynthesis(context.Background(), "list cases", page, &model.DateRange{From: "2026-01-01", To: "2026-12-31"})
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Content, `"client_name":"Ada Diaz"`)
	assert.Contains(t, msgs[0].Content, "between 2026-01-01 and 2026-12-31")
}

func TestRenderGenericSynthesis(t *testing.T) {
	msgs, err := RenderGenericSynthesis(context.Background(), "Thanks for calling.", model.OutputModeText)
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Content, "Thanks for calling.")
	assert.Contains(t, msgs[0].Content, "the primary written reply")

	msgs, err = RenderGenericSynthesis(context.Background(), "Thanks for calling.", model.OutputModeVoiceText)
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Content, "a written version of the same reply")
}
