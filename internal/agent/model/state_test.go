package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnStateCloneIsDeep(t *testing.T) {
	s := NewTurnState("call-1", "+15550100")
	s.Messages = append(s.Messages, schema.UserMessage("how did we do last quarter"))
	s.Inner.IsRegistered = Bool(true)
	s.Inner.AnalyticsTimeRange = &DateRange{From: "2026-01-01", To: "2026-03-31"}
	s.Inner.AnalyticsSummaryRaw = Fetched(&AnalyticsSummary{ProspectCount: "12"})

	c, err := s.Clone()
	require.NoError(t, err)
	require.NotNil(t, c)

	c.Messages[0].Content = "changed"
	c.Inner.AnalyticsTimeRange.From = "2025-01-01"
	*c.Inner.IsRegistered = false

	assert.Equal(t, "how did we do last quarter", s.Messages[0].Content)
	assert.Equal(t, "2026-01-01", s.Inner.AnalyticsTimeRange.From)
	assert.True(t, s.Registered())
	assert.Equal(t, FlexString("12"), c.Inner.AnalyticsSummaryRaw.Payload.ProspectCount)
}

func TestCloneNil(t *testing.T) {
	var s *TurnState
	c, err := s.Clone()
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestLastUserContent(t *testing.T) {
	s := NewTurnState("c", "")
	assert.Equal(t, "", s.LastUserContent())
	assert.Nil(t, s.LastMessage())

	s.Messages = []*schema.Message{
		schema.UserMessage("  first  "),
		schema.AssistantMessage("reply", nil),
	}
	assert.Equal(t, "first", s.LastUserContent())
	assert.Equal(t, schema.Assistant, s.LastMessage().Role)
}

func TestSetOutputsSelectsByMode(t *testing.T) {
	s := NewTurnState("c", "")
	s.SetOutputs(Rendering{Voice: "spoken", Text: "written"})
	assert.Equal(t, "spoken", s.AssistantResponse)

	s.Inner.OutputMode = OutputModeText
	s.SetOutputs(Rendering{Voice: "spoken", Text: "written"})
	assert.Equal(t, "written", s.AssistantResponse)
	assert.Equal(t, "spoken", *s.Inner.VoiceOutput)
}

func TestResetTurnKeepsCarriedRange(t *testing.T) {
	s := NewTurnState("c", "")
	s.AssistantResponse = "x"
	s.CurrentIntent = IntentActiveCases
	s.Inner.ActiveCasesRaw = FetchFailed[ActiveCasesPage]("boom")
	s.Inner.AnalyticsTimeRange = &DateRange{From: "2026-01-01", To: "2026-12-31"}

	s.ResetTurn()

	assert.Empty(t, s.AssistantResponse)
	assert.Empty(t, s.CurrentIntent)
	assert.Nil(t, s.Inner.ActiveCasesRaw)
	assert.NotNil(t, s.Inner.AnalyticsTimeRange)
}

func TestParseOutputMode(t *testing.T) {
	assert.Equal(t, OutputModeText, ParseOutputMode("text"))
	assert.Equal(t, OutputModeText, ParseOutputMode(" TEXT "))
	assert.Equal(t, OutputModeVoiceText, ParseOutputMode("voiceText"))
	assert.Equal(t, OutputModeVoiceText, ParseOutputMode(""))
}

func TestDateRangeHelpers(t *testing.T) {
	assert.Equal(t, DateRange{From: "2026-01-01", To: "2026-12-31"}, CalendarYear(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)))
	assert.NoError(t, DateRange{From: "2026-01-01", To: "2026-01-01"}.Validate())
	assert.Error(t, DateRange{From: "2026-02-01", To: "2026-01-01"}.Validate())
	assert.Error(t, DateRange{From: "last year", To: "2026-01-01"}.Validate())
}

func TestFlexStringDecodesNumbersAndStrings(t *testing.T) {
	var c ActiveCase
	require.NoError(t, json.Unmarshal([]byte(`{"case_id": 1042, "client_name": "Ana", "case_phase": "Litigation", "projected_value": "$50,000"}`), &c))
	assert.Equal(t, FlexString("1042"), c.CaseID)
	assert.Equal(t, FlexString("$50,000"), c.ProjectedValue)

	var f FlexString
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Equal(t, FlexString(""), f)
	assert.Error(t, json.Unmarshal([]byte(`{}`), &f))
}

func TestFetchOutcome(t *testing.T) {
	var nilOutcome *FetchOutcome[AnalyticsSummary]
	assert.False(t, nilOutcome.HasPayload())
	assert.False(t, nilOutcome.Failed())

	assert.True(t, Fetched(&ActiveCasesPage{}).HasPayload())
	assert.True(t, FetchFailed[ActiveCasesPage]("x").Failed())
	assert.True(t, MissingContext[AnalyticsSummary]().MissingContext)
}

func TestComputeCost(t *testing.T) {
	in, out, total := ComputeCost(Usage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000}, ResolvePricing("gemini-2.5-flash"))
	assert.InDelta(t, 0.30, in, 1e-9)
	assert.InDelta(t, 2.50, out, 1e-9)
	assert.InDelta(t, 2.80, total, 1e-9)
	assert.Equal(t, Pricing{}, ResolvePricing("unknown"))
}
