package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *model.DateRange
		wantErr bool
	}{
		{"plain json", `{"from":"2025-01-01","to":"2025-12-31"}`, &model.DateRange{From: "2025-01-01", To: "2025-12-31"}, false},
		{"fenced json", "```json\n{\"from\": \"2026-03-01\", \"to\": \"2026-03-31\"}\n```", &model.DateRange{From: "2026-03-01", To: "2026-03-31"}, false},
		{"surrounding prose", `Sure: {"from":"2024-07-01","to":"2024-09-30"} hope that helps`, &model.DateRange{From: "2024-07-01", To: "2024-09-30"}, false},
		{"none", "NONE", nil, false},
		{"none lower with period", "none.", nil, false},
		{"empty", "   ", nil, true},
		{"prose only", "I am not sure", nil, true},
		{"bad date", `{"from":"2025-13-01","to":"2025-12-31"}`, nil, true},
		{"inverted", `{"from":"2025-12-31","to":"2025-01-01"}`, nil, true},
		{"missing to", `{"from":"2025-01-01"}`, nil, true},
		{"broken json", `{"from":"2025-01-01",`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateRange(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRendering(t *testing.T) {
	t.Run("both channels", func(t *testing.T) {
		got := ParseRendering(`{"voice_output":"Twelve cases.","text_output":"**12** cases"}`)
		assert.Equal(t, model.Rendering{Voice: "Twelve cases.", Text: "**12** cases"}, got)
	})

	t.Run("fenced", func(t *testing.T) {
		got := ParseRendering("```json\n{\"voice_output\":\"hi\",\"text_output\":\"hello\"}\n```")
		assert.Equal(t, model.Rendering{Voice: "hi", Text: "hello"}, got)
	})

	t.Run("missing channel borrows the other", func(t *testing.T) {
		got := ParseRendering(`{"voice_output":"only voice"}`)
		assert.Equal(t, model.Rendering{Voice: "only voice", Text: "only voice"}, got)

		got = ParseRendering(`{"text_output":"only text"}`)
		assert.Equal(t, model.Rendering{Voice: "only text", Text: "only text"}, got)
	})

	t.Run("raw text fallback", func(t *testing.T) {
		got := ParseRendering("  Thanks for calling.  ")
		assert.Equal(t, model.Rendering{Voice: "Thanks for calling.", Text: "Thanks for calling."}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, model.Rendering{}, ParseRendering(""))
	})
}

func TestParseIntentLabel(t *testing.T) {
	assert.Equal(t, "active_cases", ParseIntentLabel("  active_cases \n"))
	assert.Equal(t, "greeting", ParseIntentLabel("```\ngreeting\n```"))
	assert.Equal(t, "no_request", ParseIntentLabel("no_request\nbecause the caller said no"))
}

func TestCleanTruncatesLargeContent(t *testing.T) {
	got := clean(strings.Repeat("a", maxContentLen+10), "test")
	assert.Len(t, got, maxContentLen)
}
