package parsers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxErrSnippet = 200       // limit error snippet size
)

// noneMarker is what the date prompt answers when there is no temporal cue.
const noneMarker = "NONE"

var (
	fencePattern  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

type rawRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ParseDateRange reads the date extractor completion. It returns (nil, nil)
// for an explicit NONE and an error describing why anything else was rejected.
// Callers treat both the same way: no usable range.
func ParseDateRange(content string) (*model.DateRange, error) {
	content = clean(content, "date_parser")
	if content == "" {
		return nil, fmt.Errorf("empty completion")
	}
	if strings.EqualFold(strings.Trim(content, "\"'. "), noneMarker) {
		return nil, nil
	}

	obj := objectPattern.FindString(content)
	if obj == "" {
		return nil, fmt.Errorf("no json object in %q", safeSnippet(content))
	}
	var raw rawRange
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, fmt.Errorf("decode date range %q: %w", safeSnippet(obj), err)
	}

	r := model.DateRange{From: strings.TrimSpace(raw.From), To: strings.TrimSpace(raw.To)}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseRendering reads a synthesis completion of the form
// {"voice_output": "...", "text_output": "..."}. Anything that does not decode
// is used verbatim on both channels; a missing channel borrows the other one.
func ParseRendering(content string) model.Rendering {
	content = clean(content, "rendering_parser")
	if content == "" {
		return model.Rendering{}
	}

	var r model.Rendering
	obj := objectPattern.FindString(content)
	if obj == "" || json.Unmarshal([]byte(obj), &r) != nil {
		logx.Debug().
			Str("component", "rendering_parser").
			Str("content", safeSnippet(content)).
			Msg("completion is not json; using raw text on both channels")
		return model.Rendering{Voice: content, Text: content}
	}

	r.Voice = strings.TrimSpace(r.Voice)
	r.Text = strings.TrimSpace(r.Text)
	switch {
	case r.Voice == "" && r.Text == "":
		return model.Rendering{Voice: content, Text: content}
	case r.Voice == "":
		r.Voice = r.Text
	case r.Text == "":
		r.Text = r.Voice
	}
	return r
}

// ParseIntentLabel trims a classifier completion down to its label.
func ParseIntentLabel(content string) string {
	content = clean(content, "intent_parser")
	if i := strings.IndexAny(content, "\r\n"); i >= 0 {
		content = content[:i]
	}
	return strings.TrimSpace(content)
}

// --- helpers ---

// clean trims, caps size and unwraps a markdown code fence.
func clean(content, component string) string {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", component).
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}
	content = strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}
	return content
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
