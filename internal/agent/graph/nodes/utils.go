package nodes

import (
	"regexp"
	"strings"
	"time"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

// ===== Small helpers to keep identity handling simple/readable =====
var (
	affirmativePattern = regexp.MustCompile(`^(yes|yeah|yep|yup|correct|right|sure|speaking|that's me|thats me|it is|this is (he|she|they|me)|affirmative)\b`)
	negativePattern    = regexp.MustCompile(`^(no|nope|nah|wrong|incorrect|not me|that's not me|thats not me)\b`)
	ordinalSuffix      = regexp.MustCompile(`(\d+)(st|nd|rd|th)\b`)
)

// dobLayouts lists the spoken and written forms accepted for a date of birth.
var dobLayouts = []string{
	model.DateLayout,
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

func normalizeUtterance(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".!?")
	return strings.Join(strings.Fields(s), " ")
}

// classifyAnswer reports whether a yes/no answer is affirmative. ok is false
// when the answer is neither.
func classifyAnswer(utterance string) (affirmative, ok bool) {
	t := normalizeUtterance(utterance)
	switch {
	case negativePattern.MatchString(t):
		return false, true
	case affirmativePattern.MatchString(t):
		return true, true
	}
	return false, false
}

// parseDOB parses a date of birth in any of dobLayouts.
func parseDOB(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", " ")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dobMatches compares a spoken date of birth with the one on record.
func dobMatches(spoken, onRecord string) bool {
	// Timestamps on record keep only their date part.
	if n := len(model.DateLayout); len(onRecord) > n && onRecord[n] == 'T' {
		onRecord = onRecord[:n]
	}
	want, ok := parseDOB(onRecord)
	if !ok {
		return false
	}
	got, ok := parseDOB(extractDateText(spoken))
	if !ok {
		return false
	}
	return got.Equal(want)
}

var leadIn = regexp.MustCompile(`(?i)^(it'?s|it is|my date of birth is|my birthday is|i was born on|born on|dob is)\s+`)

func extractDateText(s string) string {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), ".!"))
	return leadIn.ReplaceAllString(s, "")
}
