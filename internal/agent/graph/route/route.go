// Package route holds the pure decision functions behind every conditional
// edge of the dialogue graph. None of them perform I/O or mutate state.
package route

import (
	"regexp"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

// Node names. End is returned when the turn finishes without further nodes.
const (
	NodeLookup            = "lookup"
	NodeGreetPersonalized = "greet_personalized"
	NodeGreetGeneral      = "greet_general"
	NodeMentionServices   = "mention_services"
	NodeConfirmIdentity   = "confirm_identity"
	NodeIdentityFailedEnd = "identity_failed_end"
	NodeDetectIntent      = "detect_intent"
	NodeThanksEnd         = "thanks_end"
	NodePoliteRejection   = "polite_rejection"
	NodeAnalyticsSummary  = "analytics_summary"
	NodeActiveCases       = "active_cases"
	NodeSynthesizer       = "synthesizer"

	End = "end"
)

// Entry picks the first node of a turn.
func Entry(s *model.TurnState) string {
	if last := s.LastMessage(); last != nil && last.Role == schema.User {
		return NodeDetectIntent
	}
	if s.Inner.IterationCount == 1 {
		return NodeLookup
	}
	if s.Inner.CurrentStep.IsIdentityConfirmation() {
		return NodeConfirmIdentity
	}
	return NodeDetectIntent
}

// AfterLookup greets a known caller by name and everyone else generically.
func AfterLookup(s *model.TurnState) string {
	if s.Registered() || s.Inner.Caller != nil {
		return NodeGreetPersonalized
	}
	return NodeGreetGeneral
}

func AfterConfirmIdentity(s *model.TurnState) string {
	if s.Inner.IdentityFailedEnd {
		return NodeIdentityFailedEnd
	}
	return End
}

// AfterMentionServices ends the opening turn. On later turns the greeting was
// either requested by the intent router, in which case it still needs
// synthesis, or it was not and the utterance has yet to be classified.
func AfterMentionServices(s *model.TurnState) string {
	if s.Inner.IterationCount == 1 {
		return End
	}
	if s.CurrentIntent != "" {
		return NodeSynthesizer
	}
	return NodeDetectIntent
}

var intentTargets = map[model.Intent]string{
	model.IntentAnalyticsSummary: NodeAnalyticsSummary,
	model.IntentActiveCases:      NodeActiveCases,
	model.IntentGreeting:         NodeGreetGeneral,
	model.IntentNoRequest:        NodeThanksEnd,
}

// Intent dispatches a classified intent. Labels without a dedicated target,
// and no_request without an explicit closing phrase, get a polite rejection.
func Intent(intent model.Intent, lastUserContent string) string {
	next, ok := intentTargets[intent]
	if !ok {
		return NodePoliteRejection
	}
	if next == NodeThanksEnd && !IsExplicitClosing(lastUserContent) {
		return NodePoliteRejection
	}
	return next
}

var closingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^no(\s|,|\.|$)`),
	regexp.MustCompile(`nothing\s*else`),
	regexp.MustCompile(`that'?s\s*all`),
	regexp.MustCompile(`goodbye|bye\b`),
	regexp.MustCompile(`that'?s\s*it`),
	regexp.MustCompile(`no\s*thanks`),
	regexp.MustCompile(`i'?m\s*done`),
	regexp.MustCompile(`all\s*done`),
	regexp.MustCompile(`nothing\s*more`),
	regexp.MustCompile(`not\s*really`),
	regexp.MustCompile(`we're\s*good|we\s*are\s*good`),
	regexp.MustCompile(`that\s*will\s*be\s*all`),
	regexp.MustCompile(`no\s*that'?s\s*(it|all)`),
}

// IsExplicitClosing reports whether an utterance clearly ends the request.
func IsExplicitClosing(utterance string) bool {
	t := strings.Join(strings.Fields(strings.ToLower(utterance)), " ")
	if t == "" {
		return false
	}
	for _, p := range closingPatterns {
		if p.MatchString(t) {
			return true
		}
	}
	return false
}
