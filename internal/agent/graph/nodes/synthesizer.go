package nodes

import (
	"context"
	"fmt"

	"github.com/legalvoice-orchestrator/server/internal/agent/graph/route"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

// Synthesizer turns whichever raw outcome the turn produced, or the canned
// response of a terminal node, into voice and text renderings. The final
// response is the text rendering in text mode and the voice rendering
// otherwise.
func (n *Nodes) Synthesizer(ctx context.Context, s *model.TurnState) (*model.TurnState, error) {
	inner := &s.Inner
	utterance := s.LastUserContent()

	var (
		r    model.Rendering
		err  error
		kind string
	)
	switch {
	case inner.AnalyticsSummaryRaw != nil && inner.AnalyticsSummaryRaw.MissingContext:
		kind = "clarification"
		r = model.Rendering{Voice: MissingContextClarification, Text: MissingContextClarification}

	case inner.AnalyticsSummaryRaw.HasPayload():
		kind = "analytics"
		r, err = n.deps.Synthesizer.SynthesizeAnalytics(ctx, utterance, inner.AnalyticsSummaryRaw.Payload, inner.AnalyticsTimeRange)

	case inner.ActiveCasesRaw.HasPayload():
		kind = "active_cases"
		r, err = n.deps.Synthesizer.SynthesizeActiveCases(ctx, utterance, inner.ActiveCasesRaw.Payload, inner.AnalyticsTimeRange)

	case s.AssistantResponse == "":
		logx.Warn().
			Str("conversation_id", s.ConversationID).
			Str("node", route.NodeSynthesizer).
			Msg("Nothing to synthesize")
		return s, nil

	case alreadySynthesized(s):
		logx.Debug().
			Str("conversation_id", s.ConversationID).
			Str("node", route.NodeSynthesizer).
			Msg("Response already synthesized")
		return s, nil

	default:
		kind = "generic"
		r, err = n.deps.Synthesizer.SynthesizeGeneric(ctx, s.AssistantResponse, inner.OutputMode)
	}
	if err != nil {
		logx.Error().Err(err).
			Str("conversation_id", s.ConversationID).
			Str("node", route.NodeSynthesizer).
			Str("kind", kind).
			Msg("Synthesis failed")
		return nil, fmt.Errorf("synthesize %s: %w", kind, err)
	}

	s.SetOutputs(r)
	logx.Debug().
		Str("conversation_id", s.ConversationID).
		Str("node", route.NodeSynthesizer).
		Str("kind", kind).
		Str("output_mode", string(inner.OutputMode)).
		Msg("Response synthesized")
	return s, nil
}

// alreadySynthesized reports whether the current response is the selected
// rendering of a previous synthesis.
func alreadySynthesized(s *model.TurnState) bool {
	voice, text := s.Inner.VoiceOutput, s.Inner.TextOutput
	if voice == nil || text == nil {
		return false
	}
	if s.Inner.OutputMode == model.OutputModeText {
		return s.AssistantResponse == *text
	}
	return s.AssistantResponse == *voice
}
