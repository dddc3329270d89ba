package nodes

import (
	"context"
	"fmt"

	"github.com/legalvoice-orchestrator/server/internal/agent/graph/route"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

// resolveRange prefers a range extracted from the latest utterance and falls
// back to the one carried over from earlier turns. It returns nil when neither
// exists. Only an extractor call failure is returned as an error.
func (n *Nodes) resolveRange(ctx context.Context, s *model.TurnState, node string) (*model.DateRange, error) {
	rng, err := n.deps.Extractor.ExtractRange(ctx, s.LastUserContent(), n.deps.Now())
	if err != nil {
		logx.Error().Err(err).
			Str("conversation_id", s.ConversationID).
			Str("node", node).
			Msg("Date range extraction failed")
		return nil, fmt.Errorf("%s: extract date range: %w", node, err)
	}
	if rng != nil {
		return rng, nil
	}
	if carried := s.Inner.AnalyticsTimeRange; carried != nil {
		r := *carried
		return &r, nil
	}
	return nil, nil
}

// AnalyticsSummary fetches the firm summary for the resolved range. Without a
// range it records missing context so the synthesizer asks for a period.
func (n *Nodes) AnalyticsSummary(ctx context.Context, s *model.TurnState) (*model.TurnState, error) {
	s.Inner.ActiveCasesRaw = nil

	rng, err := n.resolveRange(ctx, s, route.NodeAnalyticsSummary)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		s.Inner.AnalyticsSummaryRaw = model.MissingContext[model.AnalyticsSummary]()
		s.AssistantResponse = ""
		s.ClearOutputs()
		logx.Debug().
			Str("conversation_id", s.ConversationID).
			Str("node", route.NodeAnalyticsSummary).
			Msg("No time period available; asking for clarification")
		return s, nil
	}

	summary, err := n.deps.Analytics.AnalyticsSummary(ctx, rng.From, rng.To)
	if err != nil {
		logx.Warn().Err(err).
			Str("conversation_id", s.ConversationID).
			Str("node", route.NodeAnalyticsSummary).
			Str("from", rng.From).
			Str("to", rng.To).
			Msg("Legal API analytics summary failed")
		s.Inner.AnalyticsSummaryRaw = model.FetchFailed[model.AnalyticsSummary](LegalAPIFailure)
		setCanned(s, AnalyticsApology)
		return s, nil
	}

	s.Inner.AnalyticsSummaryRaw = model.Fetched(summary)
	s.Inner.AnalyticsTimeRange = rng
	s.AssistantResponse = ""
	s.ClearOutputs()
	return s, nil
}

// ActiveCases fetches one page of active cases, defaulting to the current
// calendar year when no range is available.
func (n *Nodes) ActiveCases(ctx context.Context, s *model.TurnState) (*model.TurnState, error) {
	s.Inner.AnalyticsSummaryRaw = nil

	rng, err := n.resolveRange(ctx, s, route.NodeActiveCases)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		year := model.CalendarYear(n.deps.Now())
		rng = &year
	}

	page, err := n.deps.Analytics.ActiveCases(ctx, rng.From, rng.To, n.deps.ActiveCasesLimit)
	if err != nil {
		logx.Warn().Err(err).
			Str("conversation_id", s.ConversationID).
			Str("node", route.NodeActiveCases).
			Str("from", rng.From).
			Str("to", rng.To).
			Msg("Legal API active cases failed")
		s.Inner.ActiveCasesRaw = model.FetchFailed[model.ActiveCasesPage](LegalAPIFailure)
		setCanned(s, ActiveCasesApology)
		return s, nil
	}

	s.Inner.ActiveCasesRaw = model.Fetched(page)
	s.Inner.AnalyticsTimeRange = rng
	s.AssistantResponse = ""
	s.ClearOutputs()
	return s, nil
}
