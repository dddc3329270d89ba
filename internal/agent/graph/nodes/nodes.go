package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/legalvoice-orchestrator/server/internal/agent/graph/conversations"
	"github.com/legalvoice-orchestrator/server/internal/agent/graph/route"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

const defaultActiveCasesLimit = 10

// Deps are the collaborators the node behaviors delegate I/O to.
type Deps struct {
	Classifier       model.IntentClassifier
	Extractor        model.DateRangeExtractor
	Synthesizer      model.ResponseSynthesizer
	Analytics        model.AnalyticsSource
	Directory        model.CallerDirectory
	MessagesManager  *conversations.MessagesManager
	ActiveCasesLimit int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Nodes implements every behavior of the dialogue graph. Each method takes
// the turn state, mutates it in place and returns it.
type Nodes struct {
	deps Deps
}

func New(deps Deps) (*Nodes, error) {
	switch {
	case deps.Classifier == nil:
		return nil, fmt.Errorf("intent classifier is nil")
	case deps.Extractor == nil:
		return nil, fmt.Errorf("date range extractor is nil")
	case deps.Synthesizer == nil:
		return nil, fmt.Errorf("response synthesizer is nil")
	case deps.Analytics == nil:
		return nil, fmt.Errorf("analytics source is nil")
	case deps.Directory == nil:
		return nil, fmt.Errorf("caller directory is nil")
	case deps.MessagesManager == nil:
		return nil, fmt.Errorf("messages manager is nil")
	}
	if deps.ActiveCasesLimit <= 0 {
		deps.ActiveCasesLimit = defaultActiveCasesLimit
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Nodes{deps: deps}, nil
}

// ================ Intent detection ================

// DetectIntent classifies the latest utterance. A classifier failure fails
// the turn; an unknown label becomes unsupported.
func (n *Nodes) DetectIntent(ctx context.Context, s *model.TurnState) (*model.TurnState, error) {
	in := n.deps.MessagesManager.BuildClassifierInput(s)
	raw, err := n.deps.Classifier.Classify(ctx, in.Snippet, in.LastUtterance, in.ContextSuffix)
	if err != nil {
		logx.Error().Err(err).
			Str("conversation_id", s.ConversationID).
			Str("node", route.NodeDetectIntent).
			Msg("Intent classification failed")
		return nil, fmt.Errorf("detect intent: %w", err)
	}
	s.CurrentIntent = model.ParseIntent(raw)
	logx.Debug().
		Str("conversation_id", s.ConversationID).
		Str("node", route.NodeDetectIntent).
		Str("raw_label", raw).
		Str("intent", string(s.CurrentIntent)).
		Msg("Intent detected")
	return s, nil
}

// ================ Canned terminals ================

// ThanksEnd closes the conversation; the synthesizer phrases the goodbye.
func (n *Nodes) ThanksEnd(_ context.Context, s *model.TurnState) (*model.TurnState, error) {
	setCanned(s, ThanksGoodbye)
	return s, nil
}

// PoliteRejection declines anything outside the analytics scope.
func (n *Nodes) PoliteRejection(_ context.Context, s *model.TurnState) (*model.TurnState, error) {
	setCanned(s, PoliteRejection)
	logx.Debug().
		Str("conversation_id", s.ConversationID).
		Str("node", route.NodePoliteRejection).
		Str("intent", string(s.CurrentIntent)).
		Msg("Request declined")
	return s, nil
}

// setCanned stores text as the provisional response for the synthesizer.
func setCanned(s *model.TurnState, text string) {
	s.AssistantResponse = text
	s.ClearOutputs()
}

// finish stores text as the final response of a turn that skips synthesis.
func finish(s *model.TurnState, text string) {
	s.SetOutputs(model.Rendering{Voice: text, Text: text})
}
