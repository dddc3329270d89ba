package nodes

import (
	"context"
	"fmt"

	"github.com/legalvoice-orchestrator/server/internal/agent/graph/route"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

// Lookup resolves the caller by phone. Lookup failures are never fatal: the
// caller is treated as unregistered.
func (n *Nodes) Lookup(ctx context.Context, s *model.TurnState) (*model.TurnState, error) {
	caller, err := n.deps.Directory.LookupCaller(ctx, s.CallerPhone)
	if err != nil {
		logx.Warn().Err(err).
			Str("conversation_id", s.ConversationID).
			Str("node", route.NodeLookup).
			Msg("Caller lookup failed; continuing as unregistered")
		caller = nil
	}
	s.Inner.Caller = caller
	s.Inner.IsRegistered = model.Bool(caller != nil)
	logx.Debug().
		Str("conversation_id", s.ConversationID).
		Str("node", route.NodeLookup).
		Bool("registered", caller != nil).
		Msg("Caller lookup done")
	return s, nil
}

// GreetPersonalized welcomes a registered caller and ends the turn.
func (n *Nodes) GreetPersonalized(_ context.Context, s *model.TurnState) (*model.TurnState, error) {
	if name := s.Inner.Caller.DisplayName(); name != "" {
		finish(s, fmt.Sprintf(greetingPersonalized, name))
	} else {
		finish(s, GreetingReturning)
	}
	return s, nil
}

// GreetGeneral opens with a generic greeting; MentionServices completes it.
func (n *Nodes) GreetGeneral(_ context.Context, s *model.TurnState) (*model.TurnState, error) {
	setCanned(s, GreetingGeneral)
	return s, nil
}

// MentionServices appends what the assistant can do. On the opening turn the
// greeting is final; later it goes through synthesis or intent detection.
func (n *Nodes) MentionServices(_ context.Context, s *model.TurnState) (*model.TurnState, error) {
	text := ServicesMention
	if s.AssistantResponse != "" {
		text = s.AssistantResponse + " " + ServicesMention
	}
	if route.AfterMentionServices(s) == route.End {
		finish(s, text)
	} else {
		setCanned(s, text)
	}
	return s, nil
}

// ConfirmIdentity advances the name and date-of-birth verification using the
// latest caller answer. Failure only sets IdentityFailedEnd.
//
// The node only runs on platform-initiated turns (a turn ending in a user
// message routes to detect_intent), so the answer checked is the utterance
// recorded on the previous turn.
func (n *Nodes) ConfirmIdentity(_ context.Context, s *model.TurnState) (*model.TurnState, error) {
	s.Inner.IdentityFailedEnd = false
	answer := s.LastUserContent()
	log := logx.Debug().
		Str("conversation_id", s.ConversationID).
		Str("node", route.NodeConfirmIdentity).
		Str("step", string(s.Inner.CurrentStep))

	switch s.Inner.CurrentStep {
	case model.StepAskAreYouName:
		affirmative, ok := classifyAnswer(answer)
		if !ok || !affirmative {
			s.Inner.IdentityFailedEnd = true
			log.Msg("Caller did not confirm name")
			return s, nil
		}
		if s.Inner.Caller == nil || s.Inner.Caller.DOB == "" {
			confirmIdentity(s)
			log.Msg("Name confirmed; no date of birth on record")
			return s, nil
		}
		s.Inner.CurrentStep = model.StepAskDOB
		finish(s, AskDOB)
		log.Msg("Name confirmed; asking date of birth")

	case model.StepAskDOB:
		if s.Inner.Caller == nil || !dobMatches(answer, s.Inner.Caller.DOB) {
			s.Inner.IdentityFailedEnd = true
			log.Msg("Date of birth did not match")
			return s, nil
		}
		confirmIdentity(s)
		log.Msg("Identity confirmed")

	default:
		log.Msg("No identity step pending")
	}
	return s, nil
}

func confirmIdentity(s *model.TurnState) {
	s.Inner.CurrentStep = model.StepIdentityConfirmed
	if name := s.Inner.Caller.DisplayName(); name != "" {
		finish(s, fmt.Sprintf(identityConfirmed, name))
		return
	}
	finish(s, IdentityConfirmedNoName)
}

// IdentityFailedEnd apologises and ends the turn after a failed verification.
func (n *Nodes) IdentityFailedEnd(_ context.Context, s *model.TurnState) (*model.TurnState, error) {
	s.Inner.CurrentStep = model.StepNone
	finish(s, IdentityFailed)
	logx.Info().
		Str("conversation_id", s.ConversationID).
		Str("node", route.NodeIdentityFailedEnd).
		Msg("Identity verification failed")
	return s, nil
}
