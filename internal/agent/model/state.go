package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Step tags the identity confirmation sub-flow.
type Step string

const (
	StepNone              Step = ""
	StepAskAreYouName     Step = "ask_are_you_name"
	StepAskDOB            Step = "ask_dob"
	StepIdentityConfirmed Step = "identity_confirmed"
)

// IsIdentityConfirmation reports whether s resumes the confirmation sub-flow.
func (s Step) IsIdentityConfirmation() bool {
	return s == StepAskAreYouName || s == StepAskDOB
}

// OutputMode selects which rendering becomes the final assistant response.
type OutputMode string

const (
	OutputModeVoiceText OutputMode = "voiceText"
	OutputModeText      OutputMode = "text"
)

// ParseOutputMode maps anything but "text" to the voice default.
func ParseOutputMode(v string) OutputMode {
	if strings.EqualFold(strings.TrimSpace(v), string(OutputModeText)) {
		return OutputModeText
	}
	return OutputModeVoiceText
}

// InnerState is the per-conversation scratchpad carried across turns.
type InnerState struct {
	IterationCount    int        `json:"iteration_count"`
	CurrentStep       Step       `json:"current_step,omitempty"`
	IsRegistered      *bool      `json:"is_registered,omitempty"`
	IdentityFailedEnd bool       `json:"identity_failed_end,omitempty"`
	Caller            *Caller    `json:"caller,omitempty"`
	OutputMode        OutputMode `json:"output_mode,omitempty"`

	// AnalyticsTimeRange persists across turns until replaced.
	AnalyticsTimeRange *DateRange `json:"analytics_time_range,omitempty"`

	// At most one of these is populated per turn.
	AnalyticsSummaryRaw *FetchOutcome[AnalyticsSummary] `json:"analytics_summary_raw,omitempty"`
	ActiveCasesRaw      *FetchOutcome[ActiveCasesPage]  `json:"active_cases_raw,omitempty"`

	VoiceOutput *string `json:"voice_output"`
	TextOutput  *string `json:"text_output"`
}

// TurnState is the single mutable record of one conversation. It is owned by
// the caller between turns and by exactly one in-flight turn during a run.
type TurnState struct {
	ConversationID    string            `json:"conversation_id"`
	CallerPhone       string            `json:"caller_phone,omitempty"`
	Messages          []*schema.Message `json:"messages"`
	AssistantResponse string            `json:"assistant_response"`
	CurrentIntent     Intent            `json:"current_intent,omitempty"`
	Inner             InnerState        `json:"state"`
}

// NewTurnState returns a fresh state for a conversation.
func NewTurnState(conversationID, callerPhone string) *TurnState {
	return &TurnState{
		ConversationID: conversationID,
		CallerPhone:    callerPhone,
		Messages:       []*schema.Message{},
		Inner:          InnerState{OutputMode: OutputModeVoiceText},
	}
}

// Clone returns a deep copy so a turn never mutates the caller's prior state.
func (s *TurnState) Clone() (*TurnState, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("clone turn state: %w", err)
	}
	var out TurnState
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("clone turn state: %w", err)
	}
	if out.Messages == nil {
		out.Messages = []*schema.Message{}
	}
	return &out, nil
}

// LastMessage returns the most recent message or nil.
func (s *TurnState) LastMessage() *schema.Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i] != nil {
			return s.Messages[i]
		}
	}
	return nil
}

// LastUserContent returns the trimmed content of the most recent user message.
func (s *TurnState) LastUserContent() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m != nil && m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}

// Registered reports whether the lookup found the caller.
func (s *TurnState) Registered() bool {
	return s.Inner.IsRegistered != nil && *s.Inner.IsRegistered
}

// ResetTurn clears the fields that are only valid for a single turn.
func (s *TurnState) ResetTurn() {
	s.AssistantResponse = ""
	s.CurrentIntent = ""
	s.Inner.AnalyticsSummaryRaw = nil
	s.Inner.ActiveCasesRaw = nil
}

// ClearOutputs drops stale voice/text renderings.
func (s *TurnState) ClearOutputs() {
	s.Inner.VoiceOutput = nil
	s.Inner.TextOutput = nil
}

// SetOutputs stores both renderings and selects the final response by mode.
func (s *TurnState) SetOutputs(r Rendering) {
	voice, text := r.Voice, r.Text
	s.Inner.VoiceOutput = &voice
	s.Inner.TextOutput = &text
	if s.Inner.OutputMode == OutputModeText {
		s.AssistantResponse = text
	} else {
		s.AssistantResponse = voice
	}
}

// Rendering is the dual-channel output of synthesis.
type Rendering struct {
	Voice string `json:"voice_output"`
	Text  string `json:"text_output"`
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}
