package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	TTL string `envconfig:"CONVERSATION_TTL" default:"30m"`
	// SnippetMaxTurns bounds how many recent messages the intent classifier sees.
	SnippetMaxTurns int    `envconfig:"CONVERSATION_SNIPPET_MAX_TURNS" default:"6"`
	CallIDHeader    string `envconfig:"CALL_ID_HEADER" default:"x-vapi-call-id"`
	CallIDBodyPath  string `envconfig:"CALL_ID_BODY_PATH" default:"metadata.vapiCallId"`
	OutputMode      string `envconfig:"CONVERSATION_OUTPUT_MODE" default:"voiceText"`
	APICallLogTTL   string `envconfig:"CONVERSATION_API_CALL_LOG_TTL" default:"24h"`
}

// ParsedTTL returns TTL as a duration, falling back to 30 minutes.
func (c ConversationConfig) ParsedTTL() time.Duration {
	return parseDurationOr(c.TTL, 30*time.Minute)
}

// ParsedAPICallLogTTL returns APICallLogTTL as a duration, falling back to 24 hours.
func (c ConversationConfig) ParsedAPICallLogTTL() time.Duration {
	return parseDurationOr(c.APICallLogTTL, 24*time.Hour)
}

// ClassifierModelConfig configures the model shared by intent classification
// and date-range extraction. Both must be deterministic.
type ClassifierModelConfig struct {
	Model          string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens      int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"256"`
	Temperature    float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0"`
	ThinkingBudget int32   `envconfig:"CLASSIFIER_THINKING_BUDGET" default:"0"`
}

type SynthesisModelConfig struct {
	Model          string  `envconfig:"SYNTHESIS_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int     `envconfig:"SYNTHESIS_MAX_TOKENS" default:"1024"`
	Temperature    float32 `envconfig:"SYNTHESIS_TEMPERATURE" default:"0"`
	ThinkingBudget int32   `envconfig:"SYNTHESIS_THINKING_BUDGET" default:"0"`
}

type LegalAPIConfig struct {
	URL              string `envconfig:"LEGAL_API_URL" required:"true"`
	APIKey           string `envconfig:"LEGAL_API_KEY"`
	Timeout          string `envconfig:"LEGAL_API_TIMEOUT" default:"10s"`
	ActiveCasesLimit int    `envconfig:"LEGAL_ACTIVE_CASES_LIMIT" default:"10"`
}

func (c LegalAPIConfig) ParsedTimeout() time.Duration {
	return parseDurationOr(c.Timeout, 10*time.Second)
}

type BackendAPIConfig struct {
	URL     string `envconfig:"BACKEND_API_URL" default:"http://localhost:4000"`
	APIKey  string `envconfig:"BACKEND_API_KEY"`
	Timeout string `envconfig:"BACKEND_API_TIMEOUT" default:"5s"`
}

func (c BackendAPIConfig) ParsedTimeout() time.Duration {
	return parseDurationOr(c.Timeout, 5*time.Second)
}

func parseDurationOr(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
