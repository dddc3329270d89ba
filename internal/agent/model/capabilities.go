package model

import (
	"context"
	"time"
)

// IntentClassifier maps a conversation snippet to a raw intent label.
// Callers normalise the label with ParseIntent.
type IntentClassifier interface {
	Classify(ctx context.Context, snippet, lastUtterance, contextSuffix string) (string, error)
}

// DateRangeExtractor resolves a temporal cue in an utterance. It returns
// (nil, nil) when there is no usable cue; an error means the call itself failed.
type DateRangeExtractor interface {
	ExtractRange(ctx context.Context, utterance string, today time.Time) (*DateRange, error)
}

// ResponseSynthesizer renders data or canned text into voice and text outputs.
type ResponseSynthesizer interface {
	SynthesizeAnalytics(ctx context.Context, utterance string, summary *AnalyticsSummary, rng *DateRange) (Rendering, error)
	SynthesizeActiveCases(ctx context.Context, utterance string, page *ActiveCasesPage, rng *DateRange) (Rendering, error)
	SynthesizeGeneric(ctx context.Context, text string, mode OutputMode) (Rendering, error)
}

// AnalyticsSource is the Legal API surface the data-fetch nodes depend on.
type AnalyticsSource interface {
	AnalyticsSummary(ctx context.Context, startDate, endDate string) (*AnalyticsSummary, error)
	ActiveCases(ctx context.Context, startDate, endDate string, limit int) (*ActiveCasesPage, error)
}

// CallerDirectory resolves a caller reference. It returns (nil, nil) when the
// caller is unknown.
type CallerDirectory interface {
	LookupCaller(ctx context.Context, phone string) (*Caller, error)
}
