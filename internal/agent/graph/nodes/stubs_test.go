package nodes

import (
	"context"
	"time"

	"github.com/legalvoice-orchestrator/server/internal/agent/graph/conversations"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

var fixedNow = time.Date(2026, time.October, 17, 10, 30, 0, 0, time.UTC)

type stubClassifier struct {
	label string
	err   error
}

func (c *stubClassifier) Classify(context.Context, string, string, string) (string, error) {
	return c.label, c.err
}

type stubExtractor struct {
	rng   *model.DateRange
	err   error
	calls []string
}

func (e *stubExtractor) ExtractRange(_ context.Context, utterance string, _ time.Time) (*model.DateRange, error) {
	e.calls = append(e.calls, utterance)
	return e.rng, e.err
}

// stubSynthesizer renders deterministically so tests can assert channel selection.
type stubSynthesizer struct {
	err   error
	calls []string
}

func (s *stubSynthesizer) SynthesizeAnalytics(_ context.Context, _ string, _ *model.AnalyticsSummary, _ *model.DateRange) (model.Rendering, error) {
	s.calls = append(s.calls, "analytics")
	return model.Rendering{Voice: "analytics voice", Text: "analytics text"}, s.err
}

func (s *stubSynthesizer) SynthesizeActiveCases(_ context.Context, _ string, _ *model.ActiveCasesPage, _ *model.DateRange) (model.Rendering, error) {
	s.calls = append(s.calls, "active_cases")
	return model.Rendering{Voice: "cases voice", Text: "cases text"}, s.err
}

func (s *stubSynthesizer) SynthesizeGeneric(_ context.Context, text string, _ model.OutputMode) (model.Rendering, error) {
	s.calls = append(s.calls, "generic")
	return model.Rendering{Voice: "voice: " + text, Text: "text: " + text}, s.err
}

type rangeCall struct {
	From, To string
	Limit    int
}

type stubAnalytics struct {
	summary *model.AnalyticsSummary
	page    *model.ActiveCasesPage
	err     error
	calls   []rangeCall
}

func (a *stubAnalytics) AnalyticsSummary(_ context.Context, from, to string) (*model.AnalyticsSummary, error) {
	a.calls = append(a.calls, rangeCall{From: from, To: to})
	if a.err != nil {
		return nil, a.err
	}
	return a.summary, nil
}

func (a *stubAnalytics) ActiveCases(_ context.Context, from, to string, limit int) (*model.ActiveCasesPage, error) {
	a.calls = append(a.calls, rangeCall{From: from, To: to, Limit: limit})
	if a.err != nil {
		return nil, a.err
	}
	return a.page, nil
}

type stubDirectory struct {
	caller *model.Caller
	err    error
}

func (d *stubDirectory) LookupCaller(context.Context, string) (*model.Caller, error) {
	return d.caller, d.err
}

type fixture struct {
	classifier *stubClassifier
	extractor  *stubExtractor
	synth      *stubSynthesizer
	analytics  *stubAnalytics
	directory  *stubDirectory
}

func newFixture() *fixture {
	return &fixture{
		classifier: &stubClassifier{label: "unsupported"},
		extractor:  &stubExtractor{},
		synth:      &stubSynthesizer{},
		analytics: &stubAnalytics{
			summary: &model.AnalyticsSummary{ActiveCasesCount: "12"},
			page:    &model.ActiveCasesPage{Data: []model.ActiveCase{{CaseID: "1", ClientName: "Ada Diaz"}}},
		},
		directory: &stubDirectory{},
	}
}

func (f *fixture) nodes() *Nodes {
	n, err := New(Deps{
		Classifier:      f.classifier,
		Extractor:       f.extractor,
		Synthesizer:     f.synth,
		Analytics:       f.analytics,
		Directory:       f.directory,
		MessagesManager: conversations.NewMessagesManager(model.ConversationConfig{}),
		Now:             func() time.Time { return fixedNow },
	})
	if err != nil {
		panic(err)
	}
	return n
}
