// Package llm implements the classification, extraction and synthesis
// capabilities on top of Eino chat models.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/legalvoice-orchestrator/server/internal/agent/graph/parsers"
	"github.com/legalvoice-orchestrator/server/internal/agent/graph/prompts"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

// generate runs one completion. The run info is reset to the chat model so
// model callbacks fire even when called from inside a lambda node.
func generate(ctx context.Context, cm einomodel.BaseChatModel, op string, msgs []*schema.Message) (string, error) {
	typ, _ := components.GetType(cm)
	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      op,
		Type:      typ,
		Component: components.ComponentOfChatModel,
	})
	out, err := cm.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("%s: generate: %w", op, err)
	}
	if out == nil {
		return "", fmt.Errorf("%s: empty completion", op)
	}
	return out.Content, nil
}

// ================ Intent classification ================
type Classifier struct {
	cm einomodel.BaseChatModel
}

func NewClassifier(cm einomodel.BaseChatModel) *Classifier {
	return &Classifier{cm: cm}
}

func (c *Classifier) Classify(ctx context.Context, snippet, lastUtterance, contextSuffix string) (string, error) {
	msgs, err := prompts.RenderIntent(ctx, snippet, lastUtterance, contextSuffix)
	if err != nil {
		return "", err
	}
	content, err := generate(ctx, c.cm, "classify intent", msgs)
	if err != nil {
		return "", err
	}
	return parsers.ParseIntentLabel(content), nil
}

// ================ Date range extraction ================
type RangeExtractor struct {
	cm einomodel.BaseChatModel
}

func NewRangeExtractor(cm einomodel.BaseChatModel) *RangeExtractor {
	return &RangeExtractor{cm: cm}
}

func (e *RangeExtractor) ExtractRange(ctx context.Context, utterance string, today time.Time) (*model.DateRange, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, nil
	}
	msgs, err := prompts.RenderDateRange(ctx, utterance, today)
	if err != nil {
		return nil, err
	}
	content, err := generate(ctx, e.cm, "extract date range", msgs)
	if err != nil {
		return nil, err
	}
	rng, err := parsers.ParseDateRange(content)
	if err != nil {
		logx.Warn().Err(err).Str("component", "range_extractor").Msg("Unusable date range completion")
		return nil, nil
	}
	return rng, nil
}

// ================ Synthesis ================
type Synthesizer struct {
	cm einomodel.BaseChatModel
}

func NewSynthesizer(cm einomodel.BaseChatModel) *Synthesizer {
	return &Synthesizer{cm: cm}
}

func (s *Synthesizer) SynthesizeAnalytics(ctx context.Context, utterance string, summary *model.AnalyticsSummary, rng *model.DateRange) (model.Rendering, error) {
	msgs, err := prompts.RenderAnalyticsSynthesis(ctx, utterance, summary, rng)
	if err != nil {
		return model.Rendering{}, err
	}
	return s.rendering(ctx, "synthesize analytics", msgs)
}

func (s *Synthesizer) SynthesizeActiveCases(ctx context.Context, utterance string, page *model.ActiveCasesPage, rng *model.DateRange) (model.Rendering, error) {
	msgs, err := prompts.RenderActiveCasesSynthesis(ctx, utterance, page, rng)
	if err != nil {
		return model.Rendering{}, err
	}
	return s.rendering(ctx, "synthesize active cases", msgs)
}

// SynthesizeGeneric falls back to the canned text itself when the model
// returns nothing usable.
func (s *Synthesizer) SynthesizeGeneric(ctx context.Context, text string, mode model.OutputMode) (model.Rendering, error) {
	msgs, err := prompts.RenderGenericSynthesis(ctx, text, mode)
	if err != nil {
		return model.Rendering{}, err
	}
	r, err := s.rendering(ctx, "synthesize generic", msgs)
	if err != nil {
		return model.Rendering{}, err
	}
	if r.Voice == "" && r.Text == "" {
		return model.Rendering{Voice: text, Text: text}, nil
	}
	return r, nil
}

func (s *Synthesizer) rendering(ctx context.Context, op string, msgs []*schema.Message) (model.Rendering, error) {
	content, err := generate(ctx, s.cm, op, msgs)
	if err != nil {
		return model.Rendering{}, err
	}
	return parsers.ParseRendering(content), nil
}
