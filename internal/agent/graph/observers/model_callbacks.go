package observers

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

// newModelHandler builds a typed ModelCallbackHandler that logs each chat model
// call with its token usage and USD cost.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *einomodel.CallbackInput) context.Context {
			ev := logx.Debug().
				Str("conversation_id", model.ConversationIDFrom(ctx)).
				Str("component", info.Name)
			if input != nil {
				ev = ev.Int("messages", len(input.Messages))
				if um := lastUserContent(input.Messages); um != "" {
					ev = ev.Str("user", um)
				}
			}
			ev.Msg("LLM call start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *einomodel.CallbackOutput) context.Context {
			logModelEnd(ctx, info, output)
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().
				Err(err).
				Str("conversation_id", model.ConversationIDFrom(ctx)).
				Str("component", info.Name).
				Msg("LLM call failed")
			return ctx
		},
	}
}

func logModelEnd(ctx context.Context, info *einocb.RunInfo, output *einomodel.CallbackOutput) {
	ev := logx.Debug().
		Str("conversation_id", model.ConversationIDFrom(ctx)).
		Str("component", info.Name)
	if output == nil {
		ev.Msg("LLM call end")
		return
	}
	if output.Message != nil {
		ev = ev.Str("assistant", strings.TrimSpace(output.Message.Content))
	}
	if output.TokenUsage != nil {
		modelName := ""
		if output.Config != nil {
			modelName = output.Config.Model
		}
		usage := model.Usage{
			PromptTokens:     output.TokenUsage.PromptTokens,
			CompletionTokens: output.TokenUsage.CompletionTokens,
			TotalTokens:      output.TokenUsage.TotalTokens,
		}
		inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(modelName))
		ev = ev.
			Str("model", modelName).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC)
	}
	ev.Msg("LLM usage")
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}
