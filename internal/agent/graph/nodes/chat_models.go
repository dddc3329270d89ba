package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey          string
	BaseURL         string
	ClassifierModel *model.ClassifierModelConfig
	SynthesisModel  *model.SynthesisModelConfig
}

// ChatModels holds the classification and synthesis chat models. The
// classifier model also serves date range extraction.
type ChatModels struct {
	Classifier          *gemini.ChatModel
	Synthesis           *gemini.ChatModel
	ClassifierModelName string
	SynthesisModelName  string
}

// NewChatModels creates both chat models over one Gemini client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.ClassifierModel == nil || config.SynthesisModel == nil {
		return nil, fmt.Errorf("chat model config is nil")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	// Classification and extraction run at temperature 0
	classifier, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.ClassifierModel.Model,
		Temperature: &config.ClassifierModel.Temperature,
		MaxTokens:   &config.ClassifierModel.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(config.ClassifierModel.ThinkingBudget),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating classifier model")
		return nil, fmt.Errorf("error creating classifier model: %w", err)
	}

	synthesis, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.SynthesisModel.Model,
		Temperature: &config.SynthesisModel.Temperature,
		MaxTokens:   &config.SynthesisModel.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(config.SynthesisModel.ThinkingBudget),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating synthesis model")
		return nil, fmt.Errorf("error creating synthesis model: %w", err)
	}

	return &ChatModels{
		Classifier:          classifier,
		Synthesis:           synthesis,
		ClassifierModelName: config.ClassifierModel.Model,
		SynthesisModelName:  config.SynthesisModel.Model,
	}, nil
}
