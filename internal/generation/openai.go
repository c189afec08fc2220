package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/DreamCats/docqa/internal/config"
)

// OpenAIGenerator talks to an OpenAI-compatible chat completions endpoint.
// Gemini is reached the same way through its compatibility endpoint.
type OpenAIGenerator struct {
	provider    string
	model       string
	temperature float64
	client      openai.Client
}

// NewOpenAIGenerator creates a chat completions generator. Extra request
// options are appended after the ones derived from cfg.
func NewOpenAIGenerator(cfg *config.GeneratorConfig, apiKey string, opts ...option.RequestOption) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s api key is required", cfg.Provider)
	}

	endpoint := cfg.Endpoint
	model := cfg.Model
	if cfg.Provider == "gemini" {
		if endpoint == "" {
			endpoint = config.DefaultGeminiEndpoint
		}
		if model == "" {
			model = config.DefaultGeminiModel
		}
	}
	if model == "" {
		model = config.DefaultOpenAIChatModel
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(endpoint))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIGenerator{
		provider:    cfg.Provider,
		model:       model,
		temperature: cfg.Temperature,
		client:      openai.NewClient(reqOpts...),
	}, nil
}

// Generate sends prompt as a single user message and returns the reply text
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(g.temperature),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(g.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Provider: g.provider, Err: fmt.Errorf("no choices in response")}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
