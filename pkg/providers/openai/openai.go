package openai

import (
	"context"
	"fmt"

	"github.com/nerdneilsfield/go-docx-translator/pkg/providers"
	openai "github.com/sashabaranov/go-openai"
)

// Config holds OpenAI provider settings
type Config struct {
	providers.BaseConfig
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultConfig returns the default OpenAI configuration
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       openai.GPT3Dot5Turbo,
		Temperature: 0.3,
		MaxTokens:   4096,
	}
}

// Provider calls the OpenAI chat completion API. Useful when no local
// model is available; requires an API key.
type Provider struct {
	config Config
	client *openai.Client
}

// New creates a new OpenAI provider
func New(config Config) *Provider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.APIEndpoint != "" {
		clientConfig.BaseURL = config.APIEndpoint
	}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Translate sends the prompt as a chat completion and returns the raw
// response text.
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a professional translator. Translate accurately while preserving the original meaning and tone.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Text,
			},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewError("empty_response", "no choices in completion response")
	}

	return &providers.ProviderResponse{
		Text:      resp.Choices[0].Message.Content,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		Metadata: map[string]interface{}{
			"model":         resp.Model,
			"finish_reason": string(resp.Choices[0].FinishReason),
			"id":            resp.ID,
		},
	}, nil
}

// GetName returns the provider name
func (p *Provider) GetName() string {
	return "openai"
}
