package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nerdneilsfield/go-docx-translator/pkg/providers"
	"github.com/nerdneilsfield/go-docx-translator/pkg/providers/retry"
)

// Config holds Ollama provider settings
type Config struct {
	providers.BaseConfig
	Model       string       `json:"model"`
	Temperature float32      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	RetryConfig retry.Config `json:"retry_config"`
}

// DefaultConfig returns the default Ollama configuration
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "mistral:7b",
		Temperature: 0.3,
		MaxTokens:   4096,
		RetryConfig: retry.DefaultConfig(),
	}
}

// Provider talks to a local Ollama server. It is the default backend:
// translation runs entirely on the local model with no API key.
type Provider struct {
	config      Config
	retryClient *retry.HTTPClient
}

// New creates a new Ollama provider
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = "http://localhost:11434"
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	retrier := retry.NewRetrier(config.RetryConfig)

	return &Provider{
		config:      config,
		retryClient: retrier.WrapHTTPClient(httpClient),
	}
}

// Translate sends the prompt to the model and returns the raw response
// text. No output validation happens here; the caller realigns the
// response against its inputs.
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	generateReq := GenerateRequest{
		Model:  p.config.Model,
		Prompt: req.Text,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": p.config.Temperature,
		},
	}

	if p.config.MaxTokens > 0 {
		generateReq.Options["num_predict"] = p.config.MaxTokens
	}

	resp, err := p.generate(ctx, generateReq)
	if err != nil {
		return nil, err
	}

	return &providers.ProviderResponse{
		Text:      resp.Response,
		TokensIn:  resp.PromptEvalCount,
		TokensOut: resp.EvalCount,
		Metadata: map[string]interface{}{
			"model":          resp.Model,
			"total_duration": resp.TotalDuration,
		},
	}, nil
}

// GetName returns the provider name
func (p *Provider) GetName() string {
	return "ollama"
}

// HealthCheck verifies the server responds to a minimal generation
func (p *Provider) HealthCheck(ctx context.Context) error {
	req := GenerateRequest{
		Model:  p.config.Model,
		Prompt: "Hello",
		Stream: false,
		Options: map[string]interface{}{
			"num_predict": 5,
		},
	}

	_, err := p.generate(ctx, req)
	return err
}

// generate executes one generation request
func (p *Provider) generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.APIEndpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range p.config.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.retryClient.Do(httpReq)
	if err != nil {
		// The retry client can hand back the last received response
		// alongside the error; its body still needs closing.
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)

		var apiErr APIError
		if json.Unmarshal(errBody, &apiErr) == nil && apiErr.ErrorMsg != "" {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("API error: %s", resp.Status)
	}

	var generateResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &generateResp, nil
}

// GenerateRequest is the Ollama /api/generate request body
type GenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse is the Ollama /api/generate response body
type GenerateResponse struct {
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
	Response        string    `json:"response"`
	Done            bool      `json:"done"`
	TotalDuration   int64     `json:"total_duration"`
	PromptEvalCount int       `json:"prompt_eval_count"`
	EvalCount       int       `json:"eval_count"`
}

// APIError is an Ollama error payload
type APIError struct {
	ErrorMsg string `json:"error"`
}

func (e *APIError) Error() string {
	return e.ErrorMsg
}
