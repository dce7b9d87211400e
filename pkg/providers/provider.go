package providers

import (
	"context"
	"time"
)

// BaseConfig holds the settings shared by every provider.
type BaseConfig struct {
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`

	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`

	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig returns the default base configuration. The generous
// timeout accommodates slow local LLM backends.
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    5 * time.Minute,
		MaxRetries: 3,
		RetryDelay: time.Second,
		Headers:    make(map[string]string),
	}
}

// TranslationProvider is the capability boundary between the pipeline
// and a text-generation backend: one numbered prompt body in, one raw
// unvalidated response out. The caller owns prompt construction and
// response parsing.
type TranslationProvider interface {
	Translate(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)

	GetName() string
}

// ProviderRequest carries one batch prompt to the backend.
type ProviderRequest struct {
	Text           string                 `json:"text"`
	TargetLanguage string                 `json:"target_language,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// ProviderResponse is the backend's raw reply plus usage accounting.
type ProviderResponse struct {
	Text      string                 `json:"text"`
	TokensIn  int                    `json:"tokens_in,omitempty"`
	TokensOut int                    `json:"tokens_out,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Error is a structured provider error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsRetryable reports whether the error is worth retrying.
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case "rate_limit", "timeout", "server_error":
		return true
	default:
		return false
	}
}

// NewError creates a provider error
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}
