package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-docx-translator/pkg/providers"
	"github.com/nerdneilsfield/go-docx-translator/pkg/providers/retry"
)

func testProvider(endpoint string) *Provider {
	cfg := DefaultConfig()
	cfg.APIEndpoint = endpoint
	cfg.RetryConfig = retry.Config{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
	return New(cfg)
}

func TestTranslateSendsGenerateRequest(t *testing.T) {
	var received GenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(GenerateResponse{
			Model:           received.Model,
			Response:        "1. Bonjour le monde.",
			Done:            true,
			PromptEvalCount: 12,
			EvalCount:       7,
		})
	}))
	defer server.Close()

	provider := testProvider(server.URL)

	resp, err := provider.Translate(context.Background(), &providers.ProviderRequest{
		Text:           "Translate the following text to French:\n\n1. Hello world.",
		TargetLanguage: "French",
	})
	require.NoError(t, err)

	assert.Equal(t, "1. Bonjour le monde.", resp.Text)
	assert.Equal(t, 12, resp.TokensIn)
	assert.Equal(t, 7, resp.TokensOut)

	assert.Equal(t, "mistral:7b", received.Model)
	assert.False(t, received.Stream)
	assert.Contains(t, received.Prompt, "1. Hello world.")
	assert.EqualValues(t, 0.3, received.Options["temperature"])
}

func TestTranslateReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "model not found"})
	}))
	defer server.Close()

	provider := testProvider(server.URL)

	_, err := provider.Translate(context.Background(), &providers.ProviderRequest{Text: "hi"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "model not found", apiErr.ErrorMsg)
}

func TestTranslateRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(GenerateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	provider := testProvider(server.URL)

	resp, err := provider.Translate(context.Background(), &providers.ProviderRequest{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 2, calls)
}

func TestTranslateClosesResponseOnExhaustedRetries(t *testing.T) {
	// First attempt yields a 500 response that the retry client holds on
	// to; later attempts die mid-connection, so Do returns that response
	// together with an error. The provider must still surface the error
	// and close the held body.
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer server.Close()

	provider := testProvider(server.URL)

	_, err := provider.Translate(context.Background(), &providers.ProviderRequest{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute request")
	assert.GreaterOrEqual(t, calls, 2)
}

func TestTranslateRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := testProvider(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Translate(ctx, &providers.ProviderRequest{Text: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 5, req.Options["num_predict"])

		json.NewEncoder(w).Encode(GenerateResponse{Response: "Hi", Done: true})
	}))
	defer server.Close()

	provider := testProvider(server.URL)

	assert.NoError(t, provider.HealthCheck(context.Background()))
}

func TestDefaultEndpoint(t *testing.T) {
	provider := New(DefaultConfig())
	assert.Equal(t, "http://localhost:11434", provider.config.APIEndpoint)
}
