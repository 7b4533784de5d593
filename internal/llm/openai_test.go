package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Veraticus/origin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "dedalus by default",
			config: Config{APIKey: "test-key"},
		},
		{
			name:   "openai provider",
			config: Config{Provider: "openai", APIKey: "test-key"},
		},
		{
			name:   "provider name is case insensitive",
			config: Config{Provider: "Dedalus", APIKey: "test-key", MaxTokens: 512},
		},
		{
			name:    "missing API key",
			config:  Config{Provider: "dedalus"},
			wantErr: true,
		},
		{
			name:    "unsupported provider",
			config:  Config{Provider: "carrier-pigeon", APIKey: "test-key"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

type capturedRequest struct {
	Model     string          `json:"model"`
	Messages  []model.Message `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
	Stream    bool            `json:"stream"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL + "/v1",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestOpenAIClient_Complete(t *testing.T) {
	var captured capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "openai/gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Food, Rent, Travel"}, "finish_reason": "stop"}]
		}`)
	})

	messages := []model.Message{
		model.SystemMessage("You are a data analyst."),
		model.UserMessage("Summarize my spending"),
	}
	got, err := client.Complete(context.Background(), "openai/gpt-4o-mini", messages)
	require.NoError(t, err)

	assert.Equal(t, "Food, Rent, Travel", got)
	assert.Equal(t, "openai/gpt-4o-mini", captured.Model)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens)
	assert.False(t, captured.Stream)
	assert.Equal(t, messages, captured.Messages)
}

func TestOpenAIClient_CompleteNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id": "chatcmpl-1", "choices": []}`)
	})

	_, err := client.Complete(context.Background(), "openai/gpt-4o", []model.Message{model.UserMessage("hi")})
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, model.ModelID("openai/gpt-4o"), perr.Model)
}

func TestOpenAIClient_CompleteBackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"error": {"message": "upstream exploded", "type": "server_error"}}`)
	})

	_, err := client.Complete(context.Background(), "google/gemini-2.0-flash", []model.Message{model.UserMessage("hi")})
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, model.ModelID("google/gemini-2.0-flash"), perr.Model)
	assert.Contains(t, err.Error(), "google/gemini-2.0-flash")
}

func TestOpenAIClient_CompleteCanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "openai/gpt-4o-mini", []model.Message{model.UserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func writeSSE(w http.ResponseWriter, payloads ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, p := range payloads {
		_, _ = fmt.Fprintf(w, "data: %s\n\n", p)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

func deltaChunk(content string) string {
	return fmt.Sprintf(`{"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`, content)
}

func TestOpenAIClient_Stream(t *testing.T) {
	var captured capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		writeSSE(w,
			`{"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant"}}]}`,
			deltaChunk("Hel"),
			deltaChunk(""),
			`{"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[]}`,
			deltaChunk("lo"),
			"[DONE]",
		)
	})

	stream, err := client.Stream(context.Background(), "openai/gpt-4o", []model.Message{model.UserMessage("hello")})
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	var fragments []string
	for {
		fragment, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		require.NoError(t, recvErr)
		fragments = append(fragments, fragment)
	}

	assert.Equal(t, []string{"Hel", "lo"}, fragments)
	assert.True(t, captured.Stream)
	assert.Equal(t, "openai/gpt-4o", captured.Model)
}

func TestOpenAIClient_StreamBackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	})

	stream, err := client.Stream(context.Background(), "openai/gpt-4o", []model.Message{model.UserMessage("hello")})
	require.Error(t, err)
	assert.Nil(t, stream)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, model.ModelID("openai/gpt-4o"), perr.Model)
}

func TestOpenAIClient_RateLimitHonorsContext(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key", RateLimit: 1, BaseURL: "http://127.0.0.1:0"})
	require.NoError(t, err)

	oc, ok := client.(*openAIClient)
	require.True(t, ok)
	require.NotNil(t, oc.limiter)

	// Drain the single burst token so the next wait would block.
	require.True(t, oc.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Complete(ctx, "openai/gpt-4o-mini", []model.Message{model.UserMessage("hi")})
	require.Error(t, err)

	var perr *ProviderError
	assert.ErrorAs(t, err, &perr)
}
