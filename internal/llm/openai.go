package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/origin/internal/model"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const defaultMaxTokens = 2048

// Config holds configuration for a completion client.
type Config struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Provider   string
	APIKey     string
	BaseURL    string
	MaxTokens  int
	RateLimit  int // requests per minute; 0 disables pacing
}

// openAIClient implements Client against any OpenAI-compatible endpoint.
type openAIClient struct {
	client    *openai.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
	maxTokens int
}

// newOpenAIClient creates a new chat completions client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for provider %q", cfg.Provider)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Streams are bounded by the caller's context, not a client timeout.
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = httpClient

	c := &openAIClient{
		client:    openai.NewClientWithConfig(clientConfig),
		maxTokens: maxTokens,
		logger:    logger.With("component", "llm"),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), cfg.RateLimit)
	}

	return c, nil
}

// Complete sends a non-streaming chat completion request.
func (c *openAIClient) Complete(ctx context.Context, modelID model.ModelID, messages []model.Message) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", providerError(modelID, err)
	}

	c.logger.Debug("completion request", "model", modelID, "messages", len(messages))

	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(modelID, messages))
	if err != nil {
		c.logger.Error("completion failed", "model", modelID, "error", err)
		return "", providerError(modelID, err)
	}

	if len(resp.Choices) == 0 {
		return "", providerError(modelID, errors.New("no completion choices returned"))
	}

	c.logger.Debug("completion received", "model", modelID, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// Stream opens a streaming chat completion request.
func (c *openAIClient) Stream(ctx context.Context, modelID model.ModelID, messages []model.Message) (Stream, error) {
	if err := c.wait(ctx); err != nil {
		return nil, providerError(modelID, err)
	}

	c.logger.Debug("streaming request", "model", modelID, "messages", len(messages))

	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(modelID, messages))
	if err != nil {
		c.logger.Error("streaming request failed", "model", modelID, "error", err)
		return nil, providerError(modelID, err)
	}

	return &openAIStream{stream: stream, model: modelID}, nil
}

func (c *openAIClient) buildRequest(modelID model.ModelID, messages []model.Message) openai.ChatCompletionRequest {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:     string(modelID),
		Messages:  chatMessages,
		MaxTokens: c.maxTokens,
	}
}

func (c *openAIClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter canceled: %w", err)
	}
	return nil
}

// openAIStream adapts a chat completion stream to the Stream interface.
type openAIStream struct {
	stream *openai.ChatCompletionStream
	model  model.ModelID
}

// Recv returns the next non-empty content delta.
func (s *openAIStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", providerError(s.model, err)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		if content := resp.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}
