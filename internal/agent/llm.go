package agent

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	apperrors "stock-advisor/internal/errors"
)

// Client is the language-model collaborator contract. The core works the
// same whether the implementation is a real model or a deterministic
// stand-in, as long as this contract holds.
type Client interface {
	// Name identifies the provider for logging.
	Name() string
	// Generate maps a prompt to a complete answer.
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateStream yields the answer as a finite sequence of text chunks.
	// The returned channel is closed by the producer and not restartable;
	// consumers must drain it.
	GenerateStream(ctx context.Context, prompt string) (<-chan string, error)
}

// OpenAIClient implements Client using the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAIClient creates a new OpenAI LLM client.
func NewOpenAIClient(apiKey, model string, logger zerolog.Logger) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Generate sends a prompt to the model and returns the response.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", apperrors.NewModelError(c.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewModelError(c.Name(), errors.New("no response choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream streams the model response chunk by chunk.
func (c *OpenAIClient) GenerateStream(ctx context.Context, prompt string) (<-chan string, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: true,
	})
	if err != nil {
		return nil, apperrors.NewModelError(c.Name(), err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				// A mid-stream failure ends the sequence; the chunks
				// already sent stand on their own.
				c.logger.Warn().Err(err).Msg("stream interrupted")
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}

			select {
			case out <- resp.Choices[0].Delta.Content:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
