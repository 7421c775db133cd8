package gpt

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"nutrition-tracker/config"
	"nutrition-tracker/internal/coach"
)

const systemMessage = "You are an experienced nutritionist. You give practical, personalised " +
	"nutrition advice and prefer foods that are easy to find in Kenya."

type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewClient(cfg config.GPTConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

func (c *Client) request(prompt string, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemMessage,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
		Stream:      stream,
	}
}

// Generate returns the full completion for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.request(prompt, false))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from GPT API")
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateStream opens a streamed completion for prompt.
func (c *Client) GenerateStream(ctx context.Context, prompt string) (coach.Stream, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.request(prompt, true))
	if err != nil {
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}
	return &chatStream{stream: stream}, nil
}

type chatStream struct {
	stream *openai.ChatCompletionStream
}

// Recv returns the next text delta. Deltas without content (role headers,
// finish markers) are skipped.
func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("chat completion stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *chatStream) Close() error {
	s.stream.Close()
	return nil
}
