package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"lorelink/internal/turn"
)

// openAIClient talks to any OpenAI-compatible chat endpoint.
type openAIClient struct {
	client *openai.Client
}

func newOpenAI(apiKey, baseURL string) *openAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIClient{client: openai.NewClientWithConfig(cfg)}
}

func (c *openAIClient) Complete(ctx context.Context, prompt, modelID string, params turn.GenParams) (string, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	req := openai.ChatCompletionRequest{
		Model:     modelID,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature > 0 {
		req.Temperature = float32(params.Temperature)
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
