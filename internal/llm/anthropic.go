package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"lorelink/internal/turn"
)

type anthropicClient struct {
	client *anthropic.Client
}

func newAnthropic(apiKey string) *anthropicClient {
	return &anthropicClient{client: anthropic.NewClient(apiKey)}
}

func (c *anthropicClient) Complete(ctx context.Context, prompt, modelID string, params turn.GenParams) (string, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(modelID),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	}
	if params.Temperature > 0 {
		t := float32(params.Temperature)
		req.Temperature = &t
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}
	text := resp.GetFirstContentText()
	if text == "" {
		return "", fmt.Errorf("anthropic messages: empty reply")
	}
	return text, nil
}
