package content

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"
)

// LLM produces a JSON object for a system/user prompt pair.
type LLM interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GroqLLM implements LLM on the Groq chat completion API in JSON mode.
type GroqLLM struct {
	client *groq.Client
	model  groq.ChatModel
}

func NewGroqLLM(apiKey, model string) (*GroqLLM, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}
	return &GroqLLM{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

func (g *GroqLLM) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: g.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: userPrompt},
		},
		ResponseFormat: &groq.ChatResponseFormat{
			Type: "json_object",
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	return content, nil
}
