package generator

import (
	"context"
	"fmt"
	"net/http"

	"github.com/factdeck/factdeck/internal/fact"
	openai "github.com/meguminnnnnnnnn/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

const openAITemperature float32 = 0.9

// OpenAI generates facts through an OpenAI-compatible chat completions API.
type OpenAI struct {
	client  *openai.Client
	model   string
	catalog *fact.Catalog
}

func NewOpenAI(cfg Config, catalog *fact.Catalog) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(oc), model: model, catalog: catalog}
}

func (o *OpenAI) Generate(ctx context.Context, category string, avoid []string) (string, error) {
	temperature := openAITemperature
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(o.catalog, category, avoid)},
		},
		Temperature: &temperature,
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return finish("", fmt.Errorf("openai chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return finish("", nil)
	}
	return finish(resp.Choices[0].Message.Content, nil)
}
