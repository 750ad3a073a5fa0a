package generator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/factdeck/factdeck/internal/fact"
	olla "github.com/ollama/ollama/api"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
)

// Ollama generates facts with a local Ollama server.
type Ollama struct {
	client  *olla.Client
	model   string
	catalog *fact.Catalog
}

func NewOllama(cfg Config, catalog *fact.Catalog) (*Ollama, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	return &Ollama{client: olla.NewClient(u, hc), model: model, catalog: catalog}, nil
}

func (o *Ollama) Generate(ctx context.Context, category string, avoid []string) (string, error) {
	stream := false
	var out strings.Builder
	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		System: systemPrompt,
		Prompt: userPrompt(o.catalog, category, avoid),
		Stream: &stream,
	}, func(resp olla.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return finish("", fmt.Errorf("ollama generate: %w", err))
	}
	return finish(out.String(), nil)
}
