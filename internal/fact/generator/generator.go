package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/factdeck/factdeck/internal/fact"
	"github.com/factdeck/factdeck/pkg/metrics"
)

// MaxAvoid caps how many existing facts are listed in a prompt.
const MaxAvoid = 50

var ErrEmptyCompletion = errors.New("generator returned an empty completion")

// Generator produces one raw fact about category, steering away from the
// texts in avoid. Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, category string, avoid []string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string // openai | ollama | none
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the configured generator. Provider "none" (or empty) disables
// generation and returns a nil Generator without error.
func New(cfg Config, catalog *fact.Catalog) (Generator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "openai":
		return NewOpenAI(cfg, catalog), nil
	case "ollama":
		return NewOllama(cfg, catalog)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

const systemPrompt = "You write short, surprising, true facts. Reply with exactly one fact " +
	"of one or two sentences. No preamble, no quotes, no follow-up questions."

// userPrompt renders the request for one fact in category.
func userPrompt(catalog *fact.Catalog, category string, avoid []string) string {
	var b strings.Builder
	b.WriteString("Tell me one interesting fact about ")
	b.WriteString(category)
	if catalog != nil {
		if c, ok := catalog.Lookup(category); ok && c.Prompt != "" {
			b.WriteString(" (")
			b.WriteString(c.Prompt)
			b.WriteString(")")
		}
	}
	b.WriteString(".")

	if len(avoid) > MaxAvoid {
		avoid = avoid[len(avoid)-MaxAvoid:]
	}
	if len(avoid) > 0 {
		b.WriteString("\n\nDo not repeat or rephrase any of these facts:\n")
		for _, a := range avoid {
			b.WriteString("- ")
			b.WriteString(a)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// finish trims a completion and records the call outcome.
func finish(text string, err error) (string, error) {
	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = ErrEmptyCompletion
		}
	}
	if err != nil {
		metrics.GeneratorCalls.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.GeneratorCalls.WithLabelValues("ok").Inc()
	return text, nil
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, category string, avoid []string) (string, error)

func (f Func) Generate(ctx context.Context, category string, avoid []string) (string, error) {
	return f(ctx, category, avoid)
}
