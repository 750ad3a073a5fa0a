package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/factdeck/factdeck/internal/fact"
	"github.com/factdeck/factdeck/internal/fact/generator"
	"github.com/factdeck/factdeck/internal/fact/repository"
	"github.com/factdeck/factdeck/pkg/logger"
	"github.com/factdeck/factdeck/pkg/metrics"
)

var (
	ErrNoUniqueFact       = errors.New("unable to generate a unique fact")
	ErrGenerationDisabled = errors.New("fact generation is disabled")
	ErrUnknownCategory    = errors.New("unknown category")
)

const (
	DefaultFreshnessWindow = 6 * time.Hour
	DefaultTopicWindow     = 180 * 24 * time.Hour
	DefaultCount           = 3
	DefaultMaxCount        = 20
)

// Service defines the fact operations used by the handler layer.
type Service interface {
	// GetFacts returns up to count facts for category, preferring facts not
	// shown within the freshness window and generating the shortfall.
	GetFacts(ctx context.Context, category string, count int) ([]string, error)
	// GetTopicFact returns at most one stored fact for topic. It never generates.
	GetTopicFact(ctx context.Context, topic string) ([]string, error)
	// GenerateBatch generates and stores count facts without de-duplication.
	GenerateBatch(ctx context.Context, category string, count int) (int, error)
	// GenerateUnique generates one fact that is not too similar to any stored
	// fact for topic.
	GenerateUnique(ctx context.Context, topic string) (string, error)
	Categories() []string
}

// Options tunes the selector. Zero values take the package defaults.
type Options struct {
	FreshnessWindow time.Duration
	TopicWindow     time.Duration
	DefaultCount    int
	MaxCount        int
	Now             func() time.Time
}

type factService struct {
	repo    repository.Repository
	gen     generator.Generator
	catalog *fact.Catalog
	opts    Options
}

// New returns a Service over repo. gen may be nil, which disables generation.
func New(repo repository.Repository, gen generator.Generator, catalog *fact.Catalog, opts Options) Service {
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = DefaultFreshnessWindow
	}
	if opts.TopicWindow <= 0 {
		opts.TopicWindow = DefaultTopicWindow
	}
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = DefaultCount
	}
	if opts.MaxCount <= 0 {
		opts.MaxCount = DefaultMaxCount
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if catalog == nil {
		catalog = fact.DefaultCatalog()
	}
	return &factService{repo: repo, gen: gen, catalog: catalog, opts: opts}
}

func (s *factService) Categories() []string {
	return s.catalog.Names()
}

func (s *factService) clampCount(count int) int {
	if count <= 0 {
		return s.opts.DefaultCount
	}
	if count > s.opts.MaxCount {
		return s.opts.MaxCount
	}
	return count
}

func (s *factService) GetFacts(ctx context.Context, category string, count int) ([]string, error) {
	category = fact.NormalizeCategory(category)
	if category != "" && !s.catalog.Known(category) {
		logger.Debugf("facts: unknown category %q", category)
		return []string{}, nil
	}
	count = s.clampCount(count)
	now := s.opts.Now()

	stored, err := s.repo.SampleEligible(ctx, category, now.Add(-s.opts.FreshnessWindow), count)
	if err != nil {
		return nil, fmt.Errorf("sample facts: %w", err)
	}
	out := make([]string, 0, count)
	ids := make([]string, 0, len(stored))
	for _, f := range stored {
		out = append(out, f.Content)
		ids = append(ids, f.ID)
	}

	shortfall := count - len(stored)
	generated := 0
	if shortfall > 0 && s.gen == nil {
		logger.Debugf("facts: shortfall of %d for %q but generation is disabled", shortfall, category)
	} else if shortfall > 0 {
		avoid, err := s.avoidList(ctx, category)
		if err != nil {
			return nil, err
		}
		for i := 0; i < shortfall; i++ {
			cat := category
			if cat == "" {
				cat = s.catalog.Pick()
			}
			content, err := s.generate(ctx, cat, avoid)
			if err != nil {
				return nil, err
			}
			shown := now
			if err := s.repo.Create(ctx, &fact.Fact{Category: cat, Content: content, CreatedAt: now, LastShown: &shown}); err != nil {
				return nil, fmt.Errorf("store generated fact: %w", err)
			}
			out = append(out, content)
			avoid = append(avoid, strings.ToLower(content))
			generated++
		}
	}

	if err := s.repo.MarkShown(ctx, ids, now); err != nil {
		return nil, fmt.Errorf("mark facts shown: %w", err)
	}
	metrics.FactsServed.WithLabelValues("store").Add(float64(len(ids)))
	metrics.FactsServed.WithLabelValues("generated").Add(float64(generated))
	return out, nil
}

func (s *factService) GetTopicFact(ctx context.Context, topic string) ([]string, error) {
	topic = fact.NormalizeCategory(topic)
	now := s.opts.Now()

	picked, err := s.repo.SampleEligible(ctx, topic, now.Add(-s.opts.TopicWindow), 1)
	if err != nil {
		return nil, fmt.Errorf("sample topic facts: %w", err)
	}
	if len(picked) == 0 {
		// everything was shown recently; repeat rather than return nothing
		if picked, err = s.repo.SampleAny(ctx, topic, 1); err != nil {
			return nil, fmt.Errorf("sample topic facts: %w", err)
		}
	}
	if len(picked) == 0 {
		return []string{}, nil
	}
	if err := s.repo.MarkShown(ctx, []string{picked[0].ID}, now); err != nil {
		return nil, fmt.Errorf("mark fact shown: %w", err)
	}
	metrics.FactsServed.WithLabelValues("store").Inc()
	return []string{picked[0].Content}, nil
}

func (s *factService) GenerateBatch(ctx context.Context, category string, count int) (int, error) {
	if s.gen == nil {
		return 0, ErrGenerationDisabled
	}
	category = fact.NormalizeCategory(category)
	if category != "" && !s.catalog.Known(category) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	count = s.clampCount(count)

	created := 0
	for i := 0; i < count; i++ {
		cat := category
		if cat == "" {
			cat = s.catalog.Pick()
		}
		content, err := s.generate(ctx, cat, nil)
		if err != nil {
			return created, err
		}
		if err := s.repo.Create(ctx, &fact.Fact{Category: cat, Content: content, CreatedAt: s.opts.Now()}); err != nil {
			return created, fmt.Errorf("store generated fact: %w", err)
		}
		created++
	}
	logger.Infof("facts: generated %d facts for %q", created, category)
	return created, nil
}

func (s *factService) GenerateUnique(ctx context.Context, topic string) (string, error) {
	if s.gen == nil {
		return "", ErrGenerationDisabled
	}
	topic = fact.NormalizeCategory(topic)
	if topic == "" {
		topic = s.catalog.Pick()
	}
	existing, err := s.avoidList(ctx, topic)
	if err != nil {
		return "", err
	}
	avoid := append([]string(nil), existing...)

	for attempt := 1; attempt <= fact.MaxUniqueAttempts; attempt++ {
		content, err := s.generate(ctx, topic, avoid)
		if err != nil {
			return "", err
		}
		lower := strings.ToLower(content)
		if !fact.IsUnique(lower, existing) {
			metrics.DuplicateRejections.Inc()
			logger.Debugf("facts: attempt %d for %q too similar to an existing fact", attempt, topic)
			avoid = append(avoid, lower)
			continue
		}
		now := s.opts.Now()
		if err := s.repo.Create(ctx, &fact.Fact{Category: topic, Content: content, CreatedAt: now, LastShown: &now}); err != nil {
			return "", fmt.Errorf("store generated fact: %w", err)
		}
		metrics.FactsServed.WithLabelValues("generated").Inc()
		return content, nil
	}
	logger.Warnf("facts: no unique fact for %q after %d attempts", topic, fact.MaxUniqueAttempts)
	return "", ErrNoUniqueFact
}

// avoidList returns the lowercased contents already stored for category.
func (s *factService) avoidList(ctx context.Context, category string) ([]string, error) {
	contents, err := s.repo.Contents(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("load existing facts: %w", err)
	}
	for i, c := range contents {
		contents[i] = strings.ToLower(c)
	}
	return contents, nil
}

// generate calls the generator once and normalizes the result.
func (s *factService) generate(ctx context.Context, category string, avoid []string) (string, error) {
	raw, err := s.gen.Generate(ctx, category, avoid)
	if err != nil {
		return "", fmt.Errorf("generate fact: %w", err)
	}
	content, err := fact.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("generate fact: %w", err)
	}
	return content, nil
}
