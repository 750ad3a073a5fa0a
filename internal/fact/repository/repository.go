package repository

import (
	"context"
	"errors"
	"time"

	"github.com/factdeck/factdeck/internal/fact"
)

var (
	ErrNotFound = errors.New("fact not found")
)

// Repository is the fact store. An empty category means "any category".
// Sampling is unordered; callers must not rely on result order.
type Repository interface {
	// SampleEligible returns up to limit random facts whose LastShown is nil
	// or strictly before notShownSince.
	SampleEligible(ctx context.Context, category string, notShownSince time.Time, limit int) ([]*fact.Fact, error)
	// SampleAny returns up to limit random facts regardless of LastShown.
	SampleAny(ctx context.Context, category string, limit int) ([]*fact.Fact, error)
	// Create persists f, assigning ID and CreatedAt when unset.
	Create(ctx context.Context, f *fact.Fact) error
	// MarkShown sets LastShown = at on every listed fact in one update.
	MarkShown(ctx context.Context, ids []string, at time.Time) error
	// Contents returns the content of every fact in category.
	Contents(ctx context.Context, category string) ([]string, error)
	// List returns every fact in category.
	List(ctx context.Context, category string) ([]*fact.Fact, error)
}
