package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/factdeck/factdeck/internal/fact"
	"github.com/google/uuid"
)

// MemoryRepo is an in-memory fact store used by unit tests and as the
// fallback when no database is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*fact.Fact
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*fact.Fact)}
}

func (m *MemoryRepo) Create(ctx context.Context, f *fact.Fact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	m.store[f.ID] = clone(f)
	m.order = append(m.order, f.ID)
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*fact.Fact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.store[id]; ok {
		return clone(f), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) SampleEligible(ctx context.Context, category string, notShownSince time.Time, limit int) ([]*fact.Fact, error) {
	return m.sample(category, limit, func(f *fact.Fact) bool {
		return f.LastShown == nil || f.LastShown.Before(notShownSince)
	}), nil
}

func (m *MemoryRepo) SampleAny(ctx context.Context, category string, limit int) ([]*fact.Fact, error) {
	return m.sample(category, limit, func(*fact.Fact) bool { return true }), nil
}

func (m *MemoryRepo) sample(category string, limit int, keep func(*fact.Fact) bool) []*fact.Fact {
	if limit <= 0 {
		return []*fact.Fact{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	matches := make([]*fact.Fact, 0)
	for _, id := range m.order {
		f := m.store[id]
		if category != "" && f.Category != category {
			continue
		}
		if keep(f) {
			matches = append(matches, clone(f))
		}
	}
	rand.Shuffle(len(matches), func(i, j int) { matches[i], matches[j] = matches[j], matches[i] })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (m *MemoryRepo) MarkShown(ctx context.Context, ids []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if f, ok := m.store[id]; ok {
			t := at
			f.LastShown = &t
		}
	}
	return nil
}

func (m *MemoryRepo) Contents(ctx context.Context, category string) ([]string, error) {
	list, _ := m.List(ctx, category)
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.Content)
	}
	return out, nil
}

func (m *MemoryRepo) List(ctx context.Context, category string) ([]*fact.Fact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*fact.Fact, 0, len(m.store))
	for _, id := range m.order {
		f := m.store[id]
		if category == "" || f.Category == category {
			out = append(out, clone(f))
		}
	}
	return out, nil
}

func clone(f *fact.Fact) *fact.Fact {
	c := *f
	if f.LastShown != nil {
		t := *f.LastShown
		c.LastShown = &t
	}
	return &c
}
