package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/factdeck/factdeck/internal/fact"
	"github.com/factdeck/factdeck/internal/fact/repository"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

// ObjectStore is the subset of the object storage client used for snapshots.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Snapshot describes an exported category dump.
type Snapshot struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// Exporter writes the stored facts of a category to object storage as JSON.
type Exporter struct {
	repo   repository.Repository
	store  ObjectStore
	expiry time.Duration
	now    func() time.Time
}

// NewExporter returns an Exporter; store may be nil, in which case Export
// returns ErrStorageDisabled.
func NewExporter(repo repository.Repository, store ObjectStore, expiry time.Duration) *Exporter {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Exporter{repo: repo, store: store, expiry: expiry, now: func() time.Time { return time.Now().UTC() }}
}

func (e *Exporter) Export(ctx context.Context, category string) (*Snapshot, error) {
	if e.store == nil {
		return nil, ErrStorageDisabled
	}
	category = fact.NormalizeCategory(category)
	facts, err := e.repo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	name := category
	if name == "" {
		name = fact.RandomCategory
	}
	now := e.now()
	body, err := json.Marshal(struct {
		Category   string       `json:"category"`
		ExportedAt time.Time    `json:"exportedAt"`
		Facts      []*fact.Fact `json:"facts"`
	}{name, now, facts})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("snapshots/%s/%s.json", name, now.Format("20060102T150405Z"))
	if err := e.store.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}
	url, err := e.store.GetPresignedURL(ctx, key, e.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}
	return &Snapshot{Key: key, URL: url, Count: len(facts)}, nil
}
