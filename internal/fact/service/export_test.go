package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/factdeck/factdeck/internal/fact/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	objects   map[string][]byte
	types     map[string]string
	uploadErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectStore) UploadFile(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return errors.New("size mismatch")
	}
	f.objects[key] = b
	f.types[key] = contentType
	return nil
}

func (f *fakeObjectStore) GetPresignedURL(_ context.Context, key string, expires time.Duration) (string, error) {
	return "http://minio.local/facts/" + key + "?expires=" + expires.String(), nil
}

func TestExporter_Export(t *testing.T) {
	repo := repository.NewMemoryRepo()
	seedFact(t, repo, "space", "Mars has two moons.", nil)
	seedFact(t, repo, "space", "Venus spins backwards.", nil)
	seedFact(t, repo, "art", "Not exported.", nil)
	store := newFakeObjectStore()
	e := NewExporter(repo, store, time.Minute)
	e.now = func() time.Time { return testNow }

	snap, err := e.Export(context.Background(), "Space")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, "snapshots/space/20240310T090000Z.json", snap.Key)
	assert.True(t, strings.HasPrefix(snap.URL, "http://minio.local/facts/snapshots/space/"))
	assert.Equal(t, "application/json", store.types[snap.Key])

	var doc struct {
		Category string `json:"category"`
		Facts    []struct {
			Content string `json:"content"`
		} `json:"facts"`
	}
	require.NoError(t, json.Unmarshal(store.objects[snap.Key], &doc))
	assert.Equal(t, "space", doc.Category)
	require.Len(t, doc.Facts, 2)
	assert.Equal(t, "Mars has two moons.", doc.Facts[0].Content)
}

func TestExporter_RandomExportsAll(t *testing.T) {
	repo := repository.NewMemoryRepo()
	seedFact(t, repo, "space", "Mars has two moons.", nil)
	seedFact(t, repo, "art", "The Mona Lisa has no eyebrows.", nil)
	e := NewExporter(repo, newFakeObjectStore(), 0)

	snap, err := e.Export(context.Background(), "random")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Count)
	assert.True(t, strings.HasPrefix(snap.Key, "snapshots/random/"))
}

func TestExporter_Errors(t *testing.T) {
	_, err := NewExporter(repository.NewMemoryRepo(), nil, 0).Export(context.Background(), "space")
	require.ErrorIs(t, err, ErrStorageDisabled)

	store := newFakeObjectStore()
	store.uploadErr = errors.New("bucket gone")
	_, err = NewExporter(repository.NewMemoryRepo(), store, 0).Export(context.Background(), "space")
	require.ErrorIs(t, err, store.uploadErr)
}
