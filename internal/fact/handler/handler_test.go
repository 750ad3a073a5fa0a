package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/factdeck/factdeck/internal/fact"
	"github.com/factdeck/factdeck/internal/fact/generator"
	"github.com/factdeck/factdeck/internal/fact/repository"
	"github.com/factdeck/factdeck/internal/fact/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, gen generator.Generator) (*gin.Engine, *repository.MemoryRepo) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	svc := service.New(repo, gen, fact.DefaultCatalog(), service.Options{})
	g := gin.New()
	RegisterFactRoutes(g, svc)
	return g, repo
}

func counting(reply string) (generator.Generator, *int) {
	calls := 0
	return generator.Func(func(context.Context, string, []string) (string, error) {
		calls++
		return reply, nil
	}), &calls
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestGetFacts(t *testing.T) {
	gen, calls := counting("octopuses have three hearts")
	g, repo := newRouter(t, gen)
	require.NoError(t, repo.Create(context.Background(), &fact.Fact{Category: "animals", Content: "Cows have best friends."}))

	w := do(g, http.MethodGet, "/api/facts/animals?count=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Facts []string `json:"facts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"Cows have best friends.", "Octopuses have three hearts."}, resp.Facts)
	assert.Equal(t, 1, *calls)

	w = do(g, http.MethodGet, "/api/facts/animals?count=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFacts_DefaultCountAndUnknown(t *testing.T) {
	gen, calls := counting("fact")
	g, _ := newRouter(t, gen)

	w := do(g, http.MethodGet, "/api/facts/random", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["facts"], service.DefaultCount)

	*calls = 0
	w = do(g, http.MethodGet, "/api/facts/knitting", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"facts":[]}`, w.Body.String())
	assert.Equal(t, 0, *calls)
}

func TestGetFacts_GeneratorFailure(t *testing.T) {
	gen := generator.Func(func(context.Context, string, []string) (string, error) {
		return "", errors.New("provider down")
	})
	g, _ := newRouter(t, gen)
	w := do(g, http.MethodGet, "/api/facts/space", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGenerateFacts(t *testing.T) {
	gen, calls := counting("the moon drifts away each year")
	g, repo := newRouter(t, gen)

	w := do(g, http.MethodPost, "/api/generate-facts", `{"category":"space","count":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp["generated"])
	assert.Equal(t, "Generated 2 facts for space", resp["message"])
	assert.Equal(t, 2, *calls)
	list, _ := repo.List(context.Background(), "space")
	assert.Len(t, list, 2)

	assert.Equal(t, http.StatusBadRequest, do(g, http.MethodPost, "/api/generate-facts", `{"count":2}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(g, http.MethodPost, "/api/generate-facts", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, do(g, http.MethodPost, "/api/generate-facts", `{"category":"knitting"}`).Code)
}

func TestGenerateFacts_Disabled(t *testing.T) {
	g, _ := newRouter(t, nil)
	w := do(g, http.MethodPost, "/api/generate-facts", `{"category":"space","count":1}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGenerateUniqueFact(t *testing.T) {
	gen, _ := counting("the sky is blue")
	g, repo := newRouter(t, gen)

	w := do(g, http.MethodGet, "/generate-fact/sky", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fact":"The sky is blue."}`, w.Body.String())

	// the same text again is a duplicate every time
	w = do(g, http.MethodGet, "/generate-fact/sky", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Unable to generate a unique fact for this topic. Please try again."}`, w.Body.String())

	list, _ := repo.List(context.Background(), "sky")
	assert.Len(t, list, 1)
}

func TestTopicFacts(t *testing.T) {
	gen, calls := counting("unused")
	g, repo := newRouter(t, gen)

	w := do(g, http.MethodGet, "/facts/volcanoes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	require.NoError(t, repo.Create(context.Background(), &fact.Fact{Category: "volcanoes", Content: "Hawaii grows every year."}))
	w = do(g, http.MethodGet, "/facts/volcanoes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Hawaii grows every year."]`, w.Body.String())
	assert.Equal(t, 0, *calls)
}

func TestCategories(t *testing.T) {
	g, _ := newRouter(t, nil)
	w := do(g, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["categories"], "science")
	assert.Len(t, resp["categories"], 15)
}

type memObjects struct{ keys []string }

func (m *memObjects) UploadFile(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	_, err := io.Copy(io.Discard, r)
	m.keys = append(m.keys, key)
	return err
}

func (m *memObjects) GetPresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://objects/" + key, nil
}

func TestSnapshot(t *testing.T) {
	repo := repository.NewMemoryRepo()
	require.NoError(t, repo.Create(context.Background(), &fact.Fact{Category: "art", Content: "Van Gogh sold one painting."}))
	objects := &memObjects{}
	g := gin.New()
	RegisterSnapshotRoutes(g, service.NewExporter(repo, objects, time.Minute))

	w := do(g, http.MethodPost, "/api/facts/snapshot/art", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, "http://objects/"+snap.Key, snap.URL)
	assert.Equal(t, []string{snap.Key}, objects.keys)

	g = gin.New()
	RegisterSnapshotRoutes(g, service.NewExporter(repo, nil, 0))
	assert.Equal(t, http.StatusServiceUnavailable, do(g, http.MethodPost, "/api/facts/snapshot/art", "").Code)
}
