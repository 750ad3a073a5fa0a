package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/factdeck/factdeck/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongoCollection returns a throwaway collection on the server named by
// MONGODB_URI, skipping the test when none is configured.
func mongoCollection(t *testing.T) *mongo.Collection {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping MongoDB integration test")
	}
	client, err := database.ConnectMongo(context.Background(), uri, 5*time.Second)
	require.NoError(t, err)
	col := client.Database("factdeck_test").Collection("facts_" + uuid.NewString())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = col.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return col
}

func TestMongoRepo(t *testing.T) {
	contract(t, func(t *testing.T) Repository { return NewMongoRepo(mongoCollection(t)) })
}

// Documents written by other tools may lack lastShown entirely; they count as
// never shown.
func TestMongoRepo_MissingLastShownIsEligible(t *testing.T) {
	ctx := context.Background()
	col := mongoCollection(t)
	r := NewMongoRepo(col)

	_, err := col.InsertOne(ctx, bson.M{
		"_id":       "legacy-1",
		"category":  "history",
		"content":   "Cleopatra lived closer to the Moon landing than to the pyramids.",
		"createdAt": time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	got, err := r.SampleEligible(ctx, "history", now.Add(-6*time.Hour), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "legacy-1", got[0].ID)
	assert.Nil(t, got[0].LastShown)

	require.NoError(t, r.MarkShown(ctx, []string{"legacy-1"}, now))
	got, err = r.SampleEligible(ctx, "history", now.Add(-6*time.Hour), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
