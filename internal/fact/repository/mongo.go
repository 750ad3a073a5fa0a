package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/factdeck/factdeck/internal/fact"
	"github.com/factdeck/factdeck/pkg/logger"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on a MongoDB collection. Facts are keyed by
// a string uuid in _id; lastShown is stored as null until the first serve.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// eligibility queries filter on category and lastShown
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}, {Key: "lastShown", Value: 1}}}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := col.Indexes().CreateOne(ctx, idxModel); err != nil {
		logger.Warnf("facts: could not ensure index: %v", err)
	}
	return &MongoRepo{col: col}
}

func categoryFilter(category string) bson.M {
	if category == "" {
		return bson.M{}
	}
	return bson.M{"category": category}
}

// eligibleFilter matches facts never shown (null or missing lastShown) or shown before cutoff.
func eligibleFilter(category string, cutoff time.Time) bson.M {
	f := categoryFilter(category)
	f["$or"] = bson.A{
		bson.M{"lastShown": nil},
		bson.M{"lastShown": bson.M{"$lt": cutoff}},
	}
	return f
}

func (m *MongoRepo) SampleEligible(ctx context.Context, category string, notShownSince time.Time, limit int) ([]*fact.Fact, error) {
	return m.sample(ctx, eligibleFilter(category, notShownSince), limit)
}

func (m *MongoRepo) SampleAny(ctx context.Context, category string, limit int) ([]*fact.Fact, error) {
	return m.sample(ctx, categoryFilter(category), limit)
}

func (m *MongoRepo) sample(ctx context.Context, filter bson.M, limit int) ([]*fact.Fact, error) {
	if limit <= 0 {
		return []*fact.Fact{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: limit}}}},
	}
	cur, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sample facts: %w", err)
	}
	return decodeAll(ctx, cur)
}

func (m *MongoRepo) Create(ctx context.Context, f *fact.Fact) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if _, err := m.col.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("insert fact: %w", err)
	}
	return nil
}

func (m *MongoRepo) MarkShown(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := m.col.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": bson.M{"lastShown": at}})
	if err != nil {
		return fmt.Errorf("mark shown: %w", err)
	}
	return nil
}

func (m *MongoRepo) Contents(ctx context.Context, category string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"content": 1})
	cur, err := m.col.Find(ctx, categoryFilter(category), opts)
	if err != nil {
		return nil, fmt.Errorf("find contents: %w", err)
	}
	defer cur.Close(ctx)
	out := []string{}
	for cur.Next(ctx) {
		var doc struct {
			Content string `bson:"content"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.Content)
	}
	return out, cur.Err()
}

func (m *MongoRepo) List(ctx context.Context, category string) ([]*fact.Fact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := m.col.Find(ctx, categoryFilter(category), opts)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	return decodeAll(ctx, cur)
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]*fact.Fact, error) {
	defer cur.Close(ctx)
	out := []*fact.Fact{}
	for cur.Next(ctx) {
		var f fact.Fact
		if err := cur.Decode(&f); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, cur.Err()
}
