package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/factdeck/factdeck/internal/config"
	"github.com/factdeck/factdeck/internal/database"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNoMongoClient = errors.New("mongo fact store needs a connected client")

// Open builds the fact store selected by cfg.Facts.Store. client is only
// used for "mongo". The returned func releases whatever Open acquired.
func Open(ctx context.Context, cfg *config.Config, client *mongo.Client) (Repository, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Facts.Store {
	case "mongo":
		if client == nil {
			return nil, nil, ErrNoMongoClient
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.Facts.Collection)
		return NewMongoRepo(col), noop, nil
	case "sqlite":
		db, err := database.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		repo, err := NewSQLiteRepo(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil
	case "memory", "":
		return NewMemoryRepo(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown fact store %q", cfg.Facts.Store)
	}
}
