// Command seed fills the configured fact store with generated facts so a
// fresh deployment has something to serve before the first request.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/factdeck/factdeck/internal/config"
	"github.com/factdeck/factdeck/internal/database"
	"github.com/factdeck/factdeck/internal/fact"
	"github.com/factdeck/factdeck/internal/fact/generator"
	"github.com/factdeck/factdeck/internal/fact/repository"
	"github.com/factdeck/factdeck/internal/fact/service"
	"github.com/factdeck/factdeck/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	category := flag.String("category", "", "seed a single category (default: every catalog category)")
	count := flag.Int("count", 5, "facts to generate per category")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := fact.LoadCatalog(cfg.Facts.CatalogFile)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}

	var client *mongo.Client
	if cfg.Facts.Store == "mongo" {
		client, err = database.ConnectMongoRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3, time.Second)
		if err != nil {
			logger.Fatalf("fact store: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
	}
	repo, closeRepo, err := repository.Open(ctx, cfg, client)
	if err != nil {
		logger.Fatalf("open fact store: %v", err)
	}
	defer func() { _ = closeRepo() }()

	gen, err := generator.New(generator.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	}, catalog)
	if err != nil {
		logger.Fatalf("fact generator: %v", err)
	}
	if gen == nil {
		logger.Fatalf("seeding needs LLM_PROVIDER to be set")
	}

	svc := service.New(repo, gen, catalog, service.Options{MaxCount: *count})
	categories := catalog.Names()
	if *category != "" {
		categories = []string{*category}
	}

	failed := seed(ctx, svc, categories, *count)
	if failed > 0 {
		logger.Errorf("seed: %d of %d categories failed", failed, len(categories))
		os.Exit(1)
	}
}

// seed runs GenerateBatch for every category and returns how many failed.
func seed(ctx context.Context, svc service.Service, categories []string, count int) int {
	failed := 0
	for _, c := range categories {
		if ctx.Err() != nil {
			return failed + 1
		}
		n, err := svc.GenerateBatch(ctx, c, count)
		if err != nil {
			logger.Errorf("seed %s: %v", c, err)
			failed++
			continue
		}
		logger.Infof("seed %s: generated %d facts", c, n)
	}
	return failed
}
