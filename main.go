package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/factdeck/factdeck/handlers"
	"github.com/factdeck/factdeck/internal/config"
	"github.com/factdeck/factdeck/internal/database"
	"github.com/factdeck/factdeck/internal/fact"
	"github.com/factdeck/factdeck/internal/fact/generator"
	facthandler "github.com/factdeck/factdeck/internal/fact/handler"
	"github.com/factdeck/factdeck/internal/fact/repository"
	"github.com/factdeck/factdeck/internal/fact/service"
	"github.com/factdeck/factdeck/internal/oidc"
	"github.com/factdeck/factdeck/internal/sessions"
	"github.com/factdeck/factdeck/internal/storage"
	"github.com/factdeck/factdeck/internal/tokens"
	"github.com/factdeck/factdeck/internal/users"
	"github.com/factdeck/factdeck/pkg/logger"
	"github.com/factdeck/factdeck/pkg/metrics"
	"github.com/factdeck/factdeck/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

// app carries everything the router needs.
type app struct {
	cfg       *config.Config
	facts     service.Service
	exporter  *service.Exporter
	users     *users.Service
	blacklist *sessions.Blacklist
	google    handlers.IdentityVerifier
	redis     *redis.Client
	gatherer  prometheus.Gatherer
	// readiness checks by dependency name
	checks map[string]func(context.Context) error
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	logger.Infof("config loaded: store=%s llm=%s mongo=%v redis=%v minio=%v",
		cfg.Facts.Store, cfg.LLM.Provider, cfg.MongoDB.URI != "", cfg.Redis.Addr() != "", cfg.MinIO.Endpoint != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, checks: map[string]func(context.Context) error{}}

	// MongoDB backs users and, when selected, the fact store.
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		mongoClient, err = database.ConnectMongoRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			if cfg.Facts.Store == "mongo" {
				logger.Fatalf("fact store: %v", err)
			}
			logger.Warnf("continuing without MongoDB: %v", err)
		} else {
			defer func() { _ = mongoClient.Disconnect(context.Background()) }()
			a.checks["mongo"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
		}
	}

	if addr := cfg.Redis.Addr(); addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = rc.Close()
		} else {
			logger.Infof("connected to Redis at %s", addr)
			a.redis = rc
			defer rc.Close()
			a.checks["redis"] = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
		}
	}

	catalog, err := fact.LoadCatalog(cfg.Facts.CatalogFile)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}

	repo, closeRepo, err := repository.Open(ctx, cfg, mongoClient)
	if err != nil {
		logger.Fatalf("open fact store: %v", err)
	}
	defer func() { _ = closeRepo() }()

	gen, err := generator.New(generatorConfig(cfg), catalog)
	if err != nil {
		logger.Fatalf("fact generator: %v", err)
	}
	if gen == nil {
		logger.Warnf("LLM_PROVIDER=none: serving stored facts only")
	}
	a.facts = service.New(repo, gen, catalog, service.Options{
		FreshnessWindow: cfg.Facts.FreshnessWindow,
		TopicWindow:     cfg.Facts.TopicWindow,
		DefaultCount:    cfg.Facts.DefaultCount,
		MaxCount:        cfg.Facts.MaxCount,
	})

	var objects service.ObjectStore
	if cfg.MinIO.Endpoint != "" {
		st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("snapshot export disabled: %v", err)
		} else {
			objects = st
		}
	}
	a.exporter = service.NewExporter(repo, objects, cfg.MinIO.PresignExpiry)

	var userRepo users.UserRepository = users.NewMemoryUserRepository()
	if mongoClient != nil {
		userRepo = users.NewMongoUserRepository(mongoClient.Database(cfg.MongoDB.Database).Collection("users"))
	} else {
		logger.Warnf("accounts are kept in memory and will not survive a restart")
	}
	a.users = users.NewService(userRepo)
	a.blacklist = sessions.NewBlacklist(a.redis)

	if cfg.Google.ClientID != "" {
		v, err := oidc.NewVerifier(ctx, cfg.Google.Issuer, cfg.Google.ClientID)
		if err != nil {
			logger.Warnf("Google sign-in disabled: %v", err)
		} else {
			a.google = v
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)
	a.gatherer = reg

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      newRouter(a),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("starting fact service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}

func generatorConfig(cfg *config.Config) generator.Config {
	return generator.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	}
}

func newRouter(a *app) *gin.Engine {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(handlers.CORSMiddleware(a.cfg.Server.CORSOrigin))
	r.Use(gin.Logger(), gin.Recovery())

	// per-user when authenticated, otherwise per-IP
	if a.cfg.RateLimit.Enabled {
		if a.redis != nil {
			r.Use(middleware.RedisRateLimitMiddleware(a.redis, a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst, a.cfg.RateLimit.Window))
		} else {
			r.Use(middleware.RateLimitMiddleware(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		deps := map[string]bool{}
		for name, check := range a.checks {
			err := check(ctx)
			deps[name] = err == nil
			if err != nil {
				logger.Warnf("readiness: %s: %v", name, err)
				ready = false
			}
		}
		body := gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	})
	if a.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})))
	}
	handlers.RegisterSwagger(r)

	protect := middleware.AuthMiddleware(tokens.NewVerifier(a.cfg), a.blacklist)

	facthandler.RegisterFactRoutes(r, a.facts)
	facthandler.RegisterSnapshotRoutes(r.Group("", protect), a.exporter)
	auth := handlers.NewAuthHandler(a.cfg, a.users, a.blacklist)
	if a.google != nil {
		auth.WithGoogle(a.google)
	}
	auth.Register(r.Group("/api"), protect)
	return r
}
