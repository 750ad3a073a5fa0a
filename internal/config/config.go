package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	Google    GoogleConfig
	LLM       LLMConfig
	Facts     FactsConfig
	MinIO     MinIOConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigin   string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return net.JoinHostPort(r.Host, r.Port)
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
	Window  time.Duration
}

// GoogleConfig enables Google Sign-In when ClientID is set.
type GoogleConfig struct {
	ClientID string
	Issuer   string
}

type JWTConfig struct {
	Secret    string
	Issuer    string
	AccessTTL time.Duration
}

type LLMConfig struct {
	Provider string // openai | ollama | none
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

type FactsConfig struct {
	Store           string // mongo | sqlite | memory
	Collection      string
	FreshnessWindow time.Duration
	TopicWindow     time.Duration
	DefaultCount    int
	MaxCount        int
	CatalogFile     string
}

type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PresignExpiry time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

const devJWTSecret = "factdeck-dev-secret-change-me"

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "30s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "60s")
	viper.SetDefault("CORS_ORIGIN", "*")
	viper.SetDefault("MONGODB_DATABASE", "factsDB")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("SQLITE_PATH", "factdeck.db")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1s")
	viper.SetDefault("JWT_ISSUER", "factdeck")
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 1440)
	viper.SetDefault("GOOGLE_ISSUER", "https://accounts.google.com")
	viper.SetDefault("LLM_PROVIDER", "none")
	viper.SetDefault("LLM_TIMEOUT", "30s")
	viper.SetDefault("FACTS_COLLECTION", "facts")
	viper.SetDefault("FACTS_FRESHNESS_WINDOW", "6h")
	viper.SetDefault("FACTS_TOPIC_WINDOW", "4320h")
	viper.SetDefault("FACTS_DEFAULT_COUNT", 3)
	viper.SetDefault("FACTS_MAX_COUNT", 20)
	viper.SetDefault("MINIO_BUCKET", "factdeck")
	viper.SetDefault("MINIO_PRESIGN_EXPIRY", "15m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	apiKey := viper.GetString("LLM_API_KEY")
	if apiKey == "" {
		apiKey = viper.GetString("OPENAI_API_KEY")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
			CORSOrigin:   viper.GetString("CORS_ORIGIN"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("SQLITE_PATH"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled: viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   viper.GetInt("RATE_LIMIT_BURST"),
			Window:  viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		JWT: JWTConfig{
			Secret:    viper.GetString("JWT_SECRET"),
			Issuer:    viper.GetString("JWT_ISSUER"),
			AccessTTL: time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		Google: GoogleConfig{
			ClientID: viper.GetString("GOOGLE_CLIENT_ID"),
			Issuer:   viper.GetString("GOOGLE_ISSUER"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(viper.GetString("LLM_PROVIDER")),
			Model:    viper.GetString("LLM_MODEL"),
			APIKey:   apiKey,
			BaseURL:  viper.GetString("LLM_BASE_URL"),
			Timeout:  viper.GetDuration("LLM_TIMEOUT"),
		},
		Facts: FactsConfig{
			Store:           strings.ToLower(viper.GetString("FACTS_STORE")),
			Collection:      viper.GetString("FACTS_COLLECTION"),
			FreshnessWindow: viper.GetDuration("FACTS_FRESHNESS_WINDOW"),
			TopicWindow:     viper.GetDuration("FACTS_TOPIC_WINDOW"),
			DefaultCount:    viper.GetInt("FACTS_DEFAULT_COUNT"),
			MaxCount:        viper.GetInt("FACTS_MAX_COUNT"),
			CatalogFile:     viper.GetString("FACTS_CATALOG_FILE"),
		},
		MinIO: MinIOConfig{
			Endpoint:      viper.GetString("MINIO_ENDPOINT"),
			AccessKey:     viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey:     viper.GetString("MINIO_SECRET_KEY"),
			UseSSL:        viper.GetBool("MINIO_USE_SSL"),
			Bucket:        viper.GetString("MINIO_BUCKET"),
			PresignExpiry: viper.GetDuration("MINIO_PRESIGN_EXPIRY"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	// mongo when a URI is configured, otherwise keep everything in memory
	if cfg.Facts.Store == "" {
		cfg.Facts.Store = "memory"
		if cfg.MongoDB.URI != "" {
			cfg.Facts.Store = "mongo"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) validate() error {
	switch c.Facts.Store {
	case "mongo":
		if c.MongoDB.URI == "" {
			return fmt.Errorf("FACTS_STORE=mongo requires MONGODB_URI")
		}
	case "sqlite":
		if c.SQLite.Path == "" {
			return fmt.Errorf("FACTS_STORE=sqlite requires SQLITE_PATH")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown FACTS_STORE %q", c.Facts.Store)
	}
	switch c.LLM.Provider {
	case "openai", "ollama", "none", "":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.Facts.DefaultCount <= 0 || c.Facts.MaxCount < c.Facts.DefaultCount {
		return fmt.Errorf("invalid fact counts: default=%d max=%d", c.Facts.DefaultCount, c.Facts.MaxCount)
	}
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWT.Secret = devJWTSecret
	}
	return nil
}
