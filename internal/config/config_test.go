package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "facts_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("FACTS_FRESHNESS_WINDOW", "90m")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOOGLE_CLIENT_ID", "web.apps.googleusercontent.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "mongo", cfg.Facts.Store)
	require.Equal(t, "facts_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, 90*time.Minute, cfg.Facts.FreshnessWindow)
	require.Equal(t, 4320*time.Hour, cfg.Facts.TopicWindow)
	require.Equal(t, "openai", cfg.LLM.Provider)
	require.Equal(t, "sk-test", cfg.LLM.APIKey)
	require.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	require.Equal(t, 3, cfg.Facts.DefaultCount)
	require.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)
	require.Equal(t, "web.apps.googleusercontent.com", cfg.Google.ClientID)
	require.Equal(t, "https://accounts.google.com", cfg.Google.Issuer)
}

func TestLoadConfig_DefaultsToMemory(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("FACTS_STORE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_ENVIRONMENT", "development")
	t.Setenv("REDIS_HOST", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Facts.Store)
	require.Equal(t, "", cfg.Redis.Addr())
	require.NotEmpty(t, cfg.JWT.Secret)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"mongo without uri":   {"FACTS_STORE": "mongo", "MONGODB_URI": ""},
		"unknown store":       {"FACTS_STORE": "cassandra"},
		"unknown provider":    {"LLM_PROVIDER": "bard"},
		"prod without secret": {"SERVER_ENVIRONMENT": "production", "JWT_SECRET": ""},
		"max below default":   {"FACTS_DEFAULT_COUNT": "5", "FACTS_MAX_COUNT": "2"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
