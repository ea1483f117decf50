package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"seo-assistant/internal/tracing"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreDynamoDB = "dynamodb"
)

// ErrMissing is wrapped by every error about a required setting.
var ErrMissing = errors.New("required setting is not set")

type Config struct {
	// OpenAI
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAITemperature float64
	OpenAIMaxTokens   int
	OpenAITimeout     time.Duration

	// Telegram
	TelegramBotToken      string
	TelegramWebhookSecret string

	// Langfuse
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string

	// Sessions
	SessionStore string
	RedisURL     string
	StateTable   string

	// SSM Parameter Store prefix for secrets missing from the environment
	ParamPrefix string

	MetricsAddr string
	LogLevel    string
}

// SecretGetter resolves a named secret, e.g. from SSM Parameter Store.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		OpenAIAPIKey:          getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:           getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITemperature:     getEnvAsFloatOrDefault("OPENAI_TEMPERATURE", 0.2),
		OpenAIMaxTokens:       getEnvAsIntOrDefault("OPENAI_MAX_TOKENS", 0),
		OpenAITimeout:         getEnvAsDurationOrDefault("OPENAI_TIMEOUT", 2*time.Minute),
		TelegramBotToken:      getEnvOrDefault("TELEGRAM_BOT_TOKEN", ""),
		TelegramWebhookSecret: getEnvOrDefault("TELEGRAM_WEBHOOK_SECRET", ""),
		LangfusePublicKey:     getEnvOrDefault("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:     getEnvOrDefault("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:          getEnvOrDefault("LANGFUSE_HOST", tracing.DefaultHost),
		SessionStore:          strings.ToLower(getEnvOrDefault("SESSION_STORE", StoreMemory)),
		RedisURL:              getEnvOrDefault("REDIS_URL", ""),
		StateTable:            getEnvOrDefault("STATE_TABLE", ""),
		ParamPrefix:           getEnvOrDefault("PARAM_PREFIX", ""),
		MetricsAddr:           getEnvOrDefault("METRICS_ADDR", ""),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// ResolveSecrets fills the OpenAI key and the bot token from g when they are
// not set in the environment. Secrets already present are left untouched.
func (c *Config) ResolveSecrets(ctx context.Context, g SecretGetter) error {
	if err := c.ResolveOpenAIKey(ctx, g); err != nil {
		return err
	}
	if c.TelegramBotToken == "" {
		v, err := g.GetSecret(ctx, "telegram-bot-token")
		if err != nil {
			return fmt.Errorf("config: resolve TELEGRAM_BOT_TOKEN: %w", err)
		}
		c.TelegramBotToken = v
	}
	return nil
}

// ResolveOpenAIKey is ResolveSecrets for entrypoints without a bot.
func (c *Config) ResolveOpenAIKey(ctx context.Context, g SecretGetter) error {
	if g == nil {
		return errors.New("config: secret getter must not be nil")
	}
	if c.OpenAIAPIKey == "" {
		v, err := g.GetSecret(ctx, "openai-api-key")
		if err != nil {
			return fmt.Errorf("config: resolve OPENAI_API_KEY: %w", err)
		}
		c.OpenAIAPIKey = v
	}
	return nil
}

// RequireOpenAI fails when the completion provider key is absent.
func (c *Config) RequireOpenAI() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return fmt.Errorf("config: %w: OPENAI_API_KEY", ErrMissing)
	}
	return nil
}

// RequireTelegram fails when the bot token or the completion provider key is
// absent. The token is checked first.
func (c *Config) RequireTelegram() error {
	if strings.TrimSpace(c.TelegramBotToken) == "" {
		return fmt.Errorf("config: %w: TELEGRAM_BOT_TOKEN", ErrMissing)
	}
	return c.RequireOpenAI()
}

// RequireSessionStore checks the settings of the selected session backend.
func (c *Config) RequireSessionStore() error {
	switch c.SessionStore {
	case StoreMemory:
		return nil
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: %w: REDIS_URL", ErrMissing)
		}
		return nil
	case StoreDynamoDB:
		if c.StateTable == "" {
			return fmt.Errorf("config: %w: STATE_TABLE", ErrMissing)
		}
		return nil
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}
}

// TracingConfigured reports whether both Langfuse keys are present.
func (c *Config) TracingConfigured() bool {
	return c.LangfusePublicKey != "" && c.LangfuseSecretKey != ""
}

func getEnvOrDefault(key, defaultVal string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
