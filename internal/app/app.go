// Package app assembles the completion pipeline, session store and bot
// dispatcher from a Config for every entrypoint.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"seo-assistant/internal/bot"
	"seo-assistant/internal/config"
	"seo-assistant/internal/integrations/openai"
	"seo-assistant/internal/integrations/paramstore"
	"seo-assistant/internal/metrics"
	"seo-assistant/internal/repository"
	"seo-assistant/internal/tracing"
	"seo-assistant/internal/usecase"
)

type Mode int

const (
	ModeBot Mode = iota
	ModeWebhook
	ModeCLI
)

const serviceName = "seo-assistant"

// WebhookMaxOpenAITimeout caps OPENAI_TIMEOUT in webhook mode. It must stay
// below the 29s API Gateway integration timeout or Telegram redelivers.
const WebhookMaxOpenAITimeout = 25 * time.Second

var loadAWSConfig = func(ctx context.Context) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx)
}

// Prepare loads the configuration, resolves secrets from SSM when
// PARAM_PREFIX is set and checks what mode needs. No client is built here.
func Prepare(ctx context.Context, mode Mode) (*config.Config, error) {
	cfg := config.Load()

	if cfg.ParamPrefix != "" && needsSecrets(cfg, mode) {
		awsCfg, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("app: load AWS config: %w", err)
		}
		store, err := paramstore.New(awsssm.NewFromConfig(awsCfg), cfg.ParamPrefix)
		if err != nil {
			return nil, fmt.Errorf("app: create SSM client: %w", err)
		}
		if mode == ModeCLI {
			err = cfg.ResolveOpenAIKey(ctx, store)
		} else {
			err = cfg.ResolveSecrets(ctx, store)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := Validate(cfg, mode); err != nil {
		return nil, err
	}
	if mode == ModeWebhook && (cfg.OpenAITimeout <= 0 || cfg.OpenAITimeout > WebhookMaxOpenAITimeout) {
		cfg.OpenAITimeout = WebhookMaxOpenAITimeout
	}
	return cfg, nil
}

// Validate checks the settings required by mode.
func Validate(cfg *config.Config, mode Mode) error {
	if mode == ModeCLI {
		return cfg.RequireOpenAI()
	}
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}
	return cfg.RequireSessionStore()
}

func needsSecrets(cfg *config.Config, mode Mode) bool {
	if cfg.OpenAIAPIKey == "" {
		return true
	}
	return mode != ModeCLI && cfg.TelegramBotToken == ""
}

// App holds the clients shared by one process.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Tracing  *tracing.Provider
	Registry *prometheus.Registry

	llm       *openai.Client
	collector *metrics.Collector

	awsOnce sync.Once
	awsCfg  aws.Config
	awsErr  error

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	llm, err := openai.NewClient(cfg.OpenAIAPIKey,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithTimeout(cfg.OpenAITimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("app: create OpenAI client: %w", err)
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("app: register metrics: %w", err)
	}

	tp, err := tracing.New(ctx, tracing.Config{
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		Host:        cfg.LangfuseHost,
		ServiceName: serviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create tracer provider: %w", err)
	}
	if tp.Enabled() {
		logger.Info("langfuse tracing enabled", "host", cfg.LangfuseHost)
	} else {
		logger.Info("langfuse keys not set, tracing disabled")
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Tracing:   tp,
		Registry:  reg,
		llm:       llm,
		collector: collector,
	}, nil
}

// Completer returns the provider client wrapped with metrics and a tracing
// span of the given name.
func (a *App) Completer(spanName string) usecase.CompletionClient {
	return tracing.NewTracedClient(
		a.collector.Instrument(a.llm),
		a.Tracing.Tracer(),
		spanName,
	)
}

func (a *App) DescribeService() (*usecase.DescribeService, error) {
	return usecase.NewDescribeService(a.Completer(tracing.DefaultSpanName), usecase.Settings{
		Model:       a.Config.OpenAIModel,
		Temperature: a.Config.OpenAITemperature,
		MaxTokens:   a.Config.OpenAIMaxTokens,
	}, a.Logger)
}

// SessionStore builds the backend selected by SESSION_STORE.
func (a *App) SessionStore(ctx context.Context) (repository.SessionStore, error) {
	switch a.Config.SessionStore {
	case config.StoreMemory, "":
		return repository.NewMemoryStore(), nil
	case config.StoreRedis:
		opts, err := redis.ParseURL(a.Config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("app: parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, client.Close)
		return repository.NewRedisStore(client, repository.WithPrefix(serviceName))
	case config.StoreDynamoDB:
		awsCfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewDynamoStore(awsdynamodb.NewFromConfig(awsCfg), a.Config.StateTable)
	default:
		return nil, fmt.Errorf("app: unknown session store %q", a.Config.SessionStore)
	}
}

// Dispatcher wires the description flow behind api.
func (a *App) Dispatcher(ctx context.Context, api bot.Messenger) (*bot.Dispatcher, error) {
	describer, err := a.DescribeService()
	if err != nil {
		return nil, err
	}
	sessions, err := a.SessionStore(ctx)
	if err != nil {
		return nil, err
	}
	return bot.NewDispatcher(api, describer, sessions, bot.Options{
		TracingEnabled: a.Config.TracingConfigured(),
		Logger:         a.Logger,
	})
}

// Close flushes pending spans and releases connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("app: shutdown tracing: %w", err))
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) aws(ctx context.Context) (aws.Config, error) {
	a.awsOnce.Do(func() {
		a.awsCfg, a.awsErr = loadAWSConfig(ctx)
		if a.awsErr != nil {
			a.awsErr = fmt.Errorf("app: load AWS config: %w", a.awsErr)
		}
	})
	return a.awsCfg, a.awsErr
}
