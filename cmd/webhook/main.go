package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"seo-assistant/handler"
	"seo-assistant/internal/app"
	"seo-assistant/internal/config"
	"seo-assistant/internal/logging"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := app.Prepare(ctx, app.ModeWebhook)
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	if cfg.SessionStore == config.StoreMemory {
		logger.Warn("in-memory sessions do not survive between Lambda instances")
	}

	// ---- Clients ----
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to create app", "err", err)
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		slog.Error("failed to create Telegram client", "err", err)
		os.Exit(1)
	}

	dispatcher, err := a.Dispatcher(ctx, api)
	if err != nil {
		slog.Error("failed to create dispatcher", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(dispatcher, cfg.TelegramWebhookSecret, logger)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	// The runtime may freeze the process between invocations, so spans are
	// flushed before each response.
	handle := func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp, err := h.Handle(ctx, event)
		if flushErr := a.Tracing.Flush(ctx); flushErr != nil {
			logger.Warn("failed to flush traces", "err", flushErr)
		}
		return resp, err
	}

	lambda.StartWithOptions(handle, lambda.WithEnableSIGTERM(func() {
		_ = a.Close(context.Background())
	}))
}
