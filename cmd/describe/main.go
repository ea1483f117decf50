package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"seo-assistant/internal/app"
	"seo-assistant/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "describe",
		Short:         "SEO product descriptions from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `describe turns a short product text into a structured SEO description
using the same model and prompt as the Telegram bot.

Configuration is read from the environment and an optional .env file.`,
	}
	root.AddCommand(newGenerateCmd(), newAskCmd(), newPingCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("describe failed", "err", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the completion pipeline.
func setup(ctx context.Context) (*app.App, error) {
	cfg, err := app.Prepare(ctx, app.ModeCLI)
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	return app.New(ctx, cfg, logger)
}

func closeApp(ctx context.Context, a *app.App) {
	if err := a.Close(context.WithoutCancel(ctx)); err != nil {
		a.Logger.Warn("shutdown incomplete", "err", err)
	}
}
