package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"seo-assistant/internal/app"
	"seo-assistant/internal/console"
	"seo-assistant/internal/domain"
)

const pingSpanName = "langfuse-ping"

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that traces reach Langfuse",
		Long: `ping sends the prompt "ping" to the model with tracing enabled and flushes
the exporter. Without Langfuse keys it prints the variables to set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a)

			checkTracing(ctx, a, console.NewPrinter(cmd.OutOrStdout()))
			return nil
		},
	}
}

// checkTracing runs one traced "ping" completion and flushes it. It reports
// whether traces are being delivered.
func checkTracing(ctx context.Context, a *app.App, p *console.Printer) bool {
	if !a.Config.TracingConfigured() {
		p.TracingNotConfigured()
		return false
	}

	_, err := a.Completer(pingSpanName).Complete(ctx, domain.CompletionRequest{
		Model:       a.Config.OpenAIModel,
		Messages:    []domain.ChatMessage{{Role: domain.RoleUser, Content: "ping"}},
		Temperature: 0,
		User:        consoleUserID,
		RequestID:   uuid.NewString(),
	})
	if err == nil {
		err = a.Tracing.Flush(ctx)
	}
	p.PingResult(err)
	return err == nil
}
