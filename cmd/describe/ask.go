package main

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"seo-assistant/internal/console"
	"seo-assistant/internal/domain"
)

const (
	defaultAskSystem   = "You are a helpful assistant."
	defaultAskQuestion = "Привет! Расскажи, как приготовить картошку фри во фритюрнице."
	askSpanName        = "ask"
)

type askOptions struct {
	system      string
	model       string
	temperature float64
	maxTokens   int
}

func newAskCmd() *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Send one chat-completion request and print the answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.system, "system", defaultAskSystem, "system message")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name (default from OPENAI_MODEL)")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", 0.7, "sampling temperature")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 300, "maximum tokens in the answer")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string, opts *askOptions) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeApp(ctx, a)

	question := strings.Join(args, " ")
	if question == "" {
		question = defaultAskQuestion
	}
	model := opts.model
	if model == "" {
		model = a.Config.OpenAIModel
	}

	p := console.NewPrinter(cmd.OutOrStdout())
	out, err := a.Completer(askSpanName).Complete(ctx, domain.CompletionRequest{
		Model: model,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: opts.system},
			{Role: domain.RoleUser, Content: question},
		},
		Temperature: opts.temperature,
		MaxTokens:   opts.maxTokens,
		User:        consoleUserID,
		RequestID:   uuid.NewString(),
	})
	if err != nil {
		p.AnswerFailed(err)
		return nil
	}
	p.Answer(out.Text)
	return nil
}
