package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"seo-assistant/internal/console"
	"seo-assistant/internal/usecase"
)

const consoleUserID = "console"

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [product text]",
		Short: "Generate an SEO description for one product",
		Long: `generate checks the Langfuse connection, asks for the product text when
none is given as arguments and prints the formatted description.`,
		RunE: runGenerate,
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeApp(ctx, a)

	p := console.NewPrinter(cmd.OutOrStdout())
	p.Banner()
	p.TracingStatus(checkTracing(ctx, a, p))

	text := strings.Join(args, " ")
	if text == "" {
		p.Prompt()
		text, err = readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	p.Processing()
	svc, err := a.DescribeService()
	if err != nil {
		return err
	}
	out, err := svc.Describe(ctx, usecase.DescribeInput{UserID: consoleUserID, Text: text})
	if err != nil {
		p.Failure(err)
		return nil
	}
	p.Result(out.Text, a.Tracing.Enabled())
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read product text: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
