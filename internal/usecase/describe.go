package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"seo-assistant/internal/domain"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.2
)

type CompletionClient interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Settings are the fixed completion parameters of a DescribeService.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type DescribeService struct {
	llm      CompletionClient
	settings Settings
	logger   *slog.Logger
}

type DescribeInput struct {
	UserID string
	Text   string
}

type DescribeOutput struct {
	Text      string
	RequestID string
	Usage     domain.Usage
}

func NewDescribeService(llm CompletionClient, settings Settings, logger *slog.Logger) (*DescribeService, error) {
	if llm == nil {
		return nil, errors.New("usecase: completion client must not be nil")
	}
	settings.Model = strings.TrimSpace(settings.Model)
	if settings.Model == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	if settings.MaxTokens < 0 {
		settings.MaxTokens = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DescribeService{llm: llm, settings: settings, logger: logger}, nil
}

// Describe issues exactly one completion call for the given text. Failures are
// not retried.
func (s *DescribeService) Describe(ctx context.Context, in DescribeInput) (DescribeOutput, error) {
	req := domain.CompletionRequest{
		Model:       s.settings.Model,
		Messages:    BuildMessages(in.Text),
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
		User:        in.UserID,
		RequestID:   newUUID(),
	}

	out, err := s.llm.Complete(ctx, req)
	if err != nil {
		ucErr := newError(ErrorUpstream, "openai_error", err)
		if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
			ucErr = newError(ErrorRateLimited, "openai_rate_limited", err)
		}
		s.logger.Error("description generation failed",
			"user_id", in.UserID,
			"request_id", req.RequestID,
			"code", ucErr.Code,
			"reason", ucErr.Reason,
			"err", err,
		)
		return DescribeOutput{}, ucErr
	}

	s.logger.Info("description generated",
		"user_id", in.UserID,
		"request_id", req.RequestID,
		"total_tokens", out.Usage.TotalTokens,
	)
	return DescribeOutput{
		Text:      out.Text,
		RequestID: req.RequestID,
		Usage:     out.Usage,
	}, nil
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}
