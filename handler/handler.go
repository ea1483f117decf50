// Package handler serves Telegram webhook deliveries through API Gateway.
package handler

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

const (
	correlationHeader = "X-Correlation-Id"
	secretHeader      = "X-Telegram-Bot-Api-Secret-Token"
)

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

type Handler struct {
	updates UpdateHandler
	secret  string
	logger  *slog.Logger
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler returns a Handler. When secret is empty the secret header is
// not checked.
func NewHandler(updates UpdateHandler, secret string, logger *slog.Logger) (*Handler, error) {
	if updates == nil {
		return nil, errors.New("handler: update handler must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{updates: updates, secret: secret, logger: logger}, nil
}

// Handle processes one update synchronously. Dispatch failures are logged and
// still acknowledged so Telegram does not redeliver the update.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = newUUID()
	}
	log := h.logger.With("correlation_id", correlationID)

	if h.secret != "" {
		got := headerValue(event.Headers, secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			log.Warn("webhook secret mismatch")
			return jsonResponse(http.StatusUnauthorized, errorResponse{Error: "unauthorized"}, correlationID), nil
		}
	}

	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			log.Warn("webhook body is not valid base64", "err", err)
			return jsonResponse(http.StatusBadRequest, errorResponse{Error: "invalid_update"}, correlationID), nil
		}
		body = string(decoded)
	}

	var update tgbotapi.Update
	if err := json.Unmarshal([]byte(body), &update); err != nil {
		log.Warn("webhook body is not a telegram update", "err", err)
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: "invalid_update"}, correlationID), nil
	}

	if err := h.updates.HandleUpdate(ctx, update); err != nil {
		log.Error("update handling failed", "update_id", update.UpdateID, "err", err)
	}
	return jsonResponse(http.StatusOK, okResponse{OK: true}, correlationID), nil
}

func jsonResponse(status int, payload any, correlationID string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}
}

// headerValue looks up key case-insensitively; API Gateway keeps client casing.
func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var newUUID = func() string {
	return uuid.NewString()
}
