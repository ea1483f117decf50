// Package repository persists per-user conversation sessions.
package repository

import (
	"context"
	"errors"
	"strconv"

	"seo-assistant/internal/domain"
)

var ErrInvalidUserID = errors.New("repository: user id must be positive")

// SessionStore is the session table consumed by the bot dispatcher.
// Get returns an Idle session for unknown users. SetState and SaveTurn each
// change only their own fields, so concurrent updates of one user compose.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (domain.Session, error)
	SetState(ctx context.Context, userID int64, state domain.ConversationState) error
	// SaveTurn increments the user's description counter by one and records
	// the turn where the backend keeps turns.
	SaveTurn(ctx context.Context, turn domain.DescriptionTurn) error
}

func validUserID(userID int64) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}
	return nil
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
