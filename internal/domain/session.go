package domain

import "time"

// ConversationState tells whether the next free-text message is a
// product-description request.
type ConversationState string

const (
	StateIdle                ConversationState = ""
	StateAwaitingDescription ConversationState = "awaiting_description"
)

// Session is the per-user conversation state.
type Session struct {
	UserID       int64
	State        ConversationState
	Descriptions int
	UpdatedAt    time.Time
}

// Awaiting reports whether free text should be forwarded to the model.
func (s Session) Awaiting() bool {
	return s.State == StateAwaitingDescription
}

// DescriptionTurn is one completed generation.
type DescriptionTurn struct {
	UserID    int64
	RequestID string
	Input     string
	Output    string
	CreatedAt time.Time
}
