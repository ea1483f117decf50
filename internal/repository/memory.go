package repository

import (
	"context"
	"sync"
	"time"

	"seo-assistant/internal/domain"
)

// MemoryStore keeps sessions in process memory. State is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]domain.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]domain.Session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (domain.Session, error) {
	if err := validUserID(userID); err != nil {
		return domain.Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userID]
	if !ok {
		return domain.Session{UserID: userID}, nil
	}
	return session, nil
}

func (s *MemoryStore) SetState(_ context.Context, userID int64, state domain.ConversationState) error {
	if err := validUserID(userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[userID]
	session.UserID = userID
	session.State = state
	session.UpdatedAt = s.now().UTC()
	s.sessions[userID] = session
	return nil
}

// SaveTurn increments the counter. Turns are not kept in memory.
func (s *MemoryStore) SaveTurn(_ context.Context, turn domain.DescriptionTurn) error {
	if err := validUserID(turn.UserID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[turn.UserID]
	session.UserID = turn.UserID
	session.Descriptions++
	session.UpdatedAt = s.now().UTC()
	s.sessions[turn.UserID] = session
	return nil
}
