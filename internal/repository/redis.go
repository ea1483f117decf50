package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"seo-assistant/internal/domain"
)

const (
	defaultRedisPrefix = "seo-assistant"

	fieldState        = "state"
	fieldDescriptions = "descriptions"
	fieldUpdatedAt    = "updated_at"
)

// RedisStore keeps each session as a hash under "<prefix>:session:<userID>".
// The description counter is changed with HINCRBY only.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type RedisOption func(*RedisStore)

func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires idle sessions after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("repository: redis client must not be nil")
	}
	s := &RedisStore{
		client: client,
		prefix: defaultRedisPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) key(userID int64) string {
	return s.prefix + ":session:" + userKey(userID)
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (domain.Session, error) {
	if err := validUserID(userID); err != nil {
		return domain.Session{}, err
	}

	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return domain.Session{}, fmt.Errorf("repository: redis get: %w", err)
	}

	session := domain.Session{UserID: userID, State: domain.ConversationState(fields[fieldState])}
	if raw := fields[fieldDescriptions]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Session{}, fmt.Errorf("repository: decode session %q: %w", fieldDescriptions, err)
		}
		session.Descriptions = n
	}
	if raw := fields[fieldUpdatedAt]; raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.Session{}, fmt.Errorf("repository: decode session %q: %w", fieldUpdatedAt, err)
		}
		session.UpdatedAt = ts
	}
	return session, nil
}

func (s *RedisStore) SetState(ctx context.Context, userID int64, state domain.ConversationState) error {
	if err := validUserID(userID); err != nil {
		return err
	}

	key := s.key(userID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldState, string(state), fieldUpdatedAt, s.timestamp())
		s.expire(ctx, pipe, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("repository: redis set state: %w", err)
	}
	return nil
}

// SaveTurn increments the counter. Turns are not kept in Redis.
func (s *RedisStore) SaveTurn(ctx context.Context, turn domain.DescriptionTurn) error {
	if err := validUserID(turn.UserID); err != nil {
		return err
	}

	key := s.key(turn.UserID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldDescriptions, 1)
		pipe.HSet(ctx, key, fieldUpdatedAt, s.timestamp())
		s.expire(ctx, pipe, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("repository: redis save turn: %w", err)
	}
	return nil
}

func (s *RedisStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *RedisStore) expire(ctx context.Context, pipe redis.Pipeliner, key string) {
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}
