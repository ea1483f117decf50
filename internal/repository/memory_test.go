package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"seo-assistant/internal/domain"
)

func TestMemoryStore_UnknownUserIsIdle(t *testing.T) {
	s := NewMemoryStore()
	got, err := s.Get(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, domain.Session{UserID: 42}, got)
	require.False(t, got.Awaiting())
}

func TestMemoryStore_SetStateThenGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetState(ctx, 7, domain.StateAwaitingDescription))
	got, err := s.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, got.Awaiting())
	require.False(t, got.UpdatedAt.IsZero())

	other, err := s.Get(ctx, 8)
	require.NoError(t, err)
	require.False(t, other.Awaiting())
}

func TestMemoryStore_SaveTurnIncrementsCounter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetState(ctx, 7, domain.StateAwaitingDescription))
	require.NoError(t, s.SaveTurn(ctx, domain.DescriptionTurn{UserID: 7, Input: "x"}))
	require.NoError(t, s.SaveTurn(ctx, domain.DescriptionTurn{UserID: 7, Input: "y"}))

	got, err := s.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 2, got.Descriptions)
	require.True(t, got.Awaiting())

	require.NoError(t, s.SetState(ctx, 7, domain.StateIdle))
	got, err = s.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 2, got.Descriptions)
}

func TestMemoryStore_InvalidUserID(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidUserID)
	require.ErrorIs(t, s.SetState(context.Background(), -1, domain.StateIdle), ErrInvalidUserID)
	require.ErrorIs(t, s.SaveTurn(context.Background(), domain.DescriptionTurn{}), ErrInvalidUserID)
}

func TestMemoryStore_ConcurrentUsers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = s.SetState(ctx, id, domain.StateAwaitingDescription)
			_, _ = s.Get(ctx, id)
		}(i)
	}
	wg.Wait()

	for i := int64(1); i <= 50; i++ {
		got, err := s.Get(ctx, i)
		require.NoError(t, err)
		require.True(t, got.Awaiting())
	}
}

func TestMemoryStore_ConcurrentSaveTurnSameUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SaveTurn(ctx, domain.DescriptionTurn{UserID: 3})
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 20, got.Descriptions)
}
