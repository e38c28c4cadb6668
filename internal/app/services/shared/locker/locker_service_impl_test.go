package locker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRedisRepository struct {
	mock.Mock
}

func (m *MockRedisRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	args := m.Called(ctx, key, value, exp)
	return args.Error(0)
}

func (m *MockRedisRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRedisRepository) Increment(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRedisRepository) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRedisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, exp)
	return args.Bool(0), args.Error(1)
}

func TestLockService_TryLock(t *testing.T) {
	ctx := context.Background()

	t.Run("acquired", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("TrySetNX", ctx, "locks:a", mock.AnythingOfType("string"), time.Second).Return(true, nil)

		acquired, value, err := newLockService(repo, zap.NewNop()).TryLock(ctx, "locks:a", time.Second)
		require.NoError(t, err)
		assert.True(t, acquired)
		assert.NotEmpty(t, value, "holder token should be returned")
		repo.AssertExpectations(t)
	})

	t.Run("held elsewhere", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("TrySetNX", ctx, "locks:a", mock.Anything, time.Second).Return(false, nil)

		acquired, value, err := newLockService(repo, zap.NewNop()).TryLock(ctx, "locks:a", time.Second)
		require.NoError(t, err)
		assert.False(t, acquired)
		assert.Empty(t, value)
	})
}

func TestLockService_Unlock(t *testing.T) {
	ctx := context.Background()

	t.Run("owner releases", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("Get", ctx, "locks:a").Return(`"token"`, nil)
		repo.On("Delete", ctx, "locks:a").Return(nil)

		err := newLockService(repo, zap.NewNop()).Unlock(ctx, "locks:a", "token")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("other holder is left alone", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("Get", ctx, "locks:a").Return(`"someone-else"`, nil)

		err := newLockService(repo, zap.NewNop()).Unlock(ctx, "locks:a", "token")
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Delete", ctx, "locks:a")
	})

	t.Run("expired lock is a no-op", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("Get", ctx, "locks:a").Return("", nil)

		err := newLockService(repo, zap.NewNop()).Unlock(ctx, "locks:a", "token")
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "Delete", ctx, "locks:a")
	})
}
