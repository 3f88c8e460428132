package kv

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"melodybot/internal/codec"
	"melodybot/internal/domain"
	"melodybot/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_CreateAndTake(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo(memory.NewStore())

	require.NoError(t, repo.CreateSession(ctx, 100, "Bohemian Rhapsody"))

	answer, ok, err := repo.TakeAnswer(ctx, 100)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bohemian Rhapsody", answer)

	answer, ok, err = repo.TakeAnswer(ctx, 100)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, answer)
}

func TestSessionRepo_CreateOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo(memory.NewStore())

	require.NoError(t, repo.CreateSession(ctx, 100, "X"))
	require.NoError(t, repo.CreateSession(ctx, 100, "Y"))

	answer, ok, err := repo.TakeAnswer(ctx, 100)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Y", answer)
}

func TestSessionRepo_CancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo(memory.NewStore())

	require.NoError(t, repo.CancelSession(ctx, 100))

	require.NoError(t, repo.CreateSession(ctx, 100, "X"))
	require.NoError(t, repo.CancelSession(ctx, 100))
	require.NoError(t, repo.CancelSession(ctx, 100))

	_, ok, err := repo.TakeAnswer(ctx, 100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRepo_ChatsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo(memory.NewStore())

	require.NoError(t, repo.CreateSession(ctx, 100, "A"))
	require.NoError(t, repo.CreateSession(ctx, -200, "B"))

	require.NoError(t, repo.CancelSession(ctx, 100))

	answer, ok, err := repo.TakeAnswer(ctx, -200)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "B", answer)
}

func TestSessionRepo_ConcurrentTakeObservedOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo(memory.NewStore())
	require.NoError(t, repo.CreateSession(ctx, 100, "X"))

	var wg sync.WaitGroup
	var observed int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.TakeAnswer(ctx, 100)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&observed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), observed)
}

func TestSessionRepo_TakeCorrupt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Put(ctx, sessionKey(100), []byte{0x1c}))
	repo := NewSessionRepo(store)

	_, ok, err := repo.TakeAnswer(ctx, 100)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestSessionRepo_TakeMisplacedSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	data, err := codec.Marshal(&domain.Session{ChatID: 7, RightAnswer: "X"})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, sessionKey(100), data))
	repo := NewSessionRepo(store)

	_, ok, err := repo.TakeAnswer(ctx, 100)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestSessionRepo_StoreFailure(t *testing.T) {
	ctx := context.Background()
	backendErr := errors.New("disk full")
	repo := NewSessionRepo(failingStore{err: backendErr})

	assert.ErrorIs(t, repo.CreateSession(ctx, 1, "X"), backendErr)
	assert.ErrorIs(t, repo.CancelSession(ctx, 1), backendErr)

	_, ok, err := repo.TakeAnswer(ctx, 1)
	assert.False(t, ok)
	assert.ErrorIs(t, err, backendErr)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []byte("item:42"), itemKey(42))
	assert.Equal(t, []byte("session:-1001234"), sessionKey(-1001234))
}
