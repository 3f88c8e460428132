package testutil

import (
	"context"
	"time"

	"melodybot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockCatalogRepository is a mock for CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetItem(ctx context.Context, id uint64) (*domain.QuizItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizItem), args.Error(1)
}

func (m *MockCatalogRepository) PutItem(ctx context.Context, item *domain.QuizItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCatalogRepository) DeleteItem(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogRepository) PickRandomItem(ctx context.Context) (*domain.QuizItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizItem), args.Error(1)
}

func (m *MockCatalogRepository) ListIDs(ctx context.Context) ([]uint64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

// MockSessionRepository is a mock for SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) CreateSession(ctx context.Context, chatID int64, rightAnswer string) error {
	args := m.Called(ctx, chatID, rightAnswer)
	return args.Error(0)
}

func (m *MockSessionRepository) TakeAnswer(ctx context.Context, chatID int64) (string, bool, error) {
	args := m.Called(ctx, chatID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSessionRepository) CancelSession(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

// MockStore is a mock for storage.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Put(ctx context.Context, key, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, key []byte) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStore) Take(ctx context.Context, key []byte) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSweeperStore is a MockStore that also implements storage.Sweeper
// and storage.Pinger
type MockSweeperStore struct {
	MockStore
}

func (m *MockSweeperStore) Sweep(ctx context.Context, prefix []byte, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, prefix, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSweeperStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockQuizEngine is a mock for the handler's QuizEngine
type MockQuizEngine struct {
	mock.Mock
}

func (m *MockQuizEngine) StartGame(ctx context.Context, chatID int64) (*domain.QuizItem, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizItem), args.Error(1)
}

func (m *MockQuizEngine) JudgeAnswer(ctx context.Context, chatID int64, submitted string) (domain.Outcome, error) {
	args := m.Called(ctx, chatID, submitted)
	return args.Get(0).(domain.Outcome), args.Error(1)
}

func (m *MockQuizEngine) CancelGame(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}
