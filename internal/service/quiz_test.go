package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"melodybot/internal/domain"
	"melodybot/internal/repository/kv"
	"melodybot/internal/storage/memory"
	"melodybot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTimeout = time.Second

func newMockedQuizService() (*QuizService, *testutil.MockCatalogRepository, *testutil.MockSessionRepository) {
	catalog := new(testutil.MockCatalogRepository)
	sessions := new(testutil.MockSessionRepository)
	service := NewQuizService(catalog, sessions, testTimeout, testutil.NewTestLogger())
	return service, catalog, sessions
}

func newMemoryQuizService(t *testing.T, items ...*domain.QuizItem) *QuizService {
	t.Helper()

	store := memory.NewStore()
	catalog := kv.NewCatalogRepo(store, 1)
	for _, item := range items {
		require.NoError(t, catalog.PutItem(context.Background(), item))
	}
	return NewQuizService(catalog, kv.NewSessionRepo(store), testTimeout, testutil.NewTestLogger())
}

func TestQuizService_StartGame(t *testing.T) {
	item := testutil.NewTestItem(1, "Bohemian Rhapsody")

	tests := []struct {
		name        string
		pickItem    *domain.QuizItem
		pickErr     error
		createErr   error
		expectedErr error
	}{
		{
			name:     "game started",
			pickItem: item,
		},
		{
			name:        "empty catalog",
			expectedErr: domain.ErrNoItemsAvailable,
		},
		{
			name:        "catalog unavailable",
			pickErr:     fmt.Errorf("get catalog index: connection refused"),
			expectedErr: domain.ErrStorageFailure,
		},
		{
			name:        "corrupt item",
			pickErr:     &domain.DecodeError{Key: "item:1", Err: errors.New("unexpected EOF")},
			expectedErr: domain.ErrDecode,
		},
		{
			name:        "session write fails",
			pickItem:    item,
			createErr:   fmt.Errorf("put session 100: disk full"),
			expectedErr: domain.ErrStorageFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, catalog, sessions := newMockedQuizService()

			catalog.On("PickRandomItem", mock.Anything).Return(tt.pickItem, tt.pickErr)
			if tt.pickItem != nil {
				sessions.On("CreateSession", mock.Anything, int64(100), tt.pickItem.RightAnswer).Return(tt.createErr)
			}

			got, err := service.StartGame(context.Background(), 100)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.pickItem, got)
			}

			catalog.AssertExpectations(t)
			sessions.AssertExpectations(t)
		})
	}
}

func TestQuizService_StartGameEmptyCatalogCreatesNoSession(t *testing.T) {
	service, catalog, sessions := newMockedQuizService()
	catalog.On("PickRandomItem", mock.Anything).Return(nil, nil)

	_, err := service.StartGame(context.Background(), 100)

	assert.ErrorIs(t, err, domain.ErrNoItemsAvailable)
	sessions.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuizService_JudgeAnswer(t *testing.T) {
	tests := []struct {
		name            string
		submitted       string
		expected        string
		hasSession      bool
		takeErr         error
		expectedOutcome domain.Outcome
		expectedErr     error
	}{
		{
			name:            "correct answer",
			submitted:       "Bohemian Rhapsody",
			expected:        "Bohemian Rhapsody",
			hasSession:      true,
			expectedOutcome: domain.OutcomeCorrect,
		},
		{
			name:            "incorrect answer",
			submitted:       "Hotel California",
			expected:        "Bohemian Rhapsody",
			hasSession:      true,
			expectedOutcome: domain.OutcomeIncorrect,
		},
		{
			name:            "comparison is case sensitive",
			submitted:       "bohemian rhapsody",
			expected:        "Bohemian Rhapsody",
			hasSession:      true,
			expectedOutcome: domain.OutcomeIncorrect,
		},
		{
			name:            "comparison does not trim",
			submitted:       "Bohemian Rhapsody ",
			expected:        "Bohemian Rhapsody",
			hasSession:      true,
			expectedOutcome: domain.OutcomeIncorrect,
		},
		{
			name:            "no active game",
			submitted:       "Anything",
			expectedOutcome: domain.OutcomeNoActiveGame,
		},
		{
			name:            "storage failure",
			submitted:       "Anything",
			takeErr:         errors.New("i/o timeout"),
			expectedOutcome: domain.OutcomeNoActiveGame,
			expectedErr:     domain.ErrStorageFailure,
		},
		{
			name:            "corrupt session",
			submitted:       "Anything",
			takeErr:         &domain.DecodeError{Key: "session:100", Err: errors.New("bad")},
			expectedOutcome: domain.OutcomeNoActiveGame,
			expectedErr:     domain.ErrDecode,
		},
		{
			name:            "misplaced session",
			submitted:       "Anything",
			takeErr:         fmt.Errorf("%w: session under session:100 belongs to chat 7", domain.ErrInvariantViolation),
			expectedOutcome: domain.OutcomeNoActiveGame,
			expectedErr:     domain.ErrInvariantViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, sessions := newMockedQuizService()
			sessions.On("TakeAnswer", mock.Anything, int64(100)).Return(tt.expected, tt.hasSession, tt.takeErr)

			outcome, err := service.JudgeAnswer(context.Background(), 100, tt.submitted)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedOutcome, outcome)

			sessions.AssertExpectations(t)
		})
	}
}

func TestQuizService_CancelGame(t *testing.T) {
	tests := []struct {
		name        string
		mockError   error
		expectedErr error
	}{
		{
			name: "cancelled",
		},
		{
			name:        "storage failure",
			mockError:   errors.New("connection reset"),
			expectedErr: domain.ErrStorageFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, sessions := newMockedQuizService()
			sessions.On("CancelSession", mock.Anything, int64(100)).Return(tt.mockError)

			err := service.CancelGame(context.Background(), 100)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			sessions.AssertExpectations(t)
		})
	}
}

func TestQuizService_StorageCallsAreBounded(t *testing.T) {
	service, _, sessions := newMockedQuizService()
	sessions.On("CancelSession", mock.Anything, int64(100)).Return(nil).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(testTimeout), deadline, testTimeout)
	})

	require.NoError(t, service.CancelGame(context.Background(), 100))
}

func TestQuizService_TimeoutIsStorageFailure(t *testing.T) {
	service, _, sessions := newMockedQuizService()
	sessions.On("TakeAnswer", mock.Anything, int64(100)).Return("", false, context.DeadlineExceeded)

	_, err := service.JudgeAnswer(context.Background(), 100, "X")

	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// The scenarios below run against the real repositories over an in-memory store.

func TestQuizService_ScenarioCorrectAnswer(t *testing.T) {
	ctx := context.Background()
	service := newMemoryQuizService(t, testutil.NewTestItem(1, "Bohemian Rhapsody"))

	item, err := service.StartGame(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "Bohemian Rhapsody", item.RightAnswer)

	outcome, err := service.JudgeAnswer(ctx, 100, "Bohemian Rhapsody")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCorrect, outcome)

	outcome, err = service.JudgeAnswer(ctx, 100, "Bohemian Rhapsody")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoActiveGame, outcome)
}

func TestQuizService_ScenarioWrongAnswerEndsGame(t *testing.T) {
	ctx := context.Background()
	service := newMemoryQuizService(t, testutil.NewTestItem(1, "Bohemian Rhapsody"))

	_, err := service.StartGame(ctx, 100)
	require.NoError(t, err)

	outcome, err := service.JudgeAnswer(ctx, 100, "Hotel California")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIncorrect, outcome)

	outcome, err = service.JudgeAnswer(ctx, 100, "Bohemian Rhapsody")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoActiveGame, outcome)
}

func TestQuizService_ScenarioEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	service := newMemoryQuizService(t)

	_, err := service.StartGame(ctx, 100)
	assert.ErrorIs(t, err, domain.ErrNoItemsAvailable)

	outcome, err := service.JudgeAnswer(ctx, 100, "Anything")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoActiveGame, outcome)
}

func TestQuizService_ScenarioCancel(t *testing.T) {
	ctx := context.Background()
	service := newMemoryQuizService(t, testutil.NewTestItem(1, "Bohemian Rhapsody"))

	_, err := service.StartGame(ctx, 100)
	require.NoError(t, err)

	require.NoError(t, service.CancelGame(ctx, 100))
	require.NoError(t, service.CancelGame(ctx, 100))

	outcome, err := service.JudgeAnswer(ctx, 100, "Bohemian Rhapsody")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoActiveGame, outcome)
}

func TestQuizService_RestartOverwrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sessions := kv.NewSessionRepo(store)
	catalog := new(testutil.MockCatalogRepository)
	catalog.On("PickRandomItem", mock.Anything).Return(testutil.NewTestItem(1, "X"), nil).Once()
	catalog.On("PickRandomItem", mock.Anything).Return(testutil.NewTestItem(2, "Y"), nil).Once()
	service := NewQuizService(catalog, sessions, testTimeout, testutil.NewTestLogger())

	_, err := service.StartGame(ctx, 100)
	require.NoError(t, err)
	_, err = service.StartGame(ctx, 100)
	require.NoError(t, err)

	outcome, err := service.JudgeAnswer(ctx, 100, "X")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIncorrect, outcome)

	catalog.AssertExpectations(t)
}

func TestQuizService_ConcurrentAnswersJudgedOnce(t *testing.T) {
	ctx := context.Background()
	service := newMemoryQuizService(t, testutil.NewTestItem(1, "X"))

	_, err := service.StartGame(ctx, 100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	outcomes := make(chan domain.Outcome, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			submitted := "X"
			if i%2 == 1 {
				submitted = "not X"
			}
			outcome, err := service.JudgeAnswer(ctx, 100, submitted)
			assert.NoError(t, err)
			outcomes <- outcome
		}(i)
	}
	wg.Wait()
	close(outcomes)

	judged := 0
	for outcome := range outcomes {
		if outcome != domain.OutcomeNoActiveGame {
			judged++
		}
	}
	assert.Equal(t, 1, judged)
}

func TestQuizService_ChatsAreIsolated(t *testing.T) {
	ctx := context.Background()
	service := newMemoryQuizService(t, testutil.NewTestItem(1, "X"))

	_, err := service.StartGame(ctx, 100)
	require.NoError(t, err)
	_, err = service.StartGame(ctx, 200)
	require.NoError(t, err)

	require.NoError(t, service.CancelGame(ctx, 100))

	outcome, err := service.JudgeAnswer(ctx, 200, "X")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCorrect, outcome)
}
