package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"melodybot/internal/domain"
	"melodybot/internal/repository"

	"go.uber.org/zap"
)

// QuizService runs the per-chat game state machine:
// no game -> StartGame -> awaiting answer -> JudgeAnswer/CancelGame -> no game.
type QuizService struct {
	catalog  repository.CatalogRepository
	sessions repository.SessionRepository
	timeout  time.Duration
	logger   *zap.Logger
}

// NewQuizService creates a new quiz service. Every storage call is bounded
// by timeout.
func NewQuizService(
	catalog repository.CatalogRepository,
	sessions repository.SessionRepository,
	timeout time.Duration,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		catalog:  catalog,
		sessions: sessions,
		timeout:  timeout,
		logger:   logger,
	}
}

// StartGame picks a random item and opens a session for chatID expecting
// its right answer. A game already in progress is replaced.
func (s *QuizService) StartGame(ctx context.Context, chatID int64) (*domain.QuizItem, error) {
	item, err := s.pickItem(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNoItemsAvailable
	}

	if err := s.createSession(ctx, chatID, item.RightAnswer); err != nil {
		return nil, err
	}

	s.logger.Info("Game started",
		zap.Int64("chat_id", chatID),
		zap.Uint64("item_id", item.ID),
	)
	return item, nil
}

// JudgeAnswer ends the game of chatID and compares submitted with the
// expected answer, exactly and case-sensitively. A chat without a game
// gets OutcomeNoActiveGame.
func (s *QuizService) JudgeAnswer(ctx context.Context, chatID int64, submitted string) (domain.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	expected, ok, err := s.sessions.TakeAnswer(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrInvariantViolation) {
			s.logger.Error("Session invariant violated",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
		return domain.OutcomeNoActiveGame, s.translate(err)
	}
	if !ok {
		return domain.OutcomeNoActiveGame, nil
	}

	outcome := domain.OutcomeIncorrect
	if submitted == expected {
		outcome = domain.OutcomeCorrect
	}

	s.logger.Info("Answer judged",
		zap.Int64("chat_id", chatID),
		zap.Stringer("outcome", outcome),
	)
	return outcome, nil
}

// CancelGame ends the game of chatID if there is one
func (s *QuizService) CancelGame(ctx context.Context, chatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sessions.CancelSession(ctx, chatID); err != nil {
		return s.translate(err)
	}

	s.logger.Info("Game cancelled", zap.Int64("chat_id", chatID))
	return nil
}

func (s *QuizService) pickItem(ctx context.Context) (*domain.QuizItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	item, err := s.catalog.PickRandomItem(ctx)
	if err != nil {
		return nil, s.translate(err)
	}
	return item, nil
}

func (s *QuizService) createSession(ctx context.Context, chatID int64, rightAnswer string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sessions.CreateSession(ctx, chatID, rightAnswer); err != nil {
		return s.translate(err)
	}
	return nil
}

// translate maps repository failures onto the domain error taxonomy.
// Decode and invariant errors keep their identity; anything else,
// timeouts included, is a storage failure.
func (s *QuizService) translate(err error) error {
	if errors.Is(err, domain.ErrDecode) || errors.Is(err, domain.ErrInvariantViolation) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
}
