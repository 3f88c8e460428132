package testutil

import (
	"melodybot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestItem creates a valid quiz item
func NewTestItem(id uint64, rightAnswer string) *domain.QuizItem {
	return &domain.QuizItem{
		ID:           id,
		MediaRef:     "audio-file-id",
		RightAnswer:  rightAnswer,
		WrongAnswers: [domain.WrongAnswersCount]string{"Wrong One", "Wrong Two", "Wrong Three"},
	}
}
