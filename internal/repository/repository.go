package repository

import (
	"context"

	"melodybot/internal/domain"
)

// CatalogRepository defines quiz item operations
type CatalogRepository interface {
	GetItem(ctx context.Context, id uint64) (*domain.QuizItem, error)
	PutItem(ctx context.Context, item *domain.QuizItem) error
	DeleteItem(ctx context.Context, id uint64) error
	PickRandomItem(ctx context.Context) (*domain.QuizItem, error)
	ListIDs(ctx context.Context) ([]uint64, error)
}

// SessionRepository defines per-chat game session operations
type SessionRepository interface {
	CreateSession(ctx context.Context, chatID int64, rightAnswer string) error
	// TakeAnswer atomically reads and clears the session of chatID.
	// ok is false when the chat has no active game.
	TakeAnswer(ctx context.Context, chatID int64) (answer string, ok bool, err error)
	CancelSession(ctx context.Context, chatID int64) error
}
