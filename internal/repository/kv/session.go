package kv

import (
	"context"
	"errors"
	"fmt"

	"melodybot/internal/codec"
	"melodybot/internal/domain"
	"melodybot/internal/storage"
)

// SessionRepo implements repository.SessionRepository
type SessionRepo struct {
	store storage.Store
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(store storage.Store) *SessionRepo {
	return &SessionRepo{store: store}
}

// CreateSession starts a session for chatID, replacing any existing one
func (r *SessionRepo) CreateSession(ctx context.Context, chatID int64, rightAnswer string) error {
	data, err := codec.Marshal(&domain.Session{ChatID: chatID, RightAnswer: rightAnswer})
	if err != nil {
		return fmt.Errorf("encode session %d: %w", chatID, err)
	}
	if err := r.store.Put(ctx, sessionKey(chatID), data); err != nil {
		return fmt.Errorf("put session %d: %w", chatID, err)
	}
	return nil
}

// TakeAnswer removes the session of chatID and returns its right answer.
// Concurrent callers for the same chat see ok == true at most once.
func (r *SessionRepo) TakeAnswer(ctx context.Context, chatID int64) (string, bool, error) {
	key := sessionKey(chatID)
	data, err := r.store.Take(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("take session %d: %w", chatID, err)
	}

	var session domain.Session
	if err := codec.Unmarshal(data, &session); err != nil {
		return "", false, &domain.DecodeError{Key: string(key), Err: err}
	}
	if session.ChatID != chatID {
		return "", false, fmt.Errorf("%w: session under %s belongs to chat %d",
			domain.ErrInvariantViolation, key, session.ChatID)
	}

	return session.RightAnswer, true, nil
}

// CancelSession removes the session of chatID if there is one
func (r *SessionRepo) CancelSession(ctx context.Context, chatID int64) error {
	if err := r.store.Delete(ctx, sessionKey(chatID)); err != nil {
		return fmt.Errorf("delete session %d: %w", chatID, err)
	}
	return nil
}
