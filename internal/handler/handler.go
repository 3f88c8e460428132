package handler

import (
	"context"
	"math/rand"
	"sync"

	"melodybot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// QuizEngine is the game logic the handler drives
type QuizEngine interface {
	StartGame(ctx context.Context, chatID int64) (*domain.QuizItem, error)
	JudgeAnswer(ctx context.Context, chatID int64, submitted string) (domain.Outcome, error)
	CancelGame(ctx context.Context, chatID int64) error
}

// Handler manages all bot interactions
type Handler struct {
	bot    *tele.Bot
	quiz   QuizEngine
	logger *zap.Logger

	// shuffle orders the answer keyboard
	shuffle func(answers []string)

	// Per-chat locks so updates of one chat are answered in order
	chatLocks map[int64]*chatLock
	chatMux   sync.Mutex
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, quiz QuizEngine, logger *zap.Logger) *Handler {
	return &Handler{
		bot:    bot,
		quiz:   quiz,
		logger: logger,
		shuffle: func(answers []string) {
			rand.Shuffle(len(answers), func(i, j int) {
				answers[i], answers[j] = answers[j], answers[i]
			})
		},
		chatLocks: make(map[int64]*chatLock),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle(CommandStart, h.handleMessage)
	h.bot.Handle(CommandGame, h.handleMessage)
	h.bot.Handle(CommandCancel, h.handleMessage)

	// Answers and unknown commands
	h.bot.Handle(tele.OnText, h.handleMessage)
}

// lockChat blocks until the caller owns chatID and returns the release
// function. Entries are dropped once nobody holds or waits for them.
func (h *Handler) lockChat(chatID int64) func() {
	h.chatMux.Lock()
	lock, exists := h.chatLocks[chatID]
	if !exists {
		lock = &chatLock{}
		h.chatLocks[chatID] = lock
	}
	lock.refs++
	h.chatMux.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		h.chatMux.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(h.chatLocks, chatID)
		}
		h.chatMux.Unlock()
	}
}

// lockedChats reports how many chats currently have a lock entry
func (h *Handler) lockedChats() int {
	h.chatMux.Lock()
	defer h.chatMux.Unlock()
	return len(h.chatLocks)
}
