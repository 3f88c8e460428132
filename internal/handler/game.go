package handler

import (
	"context"
	"errors"

	"melodybot/internal/domain"
	"melodybot/internal/middleware"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Bot commands
const (
	CommandStart  = "/start"
	CommandGame   = "/game"
	CommandCancel = "/cancel"
)

// User-visible replies
const (
	msgWelcome = "Hi! I play a melody and you guess its title.\n\n" +
		"Send /game to get a melody, then pick the answer on the keyboard.\n" +
		"Send /cancel to give up the current game."
	msgGameCaption = "Guess the melody!"
	msgCorrect     = "You win!"
	msgIncorrect   = "Wrong answer, you lose. Send /game to try another melody."
	msgNoGame      = "To start game enter /game command"
	msgNoItems     = "There are no melodies yet, try later."
	msgCancelled   = "Game cancelled. Send /game to start a new one."
)

// handleMessage dispatches every text update of a chat under its lock
func (h *Handler) handleMessage(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	inbound := domain.ClassifyMessage(c.Text())
	if inbound.Kind == domain.InboundUnhandled {
		return nil
	}

	unlock := h.lockChat(chat.ID)
	defer unlock()

	logger := h.logger.With(
		zap.Int64("chat_id", chat.ID),
		zap.String("request_id", middleware.RequestID(c)),
	)

	switch inbound.Kind {
	case domain.InboundCommand:
		switch inbound.Command {
		case CommandStart:
			return h.handleStart(c, logger)
		case CommandGame:
			return h.handleGame(c, chat.ID, logger)
		case CommandCancel:
			return h.handleCancel(c, chat.ID, logger)
		default:
			logger.Debug("Ignoring unknown command", zap.String("command", inbound.Command))
			return nil
		}
	case domain.InboundAnswer:
		return h.handleAnswer(c, chat.ID, inbound.Text, logger)
	}

	return nil
}

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context, logger *zap.Logger) error {
	logger.Info("User started bot", zap.String("username", c.Sender().Username))
	return c.Send(msgWelcome)
}

// handleGame handles /game command: poses a random melody with a shuffled
// one-time answer keyboard
func (h *Handler) handleGame(c tele.Context, chatID int64, logger *zap.Logger) error {
	item, err := h.quiz.StartGame(context.Background(), chatID)
	if errors.Is(err, domain.ErrNoItemsAvailable) {
		return c.Send(msgNoItems)
	}
	if err != nil {
		logger.Error("Failed to start game", zap.Error(err))
		return c.Send(middleware.MsgTryAgain)
	}

	audio := &tele.Audio{
		File:    tele.File{FileID: item.MediaRef},
		Caption: msgGameCaption,
	}
	return c.Send(audio, h.answerMarkup(item))
}

// handleCancel handles /cancel command
func (h *Handler) handleCancel(c tele.Context, chatID int64, logger *zap.Logger) error {
	if err := h.quiz.CancelGame(context.Background(), chatID); err != nil {
		logger.Error("Failed to cancel game", zap.Error(err))
		return c.Send(middleware.MsgTryAgain)
	}
	return c.Send(msgCancelled, removeKeyboard())
}

// handleAnswer judges a submitted answer
func (h *Handler) handleAnswer(c tele.Context, chatID int64, text string, logger *zap.Logger) error {
	outcome, err := h.quiz.JudgeAnswer(context.Background(), chatID, text)
	if err != nil {
		logger.Error("Failed to judge answer", zap.Error(err))
		return c.Send(middleware.MsgTryAgain, removeKeyboard())
	}

	switch outcome {
	case domain.OutcomeCorrect:
		return c.Send(msgCorrect, removeKeyboard())
	case domain.OutcomeIncorrect:
		return c.Send(msgIncorrect, removeKeyboard())
	default:
		return c.Send(msgNoGame)
	}
}

// answerMarkup returns a one-time keyboard with one answer per row
func (h *Handler) answerMarkup(item *domain.QuizItem) *tele.ReplyMarkup {
	answers := item.Answers()
	h.shuffle(answers)

	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	rows := make([]tele.Row, 0, len(answers))
	for _, answer := range answers {
		rows = append(rows, markup.Row(markup.Text(answer)))
	}
	markup.Reply(rows...)
	return markup
}

func removeKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
