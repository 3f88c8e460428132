package middleware

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const requestIDKey = "request_id"

// Logger tags every update with a request id and logs how it was handled
func Logger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			requestID := uuid.NewString()
			c.Set(requestIDKey, requestID)

			start := time.Now()
			err := next(c)

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.Int64("chat_id", chatID(c)),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Error("Failed to handle update", append(fields, zap.Error(err))...)
				return err
			}

			logger.Debug("Update handled", fields...)
			return nil
		}
	}
}

// RequestID returns the id Logger assigned to the update, or ""
func RequestID(c tele.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}
