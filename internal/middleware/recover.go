package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// MsgTryAgain is the reply for failures the user can retry
const MsgTryAgain = "Something went wrong, please try again."

// Recover turns a panic in a handler into a logged error and a generic
// reply, so one chat's failure never takes the bot down
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Recovered from panic in handler",
						zap.Any("panic", r),
						zap.Int64("chat_id", chatID(c)),
						zap.String("request_id", RequestID(c)),
						zap.Stack("stack"),
					)
					err = c.Send(MsgTryAgain)
				}
			}()

			return next(c)
		}
	}
}
