package middleware

import (
	"runtime/debug"

	"github.com/pdfgram/pdfgram/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing.
// The user receives a generic failure notice instead of silence.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
				_ = c.Send("Something went wrong. Please try again.")
			}
		}()
		return next(c)
	}
}
