package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/pdfgram/pdfgram/core/logger"
	"github.com/pdfgram/pdfgram/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendDocument sends a document attachment to the current recipient.
// The document payload must be reusable; the closure may run after the
// handler has returned.
func SendDocument(c tele.Context, doc *tele.Document) error {
	return sendAsync(c, "send.document", "sendDocument", func() error {
		return c.Send(doc)
	})
}

// NotifyTyping reports a chat action so long conversions feel responsive.
func NotifyTyping(c tele.Context) {
	_ = c.Notify(tele.UploadingDocument)
}
