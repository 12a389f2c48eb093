package bot

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pdfgram/pdfgram/bot/assemble"
	"github.com/pdfgram/pdfgram/bot/intake"
	"github.com/pdfgram/pdfgram/bot/session"
	"github.com/pdfgram/pdfgram/core/buildinfo"
	coreconfig "github.com/pdfgram/pdfgram/core/config"
	tghelpers "github.com/pdfgram/pdfgram/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Handlers implement the bot's user-facing commands and upload intake.
type Handlers struct {
	cfg       *coreconfig.Config
	store     *session.Store
	pipeline  *intake.Pipeline
	assembler *assemble.Assembler

	startedAt   time.Time
	conversions atomic.Uint64
}

func newHandlers(cfg *coreconfig.Config, store *session.Store, pipeline *intake.Pipeline, assembler *assemble.Assembler) *Handlers {
	return &Handlers{
		cfg:       cfg,
		store:     store,
		pipeline:  pipeline,
		assembler: assembler,
		startedAt: time.Now(),
	}
}

// touch refreshes the sender's session and reports whether a stale
// buffer was just dropped.
func (h *Handlers) touch(c tele.Context) bool {
	return h.store.Acquire(c.Sender().ID)
}

// Start greets the user. Any stale buffer is dropped silently since the
// user is starting over anyway.
func (h *Handlers) Start(c tele.Context) error {
	h.touch(c)
	return tghelpers.SendText(c, replyWelcome)
}

// Help explains the workflow and the limits in effect.
func (h *Handlers) Help(c tele.Context) error {
	h.touch(c)
	return tghelpers.SendText(c, fmt.Sprintf(replyHelp, h.cfg.Bot.MaxImages, h.cfg.Bot.SessionTTLHours))
}

// Cancel drops the sender's buffered images.
func (h *Handlers) Cancel(c tele.Context) error {
	if h.touch(c) {
		return tghelpers.SendText(c, replyExpired)
	}
	if h.store.Len(c.Sender().ID) == 0 {
		return tghelpers.SendText(c, replyNothingCancel)
	}
	h.store.Clear(c.Sender().ID)
	return tghelpers.SendText(c, replyCancelled)
}

// Photo ingests a compressed photo upload. Telegram hands over only the
// largest size variant.
func (h *Handlers) Photo(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return nil
	}
	if h.touch(c) {
		// Expiry notice replaces processing for this turn; the user resends.
		return tghelpers.SendText(c, replyExpired)
	}

	ctx := tghelpers.WithHandler(c, "photo")
	count, err := h.pipeline.AcceptPhoto(ctx, c.Sender().ID, msg.Photo.FileID)
	if err != nil {
		if sendErr := tghelpers.SendText(c, h.replyForError(err)); sendErr != nil {
			return sendErr
		}
		return err
	}
	return tghelpers.SendText(c, replyReceived(count, h.cfg.Bot.MaxImages))
}

// Document ingests an image sent as an uncompressed file.
func (h *Handlers) Document(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Document == nil {
		return nil
	}
	if h.touch(c) {
		return tghelpers.SendText(c, replyExpired)
	}

	doc := msg.Document
	ctx := tghelpers.WithHandler(c, "document")
	count, err := h.pipeline.AcceptDocument(ctx, c.Sender().ID, doc.FileID, doc.MIME, doc.FileName)
	if err != nil {
		if sendErr := tghelpers.SendText(c, h.replyForError(err)); sendErr != nil {
			return sendErr
		}
		return err
	}
	return tghelpers.SendText(c, replyReceived(count, h.cfg.Bot.MaxImages))
}

// Convert assembles the buffered images into a single PDF and sends it.
func (h *Handlers) Convert(c tele.Context) error {
	if h.touch(c) {
		return tghelpers.SendText(c, replyExpired)
	}

	tghelpers.NotifyTyping(c)

	ctx := tghelpers.WithHandler(c, "convert")
	res, err := h.assembler.Convert(ctx, c.Sender().ID)
	if err != nil {
		if sendErr := tghelpers.SendText(c, h.replyForError(err)); sendErr != nil {
			return sendErr
		}
		return err
	}
	h.conversions.Add(1)

	return tghelpers.SendDocument(c, &tele.Document{
		File:     tele.FromReader(bytes.NewReader(res.Data)),
		FileName: res.FileName,
		MIME:     "application/pdf",
	})
}

// Stats reports service counters. Wired admin-only.
func (h *Handlers) Stats(c tele.Context) error {
	sessions, images := h.store.Counts()
	text := fmt.Sprintf(
		"version: %s\nuptime: %s\nactive sessions: %d\nbuffered images: %d\nconversions: %d",
		buildinfo.Version,
		time.Since(h.startedAt).Round(time.Second),
		sessions,
		images,
		h.conversions.Load(),
	)
	return tghelpers.SendText(c, text)
}

// Unknown handles text that matches no command.
func (h *Handlers) Unknown(c tele.Context) error {
	h.touch(c)
	return tghelpers.SendText(c, replyUnknownText)
}
