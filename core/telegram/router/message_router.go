package router

import (
	"time"

	tg "github.com/pdfgram/pdfgram/core/telegram"
	"github.com/pdfgram/pdfgram/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// ContentOptions wires handlers for photo and document uploads plus
// fallbacks for unroutable updates.
type ContentOptions struct {
	Photo       tele.HandlerFunc
	Document    tele.HandlerFunc
	UnknownText tele.HandlerFunc
}

// ContentRoutes builds handlers for text, photo, and document routing.
// Text is matched against the command registry first; photos and documents
// go straight to their intake handlers.
func ContentRoutes(reg *tg.Registry, opts ContentOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	photoHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.Photo == nil {
			logHandlerSummary(c, "photo", start, "skip", nil)
			return nil
		}
		return handleWithSummary(c, "photo", start, "", func() error {
			return opts.Photo(c)
		})
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.Document == nil {
			logHandlerSummary(c, "document", start, "skip", nil)
			return nil
		}
		return handleWithSummary(c, "document", start, "", func() error {
			return opts.Document(c)
		})
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(textHandler)),
		},
		{
			Endpoint: tele.OnPhoto,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(photoHandler)),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(docHandler)),
		},
	}
}
