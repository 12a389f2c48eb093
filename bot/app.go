// Package bot wires the image-to-PDF conversion flow on top of the
// shared Telegram chassis.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/pdfgram/pdfgram/bot/assemble"
	"github.com/pdfgram/pdfgram/bot/intake"
	"github.com/pdfgram/pdfgram/bot/session"
	coreconfig "github.com/pdfgram/pdfgram/core/config"
	"github.com/pdfgram/pdfgram/core/health"
	"github.com/pdfgram/pdfgram/core/media"
	"github.com/pdfgram/pdfgram/core/pdf"
	coretelegram "github.com/pdfgram/pdfgram/core/telegram"
	"github.com/pdfgram/pdfgram/core/telegram/commands"
	"github.com/pdfgram/pdfgram/core/telegram/router"
)

// App owns the bot's long-lived components and exposes the run options
// consumed by the core runner.
type App struct {
	cfg      *coreconfig.Config
	store    *session.Store
	fetcher  *telegramFetcher
	handlers *Handlers
	health   *health.Server
	sweeper  *session.Sweeper
}

// NewApp builds the application from normalized configuration.
func NewApp(cfg *coreconfig.Config) (*App, error) {
	store := session.NewStore(
		time.Duration(cfg.Bot.SessionTTLHours)*time.Hour,
		cfg.Bot.MaxImages,
	)

	fetcher := &telegramFetcher{}
	codec := media.NewCodec(cfg.Bot.ImageBoundPx, cfg.Bot.JPEGQuality)
	pipeline := intake.New(store, fetcher, codec)

	factory := func() assemble.DocumentWriter {
		return pdf.NewWriter(cfg.Bot.PageDPI)
	}
	assembler := assemble.New(store, factory, int64(cfg.Bot.MaxDocumentMB)<<20)

	app := &App{
		cfg:      cfg,
		store:    store,
		fetcher:  fetcher,
		handlers: newHandlers(cfg, store, pipeline, assembler),
		health:   health.NewServer(cfg.Bot.HealthListen, store.Active),
	}

	if schedule := strings.TrimSpace(cfg.Bot.SweepSchedule); schedule != "" {
		sweeper, err := session.NewSweeper(store, schedule)
		if err != nil {
			return nil, err
		}
		app.sweeper = sweeper
	}

	return app, nil
}

// CoreConfig exposes the embedded core configuration to the runner.
func (a *App) CoreConfig() *coreconfig.Config { return a.cfg }

// TelegramRunOptions assembles the registry, routes, and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handlers.Start,
		Description: "Start and show usage",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handlers.Help,
		Description: "How to use the bot",
	})
	reg.RegisterCommand("/convert", commands.Command{
		Handler:     a.handlers.Convert,
		Description: "Merge buffered images into one PDF",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handlers.Cancel,
		Description: "Drop buffered images",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handlers.Stats,
		Description: "Service counters",
		AdminOnly:   true,
		Hidden:      true,
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.ContentRoutes(reg, router.ContentOptions{
		Photo:       a.handlers.Photo,
		Document:    a.handlers.Document,
		UnknownText: a.handlers.Unknown,
	})...)

	opts := coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.fetcher.bind(rt.Bot)
			a.health.Start()
			if a.sweeper != nil {
				a.sweeper.Start()
			}
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			if a.sweeper != nil {
				a.sweeper.Stop()
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.health.Shutdown(shutdownCtx)
		},
	}
	return opts, nil
}
