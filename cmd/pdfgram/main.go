package main

import (
	"log"

	"github.com/pdfgram/pdfgram/bot"
	corecmd "github.com/pdfgram/pdfgram/core/cmd"
	coreconfig "github.com/pdfgram/pdfgram/core/config"
	"github.com/pdfgram/pdfgram/core/logger"
)

type configCarrier struct {
	cfg *coreconfig.Config
}

func (c *configCarrier) CoreConfig() *coreconfig.Config { return c.cfg }

func main() {
	err := corecmd.Run(corecmd.Options{
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return &configCarrier{cfg: cfg}, nil
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := carrier.CoreConfig()
			if err := logger.InitLogger(cfg); err != nil {
				return nil, err
			}
			return bot.NewApp(cfg)
		},
	})
	if err != nil {
		log.Fatalf("pdfgram: %v", err)
	}
}
