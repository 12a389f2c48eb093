package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

// maxDownloadBytes mirrors the Telegram bot API file download cap.
const maxDownloadBytes = 20 << 20

// telegramFetcher downloads upload content through the bot API. The bot
// handle is bound at startup because the bot does not exist yet when the
// intake pipeline is wired.
type telegramFetcher struct {
	bot atomic.Pointer[tele.Bot]
}

func (f *telegramFetcher) bind(b *tele.Bot) {
	f.bot.Store(b)
}

func (f *telegramFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	b := f.bot.Load()
	if b == nil {
		return nil, errors.New("bot is not running")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := b.File(&tele.File{FileID: fileID})
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxDownloadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("file exceeds the %d byte download cap", maxDownloadBytes)
	}
	return data, nil
}
