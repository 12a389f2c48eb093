package session

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/pdfgram/pdfgram/core/logger"
)

// Sweeper periodically evicts expired sessions on a cron schedule.
// It is optional; the store expires sessions lazily either way.
type Sweeper struct {
	c *cron.Cron
}

// NewSweeper schedules Store.Sweep on the given standard cron expression
// (five fields). The sweeper is not started yet.
func NewSweeper(store *Store, schedule string) (*Sweeper, error) {
	if store == nil {
		return nil, fmt.Errorf("session: nil store")
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if evicted := store.Sweep(); evicted > 0 {
			logger.Sess.Info("expired sessions evicted",
				slog.String("event", "session.sweep"),
				slog.Int("evicted", evicted),
			)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("session: invalid sweep schedule %q: %w", schedule, err)
	}

	return &Sweeper{c: c}, nil
}

// Start begins running the schedule in its own goroutine.
func (s *Sweeper) Start() {
	s.c.Start()
}

// Stop halts the schedule; a sweep already running is left to finish.
func (s *Sweeper) Stop() {
	s.c.Stop()
}
