package scheduler

import (
	"context"
	"time"

	"interndesk/internal/logging"
)

type Task func(ctx context.Context) error

// Every runs task now and then on each tick until ctx is done.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	log := logging.With("scheduler").With().Str("task", name).Logger()

	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Warn().Err(err).Msg("task failed")
			return
		}
		log.Debug().Dur("took", time.Since(start)).Msg("task done")
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	// run immediately
	go run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
