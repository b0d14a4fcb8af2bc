package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const DefaultSweepInterval = 5 * time.Minute

type Sweeper interface {
	Sweep(ctx context.Context) int
}

// Janitor periodically drops idle sessions so their datasets are released
// even when no request touches the registry.
type Janitor struct {
	sweeper  Sweeper
	interval time.Duration
	done     chan struct{}
}

func NewJanitor(sweeper Sweeper, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Janitor{
		sweeper:  sweeper,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *Janitor) Done() <-chan struct{} {
	return j.done
}

// Run sweeps until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("component", "session-janitor").Logger()
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("session janitor stopped")
			return
		case <-ticker.C:
			if n := j.sweeper.Sweep(logger.WithContext(ctx)); n > 0 {
				logger.Info().Int("dropped", n).Msg("idle sessions swept")
			}
		}
	}
}
