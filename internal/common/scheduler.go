package common

import (
	"context"
	"time"

	"github.com/mosaicfin/reconpilot/internal/service"
)

// timerScheduler is the default Scheduler backed by real timers.
type timerScheduler struct{}

// NewScheduler returns a Scheduler backed by real timers. Tests supply
// their own zero-delay implementation instead.
func NewScheduler() service.Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
