package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/YashMane007/Crypto-track-pappa/internal/event"
)

// Scheduler posts periodic refresh events to the engine inbox as a safety
// net. Aggregate recomputation is already triggered by every mutation and
// rate change; the cron tick only covers observers that attach between
// events. The interval is seconds-level on purpose: anything sub-second is
// wasted work.
type Scheduler struct {
	cron  *cron.Cron
	inbox chan<- event.Event
}

// New creates a scheduler posting to the given inbox.
func New(inbox chan<- event.Event) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		inbox: inbox,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start(intervalSec int) error {
	spec := fmt.Sprintf("@every %ds", intervalSec)
	_, err := s.cron.AddFunc(spec, s.refresh)
	if err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	s.cron.Start()
	slog.Info("Aggregate refresh scheduled", slog.Int("interval_sec", intervalSec))
	return nil
}

func (s *Scheduler) refresh() {
	select {
	case s.inbox <- &event.Refresh{}:
	default:
		// Engine is busy; the next tick will catch up.
	}
}

// Stop halts the cron loop; a running job is allowed to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
