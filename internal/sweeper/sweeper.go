// Package sweeper runs a scheduled scan for timers that were left running,
// so forgotten entries surface in the logs instead of accumulating silently.
package sweeper

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ymgta/time-tracker-api/internal/repository"
)

// staleAfter is how long a timer may run before the sweep reports it.
const staleAfter = 24 * time.Hour

// Sweeper periodically reports long-running timers. It only reads; closing a
// forgotten timer stays a user decision.
type Sweeper struct {
	entryRepo repository.TrackerEntryRepository
	cron      *cron.Cron
}

// New creates a Sweeper around the given repository.
func New(entryRepo repository.TrackerEntryRepository) *Sweeper {
	return &Sweeper{
		entryRepo: entryRepo,
		cron:      cron.New(),
	}
}

// Start registers the sweep under the given cron schedule and starts the
// scheduler. An empty schedule disables the sweep.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-staleAfter)
	entries, err := s.entryRepo.ListLongRunning(cutoff)
	if err != nil {
		log.Printf("sweeper: failed to list long-running timers: %v", err)
		return
	}

	for _, e := range entries {
		log.Printf("sweeper: timer %d in team %d running since %s",
			e.ID, e.TeamID, e.Start.Format(time.RFC3339))
	}
}
