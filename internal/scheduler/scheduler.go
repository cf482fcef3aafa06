// Package scheduler runs the periodic reconciliation sweep. On each tick it
// reconciles every reporting date whose source tables are complete but
// which has no stored run yet.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/service"
)

// Scheduler triggers pending reconciliation runs on a cron schedule.
type Scheduler struct {
	cron  *cron.Cron
	recon *service.ReconciliationService
}

// New creates a Scheduler that sweeps pending dates per the cron spec
// (standard five-field syntax).
func New(spec string, recon *service.ReconciliationService) (*Scheduler, error) {
	s := &Scheduler{
		cron:  cron.New(),
		recon: recon,
	}
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return nil, fmt.Errorf("invalid scheduler spec %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweep() {
	runs, err := s.recon.RunPending()
	if err != nil {
		log.Printf("Scheduled reconciliation sweep failed: %v", err)
		return
	}
	if len(runs) == 0 {
		return
	}
	log.Printf("Scheduled sweep reconciled %d reporting dates", len(runs))
}
