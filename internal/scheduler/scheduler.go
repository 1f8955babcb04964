// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"github.com/robfig/cron/v3"

	"swingtrack/internal/logger"
	"swingtrack/internal/services"
)

// Scheduler owns the cron runner for background maintenance.
type Scheduler struct {
	cron        *cron.Cron
	authService services.AuthServicer
}

// New creates a scheduler with the standard jobs registered but not
// started.
func New(authService services.AuthServicer) (*Scheduler, error) {
	s := &Scheduler{
		cron:        cron.New(),
		authService: authService,
	}

	// Expired unused invites are swept nightly. Sessions are never
	// pruned; revocation and expiry are enforced at resolve time.
	if _, err := s.cron.AddFunc("15 3 * * *", s.sweepInvites); err != nil {
		return nil, err
	}

	return s, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Get().Infow("scheduler started")
}

// Stop halts the cron runner, waiting for in-flight jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Get().Infow("scheduler stopped")
}

func (s *Scheduler) sweepInvites() {
	swept, err := s.authService.SweepExpiredInvites()
	if err != nil {
		logger.Get().Errorw("invite sweep failed", "error", err.Error())
		return
	}
	if swept > 0 {
		logger.Get().Infow("swept expired invites", "count", swept)
	}
}
