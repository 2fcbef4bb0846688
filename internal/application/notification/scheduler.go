package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler sends the digest on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	svc     Service
	timeout time.Duration
	logger  *zap.Logger
}

// NewScheduler registers the digest job under the standard five-field cron
// schedule (e.g. "0 8 * * *" for every day at 08:00).
func NewScheduler(svc Service, schedule string, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cron:    cron.New(),
		svc:     svc,
		timeout: time.Minute,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.svc.Digest(ctx, time.Now())
	if err != nil {
		s.logger.Error("digest run failed", zap.Error(err))
		return
	}
	s.logger.Info("digest run finished", zap.Int("notifications", n))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("digest scheduler started")
}

// Stop halts the schedule and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
