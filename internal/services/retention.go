package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/m-karthika14/mindmirrorai/internal/config"
	"go.uber.org/zap"
)

// PurgeFunc deletes sessions and reports created before cutoff.
type PurgeFunc func(ctx context.Context, cutoff time.Time) (sessions int64, reports int64, err error)

// RetentionScheduler periodically purges expired sessions and reports.
type RetentionScheduler struct {
	log       *zap.Logger
	scheduler *gocron.Scheduler
	purge     PurgeFunc
	conf      config.RetentionConfig
	now       func() time.Time
}

func NewRetentionScheduler(log *zap.Logger, conf config.RetentionConfig, purge PurgeFunc) *RetentionScheduler {
	return &RetentionScheduler{
		log:       log,
		scheduler: gocron.NewScheduler(time.UTC),
		purge:     purge,
		conf:      conf,
		now:       time.Now,
	}
}

// Start schedules the purge job without blocking. A non-positive retention
// period disables it.
func (s *RetentionScheduler) Start() error {
	if s.conf.Days <= 0 || s.conf.Interval <= 0 {
		s.log.Info("Retention purge disabled")
		return nil
	}

	if _, err := s.scheduler.Every(s.conf.Interval).Do(s.RunOnce); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("Starting retention scheduler...",
		zap.Int("days", s.conf.Days),
		zap.Duration("interval", s.conf.Interval),
	)
	return nil
}

func (s *RetentionScheduler) Stop() {
	s.scheduler.Stop()
}

// RunOnce purges everything older than the retention period.
func (s *RetentionScheduler) RunOnce() {
	cutoff := s.now().UTC().AddDate(0, 0, -s.conf.Days)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sessions, reports, err := s.purge(ctx, cutoff)
	if err != nil {
		s.log.Error("Failed to purge expired records", zap.Error(err))
		return
	}
	s.log.Info("Purged expired records",
		zap.Time("cutoff", cutoff),
		zap.Int64("sessions", sessions),
		zap.Int64("reports", reports),
	)
}
