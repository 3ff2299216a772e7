package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/macropulse/macropulse-go/internal/catalog"
	"github.com/macropulse/macropulse-go/internal/config"
	"github.com/macropulse/macropulse-go/internal/models"
	"github.com/sirupsen/logrus"
)

// Scheduler drives the periodic incremental sync and the daily quality
// sweep. All jobs run in UTC.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sync      *SyncService
	quality   *QualityService
	cfg       config.SchedulerConfig
	logger    *logrus.Logger
}

func NewScheduler(sync *SyncService, quality *QualityService, cfg config.SchedulerConfig, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sync:      sync,
		quality:   quality,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the jobs and launches the scheduler in the background.
// It is a no-op when disabled in config.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("Scheduler disabled")
		return nil
	}

	interval := s.cfg.SyncInterval
	if interval == "" {
		interval = "6h"
	}
	if _, err := s.scheduler.Every(interval).Do(func() { s.runSync(ctx) }); err != nil {
		return err
	}

	checkTime := s.cfg.QualityCheckTime
	if checkTime == "" {
		checkTime = "06:00"
	}
	if _, err := s.scheduler.Every(1).Day().At(checkTime).Do(func() { s.runQualitySweep(ctx) }); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.WithFields(logrus.Fields{
		"sync_interval":      interval,
		"quality_check_time": checkTime,
	}).Info("Scheduler started")
	return nil
}

// Stop blocks until in-flight jobs finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runSync(ctx context.Context) {
	start := time.Now()
	results := s.sync.SyncAll(ctx, catalog.Codes())

	var added, failed int
	for _, r := range results {
		if r.Status == models.SyncError {
			failed++
			continue
		}
		added += r.Count
	}
	s.logger.WithFields(logrus.Fields{
		"series":   len(results),
		"added":    added,
		"failed":   failed,
		"duration": time.Since(start).String(),
	}).Info("Scheduled sync finished")
}

func (s *Scheduler) runQualitySweep(ctx context.Context) {
	report := s.quality.RunAll(ctx)
	s.logger.WithFields(logrus.Fields{
		"series": report.TotalSeries,
		"issues": report.IssuesCount,
	}).Info("Daily quality sweep finished")

	for _, check := range report.Checks {
		if !check.HasIssues {
			continue
		}
		fields := logrus.Fields{"series": check.SeriesCode}
		if check.Error != "" {
			fields["error"] = check.Error
		}
		if check.Freshness != nil {
			fields["freshness"] = check.Freshness.Status
		}
		if check.Gaps != nil && check.Gaps.HasGaps {
			fields["gaps"] = len(check.Gaps.Gaps)
		}
		s.logger.WithFields(fields).Warn("Series has data quality issues")
	}
}
