package services

import (
	"context"
	"time"

	"github.com/macropulse/macropulse-go/internal/catalog"
	"github.com/macropulse/macropulse-go/internal/config"
	"github.com/macropulse/macropulse-go/internal/models"
	"github.com/sirupsen/logrus"
)

// QualityService inspects stored data for freshness, gaps, and summary
// statistics. It reads, never writes.
type QualityService struct {
	store          ObservationStore
	staleAfterDays int
	gapWindowDays  int
	logger         *logrus.Logger

	// now is swapped out in tests.
	now func() time.Time
}

func NewQualityService(st ObservationStore, cfg config.QualityConfig, logger *logrus.Logger) *QualityService {
	staleAfter := cfg.StaleAfterDays
	if staleAfter <= 0 {
		staleAfter = 7
	}
	gapWindow := cfg.GapWindowDays
	if gapWindow <= 0 {
		gapWindow = 30
	}
	return &QualityService{
		store:          st,
		staleAfterDays: staleAfter,
		gapWindowDays:  gapWindow,
		logger:         logger,
		now:            time.Now,
	}
}

// CheckFreshness classifies a series by the age of its most recent write.
// Age is measured against updated_at, not the observation date, so a slow
// upstream does not mark a freshly synced series stale.
func (q *QualityService) CheckFreshness(ctx context.Context, code string) (*models.Freshness, error) {
	lastDate, lastUpdated, err := q.store.LatestWrite(ctx, code)
	if err != nil {
		return nil, err
	}
	if lastUpdated == nil {
		return &models.Freshness{SeriesCode: code, Status: models.FreshnessNoData}, nil
	}

	age := q.now().Sub(*lastUpdated)
	status := models.FreshnessFresh
	if age > time.Duration(q.staleAfterDays)*24*time.Hour {
		status = models.FreshnessStale
	}
	return &models.Freshness{
		SeriesCode:  code,
		Status:      status,
		LastDate:    lastDate,
		LastUpdated: lastUpdated,
		AgeHours:    age.Hours(),
	}, nil
}

// CheckGaps scans the trailing window for consecutive stored dates more
// than one day apart. Gap bounds are the stored dates on either side, not
// the missing days between them.
func (q *QualityService) CheckGaps(ctx context.Context, code string, windowDays int) (*models.GapReport, error) {
	if windowDays <= 0 {
		windowDays = q.gapWindowDays
	}
	since := q.now().AddDate(0, 0, -windowDays)

	dates, err := q.store.Dates(ctx, code, since)
	if err != nil {
		return nil, err
	}

	report := &models.GapReport{
		SeriesCode:  code,
		Gaps:        []models.Gap{},
		DataPoints:  len(dates),
		CheckedDays: windowDays,
	}
	for i := 1; i < len(dates); i++ {
		days := int(dates[i].Sub(dates[i-1]).Hours() / 24)
		if days > 1 {
			report.Gaps = append(report.Gaps, models.Gap{
				Start: dates[i-1],
				End:   dates[i],
				Days:  days,
			})
		}
	}
	report.HasGaps = len(report.Gaps) > 0
	return report, nil
}

// Statistics returns summary statistics over everything stored for a
// series.
func (q *QualityService) Statistics(ctx context.Context, code string) (*models.SeriesStats, error) {
	return q.store.Stats(ctx, code)
}

// RunAll sweeps every configured series. A failing check is captured in
// that series' entry so one broken series cannot hide the rest.
func (q *QualityService) RunAll(ctx context.Context) *models.QualityReport {
	series := catalog.All()
	report := &models.QualityReport{
		Timestamp:   q.now().UTC(),
		TotalSeries: len(series),
		Checks:      make([]models.QualityCheck, 0, len(series)),
	}

	for _, sc := range series {
		check := models.QualityCheck{
			SeriesCode:  sc.Code,
			DisplayName: sc.DisplayName,
		}

		freshness, err := q.CheckFreshness(ctx, sc.Code)
		if err != nil {
			check.Error = err.Error()
			check.HasIssues = true
			report.Checks = append(report.Checks, check)
			report.IssuesCount++
			q.logger.WithFields(logrus.Fields{
				"series": sc.Code,
				"error":  err,
			}).Error("Quality check failed")
			continue
		}
		check.Freshness = freshness

		gaps, err := q.CheckGaps(ctx, sc.Code, q.gapWindowDays)
		if err != nil {
			check.Error = err.Error()
		} else {
			check.Gaps = gaps
		}

		stats, err := q.Statistics(ctx, sc.Code)
		if err == nil {
			check.Statistics = stats
		}

		check.HasIssues = check.Error != "" ||
			freshness.Status != models.FreshnessFresh ||
			(gaps != nil && gaps.HasGaps)
		if check.HasIssues {
			report.IssuesCount++
		}
		report.Checks = append(report.Checks, check)
	}

	return report
}
