package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/macropulse/macropulse-go/internal/cache"
	"github.com/macropulse/macropulse-go/internal/config"
	"github.com/macropulse/macropulse-go/internal/models"
	"github.com/macropulse/macropulse-go/internal/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// SyncService incrementally pulls new observations: it computes the stored
// high-water mark per series and requests only what lies beyond it. Syncs
// always bypass the cache so they see true upstream state.
type SyncService struct {
	store        ObservationStore
	client       UpstreamClient
	seriesCache  *cache.SeriesCache
	lookbackDays int
	concurrency  int
	logger       *logrus.Logger
}

// NewSyncService creates an incremental sync service. seriesCache may be
// nil; it is only used to invalidate stale entries after new rows land.
func NewSyncService(st ObservationStore, client UpstreamClient, seriesCache *cache.SeriesCache, cfg config.SyncConfig, logger *logrus.Logger) *SyncService {
	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 365
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &SyncService{
		store:        st,
		client:       client,
		seriesCache:  seriesCache,
		lookbackDays: lookback,
		concurrency:  concurrency,
		logger:       logger,
	}
}

// Sync fetches and stores everything newer than the series' watermark.
// Finding nothing new is a success with Count 0, distinct from an error.
func (s *SyncService) Sync(ctx context.Context, code string) models.SyncResult {
	ctx, span := telemetry.Tracer().Start(ctx, "series_sync")
	span.SetAttributes(attribute.String("series.code", code))
	defer span.End()

	result := s.sync(ctx, code)
	span.SetAttributes(attribute.Int("sync.count", result.Count))
	if result.Status == models.SyncError {
		span.SetStatus(codes.Error, result.Error)
	} else {
		span.SetStatus(codes.Ok, result.Message)
	}
	return result
}

func (s *SyncService) sync(ctx context.Context, code string) models.SyncResult {
	watermark, err := s.store.MaxDate(ctx, code)
	if err != nil {
		return models.SyncResult{SeriesCode: code, Status: models.SyncError, Error: err.Error()}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var start time.Time
	if watermark != nil {
		start = watermark.AddDate(0, 0, 1)
	} else {
		s.logger.WithField("series", code).Info("No existing data, fetching lookback window")
		start = today.AddDate(0, 0, -s.lookbackDays)
	}

	if start.After(today) {
		return models.SyncResult{SeriesCode: code, Status: models.SyncSuccess, Count: 0, Message: "already up to date"}
	}

	observations, err := s.client.FetchHistorical(ctx, code, start, today)
	if err != nil {
		return models.SyncResult{SeriesCode: code, Status: models.SyncError, Error: err.Error()}
	}

	// The client may return overlap at the window edge; keep only dates
	// strictly after the watermark.
	if watermark != nil {
		filtered := observations[:0]
		for _, obs := range observations {
			if obs.Date.After(*watermark) {
				filtered = append(filtered, obs)
			}
		}
		observations = filtered
	}

	if len(observations) == 0 {
		return models.SyncResult{SeriesCode: code, Status: models.SyncSuccess, Count: 0, Message: "already up to date"}
	}

	count, err := s.store.Upsert(ctx, observations)
	if err != nil {
		// count reports rows committed by batches that completed before
		// the failure.
		return models.SyncResult{SeriesCode: code, Status: models.SyncError, Count: count, Error: err.Error()}
	}

	if s.seriesCache != nil {
		s.seriesCache.Invalidate(ctx, cache.SeriesPattern(code))
	}

	s.logger.WithFields(logrus.Fields{
		"series": code,
		"count":  count,
	}).Info("Stored new observations")

	return models.SyncResult{
		SeriesCode: code,
		Status:     models.SyncSuccess,
		Count:      count,
		Message:    fmt.Sprintf("added %d new observations", count),
	}
}

// SyncAll syncs every series with bounded concurrency. Each series is an
// isolated failure domain: one terminal failure lands in that series'
// result entry without aborting the rest.
func (s *SyncService) SyncAll(ctx context.Context, seriesCodes []string) map[string]models.SyncResult {
	results := make(map[string]models.SyncResult, len(seriesCodes))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, code := range seriesCodes {
		g.Go(func() error {
			result := s.Sync(gctx, code)

			mu.Lock()
			results[code] = result
			mu.Unlock()

			if result.Status == models.SyncError {
				s.logger.WithFields(logrus.Fields{
					"series": code,
					"error":  result.Error,
				}).Error("Series sync failed")
			}
			// Errors are collected per series, never returned, so one
			// failure cannot cancel the group.
			return nil
		})
	}

	// Always nil by construction.
	_ = g.Wait()

	return results
}
