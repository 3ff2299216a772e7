package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/macropulse/macropulse-go/internal/cache"
	"github.com/macropulse/macropulse-go/internal/catalog"
	"github.com/macropulse/macropulse-go/internal/config"
	"github.com/macropulse/macropulse-go/internal/models"
	"github.com/macropulse/macropulse-go/internal/utils"
	"github.com/sirupsen/logrus"
)

// MetricsService is the read-side facade the API handlers talk to. It
// composes the upstream client, the cache, the store, and the analysis
// engine into the per-request operations.
type MetricsService struct {
	client      UpstreamClient
	store       ObservationStore
	seriesCache *cache.SeriesCache
	sync        *SyncService
	analysis    *AnalysisService
	cacheCfg    config.CacheConfig
	logger      *logrus.Logger
}

func NewMetricsService(
	client UpstreamClient,
	st ObservationStore,
	seriesCache *cache.SeriesCache,
	sync *SyncService,
	analysis *AnalysisService,
	cacheCfg config.CacheConfig,
	logger *logrus.Logger,
) *MetricsService {
	return &MetricsService{
		client:      client,
		store:       st,
		seriesCache: seriesCache,
		sync:        sync,
		analysis:    analysis,
		cacheCfg:    cacheCfg,
		logger:      logger,
	}
}

// GetCurrent returns the latest value of one series, served from cache
// when a fresh entry exists.
func (m *MetricsService) GetCurrent(ctx context.Context, code string) (*models.CurrentValue, error) {
	sc, ok := catalog.Get(code)
	if !ok {
		return nil, utils.NewError(utils.KindInvalid, code, "lookup", "unknown series code", nil)
	}

	raw, meta, err := m.seriesCache.GetOrFetch(ctx, cache.CurrentKey(code), m.cacheCfg.CurrentTTLDuration(), func(ctx context.Context) ([]byte, error) {
		obs, err := m.client.FetchCurrent(ctx, code)
		if err != nil {
			return nil, err
		}
		return json.Marshal(obs)
	})
	if err != nil {
		return nil, err
	}

	var obs models.Observation
	if err := json.Unmarshal(raw, &obs); err != nil {
		return nil, utils.NewError(utils.KindCache, code, "decode", "corrupt cache payload", err)
	}

	return &models.CurrentValue{
		SeriesCode: code,
		SeriesName: sc.DisplayName,
		Unit:       sc.Unit,
		Value:      obs.Value,
		Date:       obs.Date,
		FetchedAt:  time.Now().UTC(),
		Cached:     meta.Cached,
		CacheTTL:   int64(meta.ExpiresIn / time.Second),
	}, nil
}

// GetAllCurrent fetches the latest value for every configured series.
// One series failing is logged and skipped rather than failing the set.
func (m *MetricsService) GetAllCurrent(ctx context.Context) []models.CurrentValue {
	series := catalog.All()
	out := make([]models.CurrentValue, 0, len(series))
	for _, sc := range series {
		cv, err := m.GetCurrent(ctx, sc.Code)
		if err != nil {
			m.logger.WithFields(logrus.Fields{
				"series": sc.Code,
				"error":  err,
			}).Warn("Skipping series in current-values sweep")
			continue
		}
		out = append(out, *cv)
	}
	return out
}

// GetHistorical returns stored observations over a date range, defaulting
// to the trailing year. The range is served through the cache keyed on the
// resolved bounds.
func (m *MetricsService) GetHistorical(ctx context.Context, code string, start, end time.Time) (*models.HistoricalSeries, error) {
	sc, ok := catalog.Get(code)
	if !ok {
		return nil, utils.NewError(utils.KindInvalid, code, "lookup", "unknown series code", nil)
	}

	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}
	if start.After(end) {
		return nil, utils.NewError(utils.KindInvalid, code, "lookup", "start date after end date", nil)
	}

	raw, meta, err := m.seriesCache.GetOrFetch(ctx, cache.HistoricalKey(code, start, end), m.cacheCfg.HistoricalTTLDuration(), func(ctx context.Context) ([]byte, error) {
		observations, err := m.store.ReadRange(ctx, code, start, end)
		if err != nil {
			return nil, err
		}
		return json.Marshal(observations)
	})
	if err != nil {
		return nil, err
	}

	var observations []models.Observation
	if err := json.Unmarshal(raw, &observations); err != nil {
		return nil, utils.NewError(utils.KindCache, code, "decode", "corrupt cache payload", err)
	}

	return &models.HistoricalSeries{
		SeriesCode:   code,
		SeriesName:   sc.DisplayName,
		Unit:         sc.Unit,
		Observations: observations,
		Count:        len(observations),
		Cached:       meta.Cached,
		CacheTTL:     int64(meta.ExpiresIn / time.Second),
	}, nil
}

// Refresh syncs one series, or every series when code is empty, and
// returns the per-series results.
func (m *MetricsService) Refresh(ctx context.Context, code string) (map[string]models.SyncResult, error) {
	if code != "" {
		if _, ok := catalog.Get(code); !ok {
			return nil, utils.NewError(utils.KindInvalid, code, "refresh", "unknown series code", nil)
		}
		return map[string]models.SyncResult{code: m.sync.Sync(ctx, code)}, nil
	}
	return m.sync.SyncAll(ctx, catalog.Codes()), nil
}

// Analyze runs the analysis engine over a series' stored history. The
// most recent observation is the subject; everything before it is the
// baseline.
func (m *MetricsService) Analyze(ctx context.Context, code string) (*models.AnalysisResult, error) {
	if _, ok := catalog.Get(code); !ok {
		return nil, utils.NewError(utils.KindInvalid, code, "analysis", "unknown series code", nil)
	}

	observations, err := m.store.ReadRange(ctx, code, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, utils.NewError(utils.KindInvalid, code, "analysis", "no stored observations", nil)
	}

	latest := observations[len(observations)-1]
	history := make([]Point, 0, len(observations)-1)
	for _, obs := range observations[:len(observations)-1] {
		v, _ := obs.Value.Float64()
		history = append(history, Point{Date: obs.Date, Value: v})
	}

	current, _ := latest.Value.Float64()
	result := m.analysis.Analyze(code, current, latest.Date, history)
	return &result, nil
}
