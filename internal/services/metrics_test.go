package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/macropulse/macropulse-go/internal/cache"
	"github.com/macropulse/macropulse-go/internal/catalog"
	"github.com/macropulse/macropulse-go/internal/config"
	"github.com/macropulse/macropulse-go/internal/database"
	"github.com/macropulse/macropulse-go/internal/models"
	"github.com/macropulse/macropulse-go/internal/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(client *fakeClient, st *fakeStore) *MetricsService {
	return newTestMetricsWithCache(client, st, cache.New(nil, testLogger()))
}

func newTestMetricsWithCache(client *fakeClient, st *fakeStore, seriesCache *cache.SeriesCache) *MetricsService {
	logger := testLogger()
	syncSvc := NewSyncService(st, client, seriesCache, config.SyncConfig{
		BatchSize: 50, LookbackDays: 365, Concurrency: 2,
	}, logger)
	analysisSvc := NewAnalysisService(config.AnalysisConfig{
		MoveThresholdPct: 5.0, SlopeThreshold: 0.1, OutlierZScore: 2.0,
	})
	return NewMetricsService(client, st, seriesCache, syncSvc, analysisSvc, config.CacheConfig{
		CurrentTTL: "5m", HistoricalTTL: "1h",
	}, logger)
}

func TestGetCurrentUnknownSeries(t *testing.T) {
	svc := newTestMetrics(&fakeClient{}, newFakeStore())

	_, err := svc.GetCurrent(context.Background(), "BOGUS")
	require.Error(t, err)
	assert.True(t, utils.IsInvalid(err))
}

func TestGetCurrentReturnsEnrichedValue(t *testing.T) {
	date := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	client := &fakeClient{current: map[string]models.Observation{
		"DFF": {SeriesCode: "DFF", Source: "FRED", Date: date, Value: decimal.RequireFromString("5.33")},
	}}
	svc := newTestMetrics(client, newFakeStore())

	cv, err := svc.GetCurrent(context.Background(), "DFF")
	require.NoError(t, err)

	assert.Equal(t, "DFF", cv.SeriesCode)
	assert.Equal(t, "Federal Funds Effective Rate", cv.SeriesName)
	assert.Equal(t, "%", cv.Unit)
	assert.Equal(t, "5.33", cv.Value.String())
	assert.Equal(t, date, cv.Date)
	assert.False(t, cv.Cached)
}

func TestGetCurrentCacheHitReportsTTLInSeconds(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	date := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	client := &fakeClient{current: map[string]models.Observation{
		"DFF": {SeriesCode: "DFF", Source: "FRED", Date: date, Value: decimal.RequireFromString("5.33")},
	}}
	seriesCache := cache.New(&database.RedisClient{Client: rc}, testLogger())
	svc := newTestMetricsWithCache(client, newFakeStore(), seriesCache)

	// First read fills the cache, second one is served from it.
	_, err = svc.GetCurrent(context.Background(), "DFF")
	require.NoError(t, err)

	cv, err := svc.GetCurrent(context.Background(), "DFF")
	require.NoError(t, err)
	assert.True(t, cv.Cached)
	assert.Greater(t, cv.CacheTTL, int64(0))
	assert.LessOrEqual(t, cv.CacheTTL, int64(300))
}

func TestGetHistoricalDefaultsToTrailingYear(t *testing.T) {
	st := newFakeStore()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	storeDaily(st, "DGS10", today.AddDate(0, 0, -2), today.AddDate(0, 0, -1))
	storeDaily(st, "DGS10", today.AddDate(-2, 0, 0)) // outside default window

	svc := newTestMetrics(&fakeClient{}, st)
	series, err := svc.GetHistorical(context.Background(), "DGS10", time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 2, series.Count)
	assert.Equal(t, "10-Year Treasury Rate", series.SeriesName)
}

func TestGetHistoricalRejectsInvertedRange(t *testing.T) {
	svc := newTestMetrics(&fakeClient{}, newFakeStore())

	start := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.GetHistorical(context.Background(), "DGS10", start, end)
	require.Error(t, err)
	assert.True(t, utils.IsInvalid(err))
}

func TestRefreshUnknownSeries(t *testing.T) {
	svc := newTestMetrics(&fakeClient{}, newFakeStore())

	_, err := svc.Refresh(context.Background(), "BOGUS")
	require.Error(t, err)
	assert.True(t, utils.IsInvalid(err))
}

func TestRefreshSingleSeries(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	client := &fakeClient{historical: map[string][]models.Observation{
		"DFF": {{SeriesCode: "DFF", Source: "FRED", Date: today.AddDate(0, 0, -1), Value: decimal.RequireFromString("5.33")}},
	}}
	svc := newTestMetrics(client, newFakeStore())

	results, err := svc.Refresh(context.Background(), "DFF")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.SyncSuccess, results["DFF"].Status)
	assert.Equal(t, 1, results["DFF"].Count)
}

func TestRefreshAllCoversCatalog(t *testing.T) {
	client := &fakeClient{historical: map[string][]models.Observation{}}
	svc := newTestMetrics(client, newFakeStore())

	results, err := svc.Refresh(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, results, len(catalog.Codes()))
}

func TestAnalyzeUsesLatestObservationAsSubject(t *testing.T) {
	st := newFakeStore()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var observations []models.Observation
	for i := 0; i < 14; i++ {
		observations = append(observations, models.Observation{
			SeriesCode: "DFF", Source: "FRED",
			Date:  base.AddDate(0, 0, i),
			Value: decimal.NewFromFloat(5.0 + float64(i)*0.01),
		})
	}
	_, err := st.Upsert(context.Background(), observations)
	require.NoError(t, err)

	svc := newTestMetrics(&fakeClient{}, st)
	result, err := svc.Analyze(context.Background(), "DFF")
	require.NoError(t, err)

	assert.Equal(t, "DFF", result.SeriesCode)
	assert.InDelta(t, 5.13, result.CurrentValue, 1e-6)
	assert.Equal(t, base.AddDate(0, 0, 13), result.CurrentDate)
	assert.NotEmpty(t, result.Context)
}

func TestAnalyzeEmptySeries(t *testing.T) {
	svc := newTestMetrics(&fakeClient{}, newFakeStore())

	_, err := svc.Analyze(context.Background(), "DFF")
	require.Error(t, err)
	assert.True(t, utils.IsInvalid(err))
}
