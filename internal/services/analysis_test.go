package services

import (
	"testing"
	"time"

	"github.com/macropulse/macropulse-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalysis() *AnalysisService {
	return NewAnalysisService(config.AnalysisConfig{
		MoveThresholdPct: 5.0,
		SlopeThreshold:   0.1,
		OutlierZScore:    2.0,
	})
}

// dailyPoints builds one point per day ending the day before end.
func dailyPoints(end time.Time, values ...float64) []Point {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Date: end.AddDate(0, 0, i-len(values)), Value: v}
	}
	return points
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	history := dailyPoints(current, 1.2, 3.4, 2.8, 4.1, 3.9, 5.0, 4.4)

	first := svc.Analyze("DFF", 4.7, current, history)
	second := svc.Analyze("DFF", 4.7, current, history)
	assert.Equal(t, first, second)
}

func TestConstantHistoryIsNotOutlier(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	values := make([]float64, 30)
	for i := range values {
		values[i] = 5.33
	}
	result := svc.Analyze("DFF", 5.33, current, dailyPoints(current, values...))

	assert.Equal(t, 0.0, result.Significance.ZScore)
	assert.False(t, result.Significance.IsOutlier)
}

func TestVaryingHistoryKeepsZScore(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	result := svc.Analyze("DFF", 7.0, current, dailyPoints(current, 5.31, 5.33, 5.35, 5.33, 5.32))
	assert.NotZero(t, result.Significance.ZScore)
}

func TestPercentileAtHistoricalMaximum(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	result := svc.Analyze("DFF", 5, current, dailyPoints(current, 1, 2, 3, 4, 5))
	assert.Equal(t, 100.0, result.Significance.Percentile)
}

func TestChangesUseClosestComparatorWithinTolerance(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	history := []Point{
		{Date: time.Date(2023, 6, 13, 0, 0, 0, 0, time.UTC), Value: 55},  // ~1y ago, 2 days off
		{Date: time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC), Value: 88},  // 30 days ago
		{Date: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), Value: 95},   // 7 days ago
		{Date: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), Value: 100}, // yesterday
	}

	result := svc.Analyze("GDP", 110, current, history)
	assert.Equal(t, 10.0, result.Changes.VsYesterday)
	assert.Equal(t, 15.79, result.Changes.VsLastWeek)
	assert.Equal(t, 25.0, result.Changes.VsLastMonth)
	assert.Equal(t, 100.0, result.Changes.VsLastYear)
}

func TestChangeWithoutComparatorIsZero(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// A month of history cannot answer the year-over-year question.
	history := dailyPoints(current, make([]float64, 30)...)
	for i := range history {
		history[i].Value = 10
	}

	result := svc.Analyze("DFF", 10, current, history)
	assert.Equal(t, 0.0, result.Changes.VsLastYear)
}

func TestChangeAgainstZeroBaseIsZero(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	history := []Point{{Date: current.AddDate(0, 0, -1), Value: 0}}
	result := svc.Analyze("T10Y2Y", 0.5, current, history)
	assert.Equal(t, 0.0, result.Changes.VsYesterday)
}

func TestInsufficientHistoryFallsBackToDefaults(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	result := svc.Analyze("DFF", 5.33, current, []Point{{Date: current.AddDate(0, 0, -1), Value: 5.3}})

	assert.Equal(t, 0.0, result.Significance.ZScore)
	assert.Equal(t, 50.0, result.Significance.Percentile)
	assert.False(t, result.Significance.IsOutlier)
	assert.Equal(t, 5.33, result.Significance.Avg30d)
	assert.Equal(t, 5.33, result.Significance.Avg90d)
	assert.Equal(t, 5.33, result.Significance.Avg1y)
}

func TestRecordHighAlert(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	history := dailyPoints(current, 3.1, 3.4, 3.2, 3.6, 3.5)
	history[0].Date = time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)

	result := svc.Analyze("UNRATE", 4.0, current, history)
	assert.Contains(t, result.Alerts, "Highest level since 2019")
}

func TestSignificantDailyMoveAlert(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// 10% jump from yesterday.
	history := dailyPoints(current, 100, 101, 99, 100)
	result := svc.Analyze("VIXCLS", 110, current, history)
	assert.Contains(t, result.Alerts, "Significant surge: +10.0% in one day")

	result = svc.Analyze("VIXCLS", 90, current, history)
	assert.Contains(t, result.Alerts, "Significant drop: -10.0% in one day")
}

func TestTrendReversalAlert(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// Seven days rising then three days falling, all within ten days.
	history := dailyPoints(current, 1, 2, 3, 4, 5, 6, 7, 6.5, 5.5, 4.5)
	result := svc.Analyze("DCOILWTICO", 4.4, current, history)
	assert.Contains(t, result.Alerts, "Trend reversal detected")
}

func TestNoReversalWhenTrendContinues(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	history := dailyPoints(current, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	result := svc.Analyze("DCOILWTICO", 10.5, current, history)
	assert.NotContains(t, result.Alerts, "Trend reversal detected")
}

func TestNoReversalForSparseSeries(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// Weekly cadence: ten points span far more than ten days.
	points := make([]Point, 10)
	values := []float64{1, 2, 3, 4, 5, 6, 7, 6.5, 5.5, 4.5}
	for i := range points {
		points[i] = Point{Date: current.AddDate(0, 0, (i-10)*7), Value: values[i]}
	}

	result := svc.Analyze("MORTGAGE30US", 4.4, current, points)
	assert.NotContains(t, result.Alerts, "Trend reversal detected")
}

func TestOutlierAlert(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	values := make([]float64, 40)
	for i := range values {
		values[i] = 10
		if i%2 == 0 {
			values[i] = 10.1
		}
	}
	result := svc.Analyze("ICSA", 12, current, dailyPoints(current, values...))

	assert.True(t, result.Significance.IsOutlier)
	require.NotEmpty(t, result.Alerts)
	assert.Contains(t, result.Alerts[len(result.Alerts)-1], "Unusually high")
}

func TestContextSentenceComposition(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	history := []Point{
		{Date: time.Date(2023, 6, 14, 0, 0, 0, 0, time.UTC), Value: 50},
		{Date: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), Value: 90},
		{Date: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), Value: 99},
	}
	result := svc.Analyze("SP500", 100, current, history)

	assert.Contains(t, result.Context, "near the top of its historical range")
	assert.Contains(t, result.Context, "rising over the past week")
	assert.Contains(t, result.Context, "over the past year")
}

func TestContextStableDirection(t *testing.T) {
	svc := newTestAnalysis()
	current := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	history := []Point{
		{Date: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), Value: 100},
		{Date: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), Value: 100.1},
	}
	result := svc.Analyze("GASREGW", 100.2, current, history)
	assert.Contains(t, result.Context, "stable over the past week")
}
