package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/macropulse/macropulse-go/internal/config"
	"github.com/macropulse/macropulse-go/internal/models"
)

// Point is one historical observation flattened for numeric work.
type Point struct {
	Date  time.Time
	Value float64
}

// AnalysisService derives statistics from a series' stored history. It is
// pure: identical inputs always produce identical output, which keeps the
// analysis endpoints trivially testable.
type AnalysisService struct {
	moveThresholdPct float64
	slopeThreshold   float64
	outlierZScore    float64
}

func NewAnalysisService(cfg config.AnalysisConfig) *AnalysisService {
	moveThreshold := cfg.MoveThresholdPct
	if moveThreshold <= 0 {
		moveThreshold = 5.0
	}
	slopeThreshold := cfg.SlopeThreshold
	if slopeThreshold <= 0 {
		slopeThreshold = 0.1
	}
	outlierZ := cfg.OutlierZScore
	if outlierZ <= 0 {
		outlierZ = 2.0
	}
	return &AnalysisService{
		moveThresholdPct: moveThreshold,
		slopeThreshold:   slopeThreshold,
		outlierZScore:    outlierZ,
	}
}

// comparatorTolerance bounds how far a historical point may sit from the
// exact lookback date and still serve as the change comparator. Weekly and
// monthly series rarely have a point on the exact day.
const comparatorTolerance = 7 * 24 * time.Hour

// Analyze computes changes, significance, alerts, and a context sentence
// for a series. history need not be sorted; points dated on or after
// currentDate are ignored as comparators but still count toward the
// statistical baseline.
func (a *AnalysisService) Analyze(code string, currentValue float64, currentDate time.Time, history []Point) models.AnalysisResult {
	sorted := make([]Point, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	changes := a.computeChanges(currentValue, currentDate, sorted)
	significance := a.computeSignificance(currentValue, sorted)
	alerts := a.computeAlerts(currentValue, changes, significance, sorted)

	return models.AnalysisResult{
		SeriesCode:   code,
		CurrentValue: currentValue,
		CurrentDate:  currentDate,
		Changes:      changes,
		Significance: significance,
		Alerts:       alerts,
		Context:      a.buildContext(changes, significance),
	}
}

// computeChanges resolves each horizon against the closest prior point
// within the tolerance. No comparator, or a zero base, yields 0.
func (a *AnalysisService) computeChanges(current float64, currentDate time.Time, sorted []Point) models.Changes {
	return models.Changes{
		VsYesterday: changeOverHorizon(current, currentDate, sorted, 24*time.Hour),
		VsLastWeek:  changeOverHorizon(current, currentDate, sorted, 7*24*time.Hour),
		VsLastMonth: changeOverHorizon(current, currentDate, sorted, 30*24*time.Hour),
		VsLastYear:  changeOverHorizon(current, currentDate, sorted, 365*24*time.Hour),
	}
}

func changeOverHorizon(current float64, currentDate time.Time, sorted []Point, horizon time.Duration) float64 {
	target := currentDate.Add(-horizon)

	best := -1
	var bestDist time.Duration
	for i, p := range sorted {
		if !p.Date.Before(currentDate) {
			break
		}
		dist := p.Date.Sub(target)
		if dist < 0 {
			dist = -dist
		}
		if dist > comparatorTolerance {
			continue
		}
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	if best == -1 {
		return 0
	}
	past := sorted[best].Value
	if past == 0 {
		return 0
	}
	return round2((current - past) / past * 100)
}

func (a *AnalysisService) computeSignificance(current float64, sorted []Point) models.Significance {
	if len(sorted) < 2 {
		return models.Significance{
			ZScore:     0,
			Percentile: 50,
			IsOutlier:  false,
			Avg30d:     current,
			Avg90d:     current,
			Avg1y:      current,
		}
	}

	values := make([]float64, len(sorted))
	for i, p := range sorted {
		values[i] = p.Value
	}

	// Treat a standard deviation at float-residual scale as zero, so a
	// constant-value history whose mean is not exactly representable does
	// not produce z = +-1.
	m := mean(values)
	var z float64
	if sd := stdDev(values); sd > 1e-9*math.Max(math.Abs(m), 1) {
		z = (current - m) / sd
	}

	anchor := sorted[len(sorted)-1].Date
	return models.Significance{
		ZScore:     z,
		Percentile: percentileRank(values, current),
		IsOutlier:  math.Abs(z) > a.outlierZScore,
		Avg30d:     rollingAvg(sorted, anchor, 30, current),
		Avg90d:     rollingAvg(sorted, anchor, 90, current),
		Avg1y:      rollingAvg(sorted, anchor, 365, current),
	}
}

// rollingAvg averages values dated within days of the anchor, falling back
// to the current value when the window is empty.
func rollingAvg(sorted []Point, anchor time.Time, days int, fallback float64) float64 {
	cutoff := anchor.AddDate(0, 0, -days)
	var sum float64
	var n int
	for _, p := range sorted {
		if p.Date.Before(cutoff) {
			continue
		}
		sum += p.Value
		n++
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}

func (a *AnalysisService) computeAlerts(current float64, changes models.Changes, sig models.Significance, sorted []Point) []string {
	alerts := []string{}
	if len(sorted) == 0 {
		return alerts
	}

	maxVal, minVal := sorted[0].Value, sorted[0].Value
	earliest := sorted[0].Date
	for _, p := range sorted[1:] {
		if p.Value > maxVal {
			maxVal = p.Value
		}
		if p.Value < minVal {
			minVal = p.Value
		}
	}

	if current >= maxVal {
		alerts = append(alerts, fmt.Sprintf("Highest level since %d", earliest.Year()))
	} else if current <= minVal {
		alerts = append(alerts, fmt.Sprintf("Lowest level since %d", earliest.Year()))
	}

	if math.Abs(changes.VsYesterday) > a.moveThresholdPct {
		if changes.VsYesterday > 0 {
			alerts = append(alerts, fmt.Sprintf("Significant surge: +%.1f%% in one day", changes.VsYesterday))
		} else {
			alerts = append(alerts, fmt.Sprintf("Significant drop: %.1f%% in one day", changes.VsYesterday))
		}
	}

	if a.detectTrendReversal(sorted) {
		alerts = append(alerts, "Trend reversal detected")
	}

	if sig.IsOutlier {
		if sig.ZScore > 0 {
			alerts = append(alerts, fmt.Sprintf("Unusually high (z-score %.1f)", sig.ZScore))
		} else {
			alerts = append(alerts, fmt.Sprintf("Unusually low (z-score %.1f)", sig.ZScore))
		}
	}

	return alerts
}

// detectTrendReversal compares the slope of the last 3 points against the
// slope of the 7 before them. Both slopes must clear the magnitude
// threshold with opposite signs; sparse series that cannot fill 10 points
// inside a 10-day window never trigger.
func (a *AnalysisService) detectTrendReversal(sorted []Point) bool {
	if len(sorted) < 10 {
		return false
	}
	last10 := sorted[len(sorted)-10:]
	span := last10[9].Date.Sub(last10[0].Date)
	if span > 10*24*time.Hour {
		return false
	}

	values := make([]float64, 10)
	for i, p := range last10 {
		values[i] = p.Value
	}
	prior := slope(values[:7])
	recent := slope(values[7:])

	if math.Abs(prior) <= a.slopeThreshold || math.Abs(recent) <= a.slopeThreshold {
		return false
	}
	return (prior > 0) != (recent > 0)
}

// buildContext composes a one-sentence summary out of percentile band,
// weekly direction, and year-over-year magnitude.
func (a *AnalysisService) buildContext(changes models.Changes, sig models.Significance) string {
	var level string
	switch {
	case sig.Percentile > 75:
		level = "near the top of its historical range"
	case sig.Percentile < 25:
		level = "near the bottom of its historical range"
	default:
		level = "within its typical historical range"
	}

	var direction string
	switch {
	case changes.VsLastWeek > 2:
		direction = "rising over the past week"
	case changes.VsLastWeek < -2:
		direction = "falling over the past week"
	case math.Abs(changes.VsLastWeek) <= 0.5:
		direction = "stable over the past week"
	default:
		direction = "drifting over the past week"
	}

	sentence := fmt.Sprintf("The series is %s and %s.", level, direction)
	if math.Abs(changes.VsLastYear) > 10 {
		sentence += fmt.Sprintf(" It has moved %.1f%% over the past year.", changes.VsLastYear)
	}
	return sentence
}
