package models

import "time"

// FreshnessStatus classifies how recently a series was written.
type FreshnessStatus string

const (
	FreshnessFresh  FreshnessStatus = "fresh"
	FreshnessStale  FreshnessStatus = "stale"
	FreshnessNoData FreshnessStatus = "no_data"
)

// Freshness reports the age of the most recent write for a series.
type Freshness struct {
	SeriesCode  string          `json:"series_code"`
	Status      FreshnessStatus `json:"status"`
	LastDate    *time.Time      `json:"last_date,omitempty"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
	AgeHours    float64         `json:"age_hours"`
}

// Gap is a stretch of consecutive stored dates more than one day apart.
type Gap struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// GapReport lists the gaps found within a trailing window.
type GapReport struct {
	SeriesCode  string `json:"series_code"`
	HasGaps     bool   `json:"has_gaps"`
	Gaps        []Gap  `json:"gaps"`
	DataPoints  int    `json:"data_points"`
	CheckedDays int    `json:"checked_days"`
}

// SeriesStats are summary statistics over everything stored for a series.
type SeriesStats struct {
	SeriesCode string     `json:"series_code"`
	Count      int64      `json:"count"`
	FirstDate  *time.Time `json:"first_date,omitempty"`
	LastDate   *time.Time `json:"last_date,omitempty"`
	MinValue   *float64   `json:"min_value,omitempty"`
	MaxValue   *float64   `json:"max_value,omitempty"`
	AvgValue   *float64   `json:"avg_value,omitempty"`
}

// QualityCheck bundles all checks for one series. A failed check is recorded
// in Error instead of aborting the sweep.
type QualityCheck struct {
	SeriesCode  string       `json:"series_code"`
	DisplayName string       `json:"display_name"`
	Freshness   *Freshness   `json:"freshness,omitempty"`
	Gaps        *GapReport   `json:"gaps,omitempty"`
	Statistics  *SeriesStats `json:"statistics,omitempty"`
	HasIssues   bool         `json:"has_issues"`
	Error       string       `json:"error,omitempty"`
}

// QualityReport is the full sweep over every configured series.
type QualityReport struct {
	Timestamp   time.Time      `json:"timestamp"`
	TotalSeries int            `json:"total_series"`
	IssuesCount int            `json:"issues_count"`
	Checks      []QualityCheck `json:"checks"`
}
