package models

import "time"

// Changes holds percentage changes of the current value against historical
// comparators. A horizon with no usable comparator reports 0.
type Changes struct {
	VsYesterday float64 `json:"vs_yesterday"`
	VsLastWeek  float64 `json:"vs_last_week"`
	VsLastMonth float64 `json:"vs_last_month"`
	VsLastYear  float64 `json:"vs_last_year"`
}

// Significance describes how unusual the current value is relative to the
// full supplied history.
type Significance struct {
	ZScore     float64 `json:"z_score"`
	Percentile float64 `json:"percentile"`
	IsOutlier  bool    `json:"is_outlier"`
	Avg30d     float64 `json:"avg_30d"`
	Avg90d     float64 `json:"avg_90d"`
	Avg1y      float64 `json:"avg_1y"`
}

// AnalysisResult is the full derived context for one series. It is computed
// fresh per request and never persisted.
type AnalysisResult struct {
	SeriesCode   string       `json:"series_code"`
	CurrentValue float64      `json:"current_value"`
	CurrentDate  time.Time    `json:"current_date"`
	Changes      Changes      `json:"changes"`
	Significance Significance `json:"significance"`
	Alerts       []string     `json:"alerts"`
	Context      string       `json:"context"`
}

// SyncStatus reports the outcome of one incremental sync.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncError   SyncStatus = "error"
)

// SyncResult is the per-series outcome of an incremental sync run. A run
// that found nothing new is a success with Count 0.
type SyncResult struct {
	SeriesCode string     `json:"series_code"`
	Status     SyncStatus `json:"status"`
	Count      int        `json:"count"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`
}
