package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is a single stored data point of an economic time series.
// Observations are unique per (series code, date); values are always finite
// because upstream missing-value sentinels are filtered at the parse boundary.
type Observation struct {
	SeriesCode string          `json:"series_code" db:"series_code"`
	Source     string          `json:"source" db:"source"`
	Date       time.Time       `json:"date" db:"date"`
	Value      decimal.Decimal `json:"value" db:"value"`
	CreatedAt  time.Time       `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// CurrentValue is the latest observation of a series enriched with catalog
// metadata, served by the current-values endpoint.
type CurrentValue struct {
	SeriesCode string          `json:"series_code"`
	SeriesName string          `json:"series_name"`
	Unit       string          `json:"unit"`
	Value      decimal.Decimal `json:"value"`
	Date       time.Time       `json:"date"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Cached     bool            `json:"cached"`
	// CacheTTL is the remaining cache lifetime in whole seconds.
	CacheTTL int64 `json:"cache_expires_in,omitempty"`
}

// HistoricalSeries is a date-range slice of one series.
type HistoricalSeries struct {
	SeriesCode   string        `json:"series_code"`
	SeriesName   string        `json:"series_name"`
	Unit         string        `json:"unit"`
	Observations []Observation `json:"observations"`
	Count        int           `json:"count"`
	Cached       bool          `json:"cached"`
	CacheTTL     int64         `json:"cache_expires_in,omitempty"`
}
