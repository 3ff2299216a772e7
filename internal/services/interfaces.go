package services

import (
	"context"
	"time"

	"github.com/macropulse/macropulse-go/internal/models"
)

// UpstreamClient is the surface of the rate-limited data API client the
// services depend on. Kept narrow so tests can substitute fakes.
type UpstreamClient interface {
	FetchCurrent(ctx context.Context, code string) (models.Observation, error)
	FetchHistorical(ctx context.Context, code string, start, end time.Time) ([]models.Observation, error)
}

// ObservationStore is the persistence surface consumed by the sync,
// analysis, and quality services.
type ObservationStore interface {
	Upsert(ctx context.Context, observations []models.Observation) (int, error)
	ReadRange(ctx context.Context, code string, since, until time.Time) ([]models.Observation, error)
	MaxDate(ctx context.Context, code string) (*time.Time, error)
	LatestWrite(ctx context.Context, code string) (*time.Time, *time.Time, error)
	Dates(ctx context.Context, code string, since time.Time) ([]time.Time, error)
	Stats(ctx context.Context, code string) (*models.SeriesStats, error)
}
