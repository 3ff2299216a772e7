package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/macropulse/macropulse-go/internal/models"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// fakeClient serves canned observations per series, recording the windows
// it was asked for.
type fakeClient struct {
	historical map[string][]models.Observation
	current    map[string]models.Observation
	err        error

	mu              sync.Mutex
	historicalCalls []fetchWindow
}

type fetchWindow struct {
	Code  string
	Start time.Time
	End   time.Time
}

func (f *fakeClient) FetchCurrent(ctx context.Context, code string) (models.Observation, error) {
	if f.err != nil {
		return models.Observation{}, f.err
	}
	return f.current[code], nil
}

func (f *fakeClient) FetchHistorical(ctx context.Context, code string, start, end time.Time) ([]models.Observation, error) {
	f.mu.Lock()
	f.historicalCalls = append(f.historicalCalls, fetchWindow{Code: code, Start: start, End: end})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var out []models.Observation
	for _, obs := range f.historical[code] {
		if obs.Date.Before(start) || obs.Date.After(end) {
			continue
		}
		out = append(out, obs)
	}
	return out, nil
}

// fakeStore keeps observations in memory keyed by (series, date). All
// methods lock so concurrent sync runs stay race-free.
type fakeStore struct {
	mu           sync.Mutex
	observations map[string]map[time.Time]models.Observation
	updatedAt    map[string]time.Time

	upsertErr error
	readErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		observations: make(map[string]map[time.Time]models.Observation),
		updatedAt:    make(map[string]time.Time),
	}
}

func (f *fakeStore) Upsert(ctx context.Context, observations []models.Observation) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	for _, obs := range observations {
		series := f.observations[obs.SeriesCode]
		if series == nil {
			series = make(map[time.Time]models.Observation)
			f.observations[obs.SeriesCode] = series
		}
		series[obs.Date] = obs
		f.updatedAt[obs.SeriesCode] = time.Now()
	}
	return len(observations), nil
}

func (f *fakeStore) ReadRange(ctx context.Context, code string, since, until time.Time) ([]models.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.readRangeLocked(code, since, until), nil
}

func (f *fakeStore) readRangeLocked(code string, since, until time.Time) []models.Observation {
	var out []models.Observation
	for _, obs := range f.observations[code] {
		if !since.IsZero() && obs.Date.Before(since) {
			continue
		}
		if !until.IsZero() && obs.Date.After(until) {
			continue
		}
		out = append(out, obs)
	}
	sortObservations(out)
	return out
}

func (f *fakeStore) MaxDate(ctx context.Context, code string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.maxDateLocked(code), nil
}

func (f *fakeStore) maxDateLocked(code string) *time.Time {
	var max *time.Time
	for _, obs := range f.observations[code] {
		d := obs.Date
		if max == nil || d.After(*max) {
			max = &d
		}
	}
	return max
}

func (f *fakeStore) LatestWrite(ctx context.Context, code string) (*time.Time, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, nil, f.readErr
	}
	max := f.maxDateLocked(code)
	if max == nil {
		return nil, nil, nil
	}
	updated, ok := f.updatedAt[code]
	if !ok {
		updated = *max
	}
	return max, &updated, nil
}

func (f *fakeStore) Dates(ctx context.Context, code string, since time.Time) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	observations := f.readRangeLocked(code, since, time.Time{})
	dates := make([]time.Time, len(observations))
	for i, obs := range observations {
		dates[i] = obs.Date
	}
	return dates, nil
}

func (f *fakeStore) Stats(ctx context.Context, code string) (*models.SeriesStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	stats := &models.SeriesStats{SeriesCode: code}
	for _, obs := range f.observations[code] {
		stats.Count++
		d := obs.Date
		v, _ := obs.Value.Float64()
		if stats.FirstDate == nil || d.Before(*stats.FirstDate) {
			first := d
			stats.FirstDate = &first
		}
		if stats.LastDate == nil || d.After(*stats.LastDate) {
			last := d
			stats.LastDate = &last
		}
		if stats.MinValue == nil || v < *stats.MinValue {
			minV := v
			stats.MinValue = &minV
		}
		if stats.MaxValue == nil || v > *stats.MaxValue {
			maxV := v
			stats.MaxValue = &maxV
		}
	}
	return stats, nil
}

func sortObservations(observations []models.Observation) {
	sort.Slice(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})
}

func (f *fakeStore) setUpdatedAt(code string, t time.Time) {
	f.mu.Lock()
	f.updatedAt[code] = t
	f.mu.Unlock()
}
