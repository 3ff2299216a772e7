// Package fred implements the rate-limited, retrying client for the FRED
// observations API. It is the only place upstream payloads are parsed;
// missing-value sentinels are filtered here and never reach the data model.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/macropulse/macropulse-go/internal/catalog"
	"github.com/macropulse/macropulse-go/internal/config"
	"github.com/macropulse/macropulse-go/internal/models"
	"github.com/macropulse/macropulse-go/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// Client talks to the upstream observations API. Every request first
// acquires a rate limiter slot; 5xx, 429 and timeouts are retried with
// exponential backoff plus jitter, other 4xx fail immediately.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	limiter    *RateLimiter
	logger     *logrus.Logger

	// backoff is replaceable in tests so retry paths run fast.
	backoff func(attempt int) time.Duration
}

// NewClient creates an upstream client from configuration.
func NewClient(cfg config.FREDConfig, logger *logrus.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	window := time.Duration(cfg.RateWindowSeconds) * time.Second
	if window == 0 {
		window = time.Minute
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		limiter:    NewRateLimiter(cfg.RateLimitPerWindow, window),
		logger:     logger,
		backoff:    defaultBackoff,
	}
}

// defaultBackoff is 2^attempt seconds plus up to one second of jitter.
func defaultBackoff(attempt int) time.Duration {
	base := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	return base + jitter
}

// FetchCurrent returns the most recent observation for a series.
func (c *Client) FetchCurrent(ctx context.Context, code string) (models.Observation, error) {
	cfg, ok := catalog.Get(code)
	if !ok {
		return models.Observation{}, utils.NewError(utils.KindInvalid, code, "fetch",
			fmt.Sprintf("unknown series: %s", code), nil)
	}

	params := url.Values{}
	params.Set("series_id", code)
	params.Set("sort_order", "desc")
	// A few extra entries so a trailing run of missing-value sentinels
	// still yields a latest value.
	params.Set("limit", "25")

	raw, err := c.requestObservations(ctx, code, params)
	if err != nil {
		return models.Observation{}, err
	}

	observations, err := parseObservations(code, cfg.Source, raw)
	if err != nil {
		return models.Observation{}, err
	}
	if len(observations) == 0 {
		return models.Observation{}, utils.NewError(utils.KindInvalid, code, "parse",
			"no usable observations returned", nil)
	}

	// Descending order: the first surviving entry is the latest value.
	return observations[0], nil
}

// FetchHistorical returns observations for a series within [start, end],
// ordered by date ascending. Missing-value entries are filtered out.
func (c *Client) FetchHistorical(ctx context.Context, code string, start, end time.Time) ([]models.Observation, error) {
	cfg, ok := catalog.Get(code)
	if !ok {
		return nil, utils.NewError(utils.KindInvalid, code, "fetch",
			fmt.Sprintf("unknown series: %s", code), nil)
	}

	params := url.Values{}
	params.Set("series_id", code)
	params.Set("sort_order", "asc")
	if !start.IsZero() {
		params.Set("observation_start", start.Format(dateLayout))
	}
	if !end.IsZero() {
		params.Set("observation_end", end.Format(dateLayout))
	}

	raw, err := c.requestObservations(ctx, code, params)
	if err != nil {
		return nil, err
	}

	return parseObservations(code, cfg.Source, raw)
}

// requestObservations issues the HTTP request with rate limiting and the
// retry policy, returning the raw payload entries.
func (c *Client) requestObservations(ctx context.Context, code string, params url.Values) ([]observationPayload, error) {
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	requestURL := c.baseURL + "/series/observations?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		c.logger.WithFields(logrus.Fields{
			"series":  code,
			"attempt": attempt + 1,
			"max":     c.maxRetries + 1,
		}).Debug("Requesting upstream observations")

		payload, retryable, err := c.doRequest(ctx, code, requestURL)
		if err == nil {
			return payload.Observations, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		wait := c.backoff(attempt)
		c.logger.WithFields(logrus.Fields{
			"series": code,
			"wait":   wait,
			"error":  err.Error(),
		}).Warn("Upstream request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, utils.NewError(utils.KindTransient, code, "fetch",
		fmt.Sprintf("upstream unavailable after %d attempts", c.maxRetries+1), lastErr)
}

// doRequest performs a single HTTP round trip. The second return value
// reports whether the failure may be retried.
func (c *Client) doRequest(ctx context.Context, code, requestURL string) (*observationsResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, utils.NewError(utils.KindInvalid, code, "fetch", "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		// Transport errors and client timeouts are retryable.
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.WithError(cerr).Warn("Error closing response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		// The local limiter does not guarantee upstream-side compliance;
		// other clients may share the quota.
		return nil, true, fmt.Errorf("rate limited by upstream (429)")
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("upstream server error (%d)", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, false, utils.NewError(utils.KindInvalid, code, "fetch",
			fmt.Sprintf("upstream rejected request (%d): %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var payload observationsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, utils.NewError(utils.KindInvalid, code, "parse",
			"invalid JSON response from upstream", err)
	}

	if payload.ErrorCode != 0 {
		return nil, false, utils.NewError(utils.KindInvalid, code, "fetch",
			fmt.Sprintf("upstream error %d: %s", payload.ErrorCode, payload.ErrorMessage), nil)
	}

	return &payload, false, nil
}

// parseObservations converts raw payload entries into Observations,
// dropping missing-value sentinels. A malformed numeric value is a parse
// error; a sentinel is expected and silently skipped.
func parseObservations(code, source string, raw []observationPayload) ([]models.Observation, error) {
	observations := make([]models.Observation, 0, len(raw))
	for _, entry := range raw {
		if entry.Value == missingValueSentinel || entry.Value == "" {
			continue
		}

		date, err := time.Parse(dateLayout, entry.Date)
		if err != nil {
			return nil, utils.NewError(utils.KindInvalid, code, "parse",
				fmt.Sprintf("invalid observation date %q", entry.Date), err)
		}
		value, err := decimal.NewFromString(entry.Value)
		if err != nil {
			return nil, utils.NewError(utils.KindInvalid, code, "parse",
				fmt.Sprintf("invalid observation value %q", entry.Value), err)
		}

		observations = append(observations, models.Observation{
			SeriesCode: code,
			Source:     source,
			Date:       date,
			Value:      value,
		})
	}
	return observations, nil
}
