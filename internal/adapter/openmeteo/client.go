// Package openmeteo fetches hourly weather series from the Open-Meteo
// forecast and archive APIs and adapts them to the domain series model.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/inletlabs/kitecast/internal/domain"
	"github.com/inletlabs/kitecast/internal/observability"
)

// Client implements domain.SeriesFetcher against the Open-Meteo HTTP API. One
// client serves one station; requests pass through a circuit breaker so a
// flapping upstream stops burning the request budget.
type Client struct {
	station     string
	forecastURL string
	archiveURL  string
	location    *time.Location
	httpClient  *http.Client
	circuit     *gobreaker.CircuitBreaker
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates an Open-Meteo client for the named station ("site" or
// "reference"). Returned timestamps are parsed in loc, the site's local time
// zone.
func NewClient(station, forecastURL, archiveURL string, loc *time.Location, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo-" + station,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		station:     station,
		forecastURL: forecastURL,
		archiveURL:  archiveURL,
		location:    loc,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		circuit: cb,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchHourly retrieves the hourly series for the given coordinates and
// fields. Archive requests require a date range; forecast requests use the
// provider's rolling window.
func (c *Client) FetchHourly(ctx context.Context, lat, lon float64, fields []string, mode domain.FetchMode, dates domain.DateRange) (domain.StationSeries, error) {
	base := c.forecastURL
	if mode == domain.ModeArchive {
		base = c.archiveURL
		if dates.IsZero() {
			return domain.StationSeries{}, &domain.UpstreamFetchError{
				Station: c.station,
				Err:     fmt.Errorf("archive fetch requires a date range"),
			}
		}
	}

	params := url.Values{
		"latitude":  {fmt.Sprintf("%.4f", lat)},
		"longitude": {fmt.Sprintf("%.4f", lon)},
		"hourly":    {strings.Join(fields, ",")},
		"timezone":  {c.location.String()},
	}
	if mode == domain.ModeArchive {
		params.Set("start_date", dates.Start.Format("2006-01-02"))
		params.Set("end_date", dates.End.Format("2006-01-02"))
	}

	start := time.Now()
	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, base+"?"+params.Encode(), fields)
	})
	c.metrics.FetchDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(c.station, string(mode), "error").Inc()
		c.logger.Error("upstream fetch failed",
			"station", c.station,
			"mode", string(mode),
			"error", err)

		var upstream *domain.UpstreamFetchError
		if uerr, ok := err.(*domain.UpstreamFetchError); ok {
			upstream = uerr
		} else {
			// Breaker-open and transport errors arrive unwrapped.
			upstream = &domain.UpstreamFetchError{Station: c.station, Err: err}
		}
		return domain.StationSeries{}, upstream
	}

	c.metrics.FetchRequests.WithLabelValues(c.station, string(mode), "success").Inc()
	series := result.(domain.StationSeries)
	c.logger.Debug("fetched hourly series",
		"station", c.station,
		"mode", string(mode),
		"hours", len(series.Times))
	return series, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string, fields []string) (domain.StationSeries, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.StationSeries{}, &domain.UpstreamFetchError{Station: c.station, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.StationSeries{}, &domain.UpstreamFetchError{Station: c.station, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.StationSeries{}, &domain.UpstreamFetchError{
			Station: c.station,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("open-meteo API error: %s", strings.TrimSpace(string(body))),
		}
	}

	var payload struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.StationSeries{}, &domain.UpstreamFetchError{Station: c.station, Err: fmt.Errorf("decode response: %w", err)}
	}

	times, err := c.parseTimes(payload.Hourly["time"])
	if err != nil {
		return domain.StationSeries{}, &domain.UpstreamFetchError{Station: c.station, Err: err}
	}

	series := domain.StationSeries{
		Times:  times,
		Fields: make(map[string][]float64, len(fields)),
	}
	for _, field := range fields {
		raw, ok := payload.Hourly[field]
		if !ok {
			return domain.StationSeries{}, &domain.UpstreamFetchError{
				Station: c.station,
				Err:     fmt.Errorf("response missing hourly field %q", field),
			}
		}
		var values []float64
		if err := json.Unmarshal(raw, &values); err != nil {
			return domain.StationSeries{}, &domain.UpstreamFetchError{
				Station: c.station,
				Err:     fmt.Errorf("decode hourly field %q: %w", field, err),
			}
		}
		series.Fields[field] = values
	}
	return series, nil
}

// parseTimes decodes Open-Meteo's local-time timestamps, which carry no zone
// suffix ("2026-07-14T15:00").
func (c *Client) parseTimes(raw json.RawMessage) ([]time.Time, error) {
	if raw == nil {
		return nil, fmt.Errorf("response missing hourly time axis")
	}
	var stamps []string
	if err := json.Unmarshal(raw, &stamps); err != nil {
		return nil, fmt.Errorf("decode hourly time axis: %w", err)
	}

	times := make([]time.Time, len(stamps))
	for i, s := range stamps {
		t, err := time.ParseInLocation("2006-01-02T15:04", s, c.location)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		times[i] = t
	}
	return times, nil
}
