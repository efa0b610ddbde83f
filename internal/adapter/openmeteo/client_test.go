package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inletlabs/kitecast/internal/domain"
	"github.com/inletlabs/kitecast/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("site", server.URL, server.URL, time.UTC, 5*time.Second,
		observability.NewMetricsForTesting(), testLogger())
	return client, server
}

func TestFetchHourlyForecast(t *testing.T) {
	var gotQuery map[string][]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hourly": {
				"time": ["2026-07-14T10:00", "2026-07-14T11:00"],
				"windspeed_10m": [8.5, 12.0],
				"pressure_msl": [1012.3, 1011.8]
			}
		}`))
	})

	series, err := client.FetchHourly(context.Background(), 49.7016, -123.1558,
		[]string{domain.FieldWindSpeed, domain.FieldPressure}, domain.ModeForecast, domain.DateRange{})

	require.NoError(t, err)
	assert.Equal(t, []string{"49.7016"}, gotQuery["latitude"])
	assert.Equal(t, []string{"-123.1558"}, gotQuery["longitude"])
	assert.Equal(t, []string{"windspeed_10m,pressure_msl"}, gotQuery["hourly"])
	assert.Equal(t, []string{"UTC"}, gotQuery["timezone"])
	assert.Empty(t, gotQuery["start_date"])

	require.Len(t, series.Times, 2)
	assert.Equal(t, time.Date(2026, 7, 14, 10, 0, 0, 0, time.UTC), series.Times[0])
	assert.Equal(t, []float64{8.5, 12.0}, series.Fields[domain.FieldWindSpeed])
	assert.Equal(t, []float64{1012.3, 1011.8}, series.Fields[domain.FieldPressure])
}

func TestFetchHourlyArchiveDates(t *testing.T) {
	var gotQuery map[string][]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly": {"time": [], "windspeed_10m": []}}`))
	})

	dates := domain.DateRange{
		Start: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 7, 7, 0, 0, 0, 0, time.UTC),
	}
	_, err := client.FetchHourly(context.Background(), 49.7016, -123.1558,
		[]string{domain.FieldWindSpeed}, domain.ModeArchive, dates)

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-07-01"}, gotQuery["start_date"])
	assert.Equal(t, []string{"2026-07-07"}, gotQuery["end_date"])
}

func TestFetchHourlyArchiveRequiresDates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.FetchHourly(context.Background(), 49.7016, -123.1558,
		[]string{domain.FieldWindSpeed}, domain.ModeArchive, domain.DateRange{})

	var upstream *domain.UpstreamFetchError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "site", upstream.Station)
}

func TestFetchHourlyUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	_, err := client.FetchHourly(context.Background(), 49.7016, -123.1558,
		[]string{domain.FieldWindSpeed}, domain.ModeForecast, domain.DateRange{})

	var upstream *domain.UpstreamFetchError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Equal(t, "site", upstream.Station)
}

func TestFetchHourlyMissingField(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly": {"time": ["2026-07-14T10:00"], "windspeed_10m": [8.5]}}`))
	})

	_, err := client.FetchHourly(context.Background(), 49.7016, -123.1558,
		[]string{domain.FieldWindSpeed, domain.FieldPressure}, domain.ModeForecast, domain.DateRange{})

	var upstream *domain.UpstreamFetchError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Error(), "pressure_msl")
}

func TestFetchHourlyLocalTimestamps(t *testing.T) {
	loc, err := time.LoadLocation("America/Vancouver")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly": {"time": ["2026-07-14T15:00"], "windspeed_10m": [18.0]}}`))
	}))
	defer server.Close()

	client := NewClient("site", server.URL, server.URL, loc, 5*time.Second,
		observability.NewMetricsForTesting(), testLogger())

	series, err := client.FetchHourly(context.Background(), 49.7016, -123.1558,
		[]string{domain.FieldWindSpeed}, domain.ModeForecast, domain.DateRange{})

	require.NoError(t, err)
	require.Len(t, series.Times, 1)
	assert.Equal(t, time.Date(2026, 7, 14, 15, 0, 0, 0, loc), series.Times[0])
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var requests int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	// gobreaker trips after more than five consecutive failures.
	for i := 0; i < 8; i++ {
		_, err := client.FetchHourly(context.Background(), 49.7016, -123.1558,
			[]string{domain.FieldWindSpeed}, domain.ModeForecast, domain.DateRange{})
		require.Error(t, err)
	}

	assert.Less(t, requests, 8, "open breaker should short-circuit requests")
}
