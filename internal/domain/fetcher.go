package domain

import (
	"context"
	"time"
)

// FetchMode selects between the rolling multi-day forecast and the fixed-range
// historical archive.
type FetchMode string

const (
	ModeForecast FetchMode = "forecast"
	ModeArchive  FetchMode = "archive"
)

// DateRange is an inclusive calendar date range. Required for archive
// requests; the zero value means the provider's default rolling window and is
// only valid for forecast requests.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// SeriesFetcher retrieves hourly weather series from the upstream provider.
type SeriesFetcher interface {
	// FetchHourly returns the hourly series for the given coordinates and
	// fields, in the site's local time zone. Failures surface as
	// *UpstreamFetchError.
	FetchHourly(ctx context.Context, lat, lon float64, fields []string, mode FetchMode, dates DateRange) (StationSeries, error)
}
