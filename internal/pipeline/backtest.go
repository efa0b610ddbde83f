package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/inletlabs/kitecast/internal/domain"
)

// Backtester replays archived observations through the prediction model and
// scores each day against what the site station actually recorded.
type Backtester struct {
	siteFetcher domain.SeriesFetcher
	refFetcher  domain.SeriesFetcher
	cfg         ForecasterConfig
	logger      *slog.Logger
}

// NewBacktester creates a Backtester sharing the forecaster's location and
// model configuration.
func NewBacktester(site, ref domain.SeriesFetcher, cfg ForecasterConfig, logger *slog.Logger) *Backtester {
	return &Backtester{
		siteFetcher: site,
		refFetcher:  ref,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run fetches the archive for the given date range and returns one accuracy
// report per local calendar day.
func (b *Backtester) Run(ctx context.Context, dates domain.DateRange) ([]domain.AccuracyReport, error) {
	siteSeries, err := b.siteFetcher.FetchHourly(ctx, b.cfg.Site.Lat, b.cfg.Site.Lon,
		domain.SiteFields, domain.ModeArchive, dates)
	if err != nil {
		return nil, err
	}

	refSeries, err := b.refFetcher.FetchHourly(ctx, b.cfg.RefLat, b.cfg.RefLon,
		domain.ReferenceFields, domain.ModeArchive, dates)
	if err != nil {
		return nil, err
	}

	observations, err := domain.Normalize(siteSeries, refSeries)
	if err != nil {
		return nil, err
	}

	predictions := domain.PredictSeries(observations, b.cfg.Model)
	days := groupByDay(observations, predictions)

	reports := make([]domain.AccuracyReport, 0, len(days))
	for _, day := range days {
		report, err := domain.Evaluate(dayPredictions(day), dayObservations(day), b.cfg.Model)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)

		b.logger.Debug("day scored",
			"date", report.Date.Format("2006-01-02"),
			"mae_kn", report.MAE,
			"verdict", report.Verdict)
	}
	return reports, nil
}

func dayObservations(day DayForecast) []domain.HourlyObservation {
	observations := make([]domain.HourlyObservation, len(day.Hours))
	for i, h := range day.Hours {
		observations[i] = h.Observation
	}
	return observations
}

// LastNDays builds an inclusive archive range ending yesterday in the given
// location.
func LastNDays(n int, now time.Time, loc *time.Location) domain.DateRange {
	local := now.In(loc)
	yesterday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	return domain.DateRange{
		Start: yesterday.AddDate(0, 0, -(n - 1)),
		End:   yesterday,
	}
}
