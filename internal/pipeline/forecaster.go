// Package pipeline orchestrates the fetch-normalize-predict cycle: the
// Forecaster keeps a rolling forecast fresh for the HTTP API and publishes
// kite-window digests, and the Backtester replays archived days through the
// same model to score its accuracy.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/inletlabs/kitecast/internal/domain"
	"github.com/inletlabs/kitecast/internal/observability"
)

// DigestPublisher delivers per-day kite-window digests downstream.
type DigestPublisher interface {
	PublishWindows(ctx context.Context, windows []domain.KiteWindow) error
}

// Site identifies the forecast target location.
type Site struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// HourForecast pairs one merged observation with its prediction.
type HourForecast struct {
	Observation domain.HourlyObservation `json:"observation"`
	Prediction  domain.Prediction        `json:"prediction"`
}

// DayForecast is one local calendar day of hourly forecasts plus the detected
// kiteable window.
type DayForecast struct {
	Date   time.Time         `json:"date"`
	Hours  []HourForecast    `json:"hours"`
	Window domain.KiteWindow `json:"window"`
}

// Forecast is the full rolling forecast served by the API.
type Forecast struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Site        Site          `json:"site"`
	Days        []DayForecast `json:"days"`
}

// ForecasterConfig carries the location and cadence settings for the refresh
// loop.
type ForecasterConfig struct {
	Site     Site
	RefLat   float64
	RefLon   float64
	Model    domain.ModelConfig
	Interval time.Duration
}

// Forecaster periodically fetches both stations, runs the prediction model,
// and keeps the latest forecast available for the HTTP API.
type Forecaster struct {
	siteFetcher domain.SeriesFetcher
	refFetcher  domain.SeriesFetcher
	cfg         ForecasterConfig
	publisher   DigestPublisher // nil disables digest publishing
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock

	mu     sync.RWMutex
	latest *Forecast
	ready  atomic.Bool
}

// NewForecaster creates a Forecaster. publisher may be nil when digest
// publishing is disabled.
func NewForecaster(site, ref domain.SeriesFetcher, cfg ForecasterConfig, publisher DigestPublisher, logger *slog.Logger, metrics *observability.Metrics) *Forecaster {
	return &Forecaster{
		siteFetcher: site,
		refFetcher:  ref,
		cfg:         cfg,
		publisher:   publisher,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
	}
}

// CheckReadiness returns nil once at least one forecast has been computed.
func (f *Forecaster) CheckReadiness(_ context.Context) error {
	if !f.ready.Load() {
		return errors.New("no forecast computed yet")
	}
	return nil
}

// Latest returns the most recent forecast. ok is false until the first
// successful refresh.
func (f *Forecaster) Latest() (Forecast, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.latest == nil {
		return Forecast{}, false
	}
	return *f.latest, true
}

// Refresh runs one fetch-normalize-predict cycle and swaps in the result.
func (f *Forecaster) Refresh(ctx context.Context) error {
	start := time.Now()
	f.metrics.RefreshTotal.Inc()

	forecast, err := f.compute(ctx)
	if err != nil {
		f.metrics.RefreshErrors.Inc()
		return err
	}
	f.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	f.mu.Lock()
	f.latest = &forecast
	f.mu.Unlock()
	f.ready.Store(true)

	f.publishDigests(ctx, forecast)

	f.logger.Info("forecast refreshed",
		"days", len(forecast.Days),
		"duration", time.Since(start))
	return nil
}

func (f *Forecaster) compute(ctx context.Context) (Forecast, error) {
	siteSeries, err := f.siteFetcher.FetchHourly(ctx, f.cfg.Site.Lat, f.cfg.Site.Lon,
		domain.SiteFields, domain.ModeForecast, domain.DateRange{})
	if err != nil {
		return Forecast{}, err
	}

	refSeries, err := f.refFetcher.FetchHourly(ctx, f.cfg.RefLat, f.cfg.RefLon,
		domain.ReferenceFields, domain.ModeForecast, domain.DateRange{})
	if err != nil {
		return Forecast{}, err
	}

	observations, err := domain.Normalize(siteSeries, refSeries)
	if err != nil {
		return Forecast{}, err
	}

	predictions := domain.PredictSeries(observations, f.cfg.Model)
	f.metrics.PredictionsComputed.Add(float64(len(predictions)))

	days := groupByDay(observations, predictions)
	for i := range days {
		days[i].Window = domain.DetectWindow(dayPredictions(days[i]), f.cfg.Model)

		result := "none"
		if days[i].Window.Found {
			result = "session"
		}
		f.metrics.WindowsDetected.WithLabelValues(result).Inc()
		if days[i].Window.Storm {
			f.metrics.StormDays.Inc()
		}
	}

	return Forecast{
		GeneratedAt: f.clock.Now(),
		Site:        f.cfg.Site,
		Days:        days,
	}, nil
}

func (f *Forecaster) publishDigests(ctx context.Context, forecast Forecast) {
	if f.publisher == nil || len(forecast.Days) == 0 {
		return
	}

	windows := make([]domain.KiteWindow, len(forecast.Days))
	for i, day := range forecast.Days {
		windows[i] = day.Window
	}

	if err := f.publisher.PublishWindows(ctx, windows); err != nil {
		f.metrics.DigestErrors.Inc()
		f.logger.Error("publish window digests failed", "error", err)
		return
	}
	f.metrics.DigestsPublished.Add(float64(len(windows)))
}

// Run refreshes immediately and then on every interval until the context is
// cancelled. Failed refreshes retry with exponential backoff instead of
// waiting out a full interval.
func (f *Forecaster) Run(ctx context.Context) error {
	f.logger.Info("forecaster started", "interval", f.cfg.Interval)
	f.metrics.ForecasterRunning.Set(1)
	defer f.metrics.ForecasterRunning.Set(0)

	// Exponential backoff: start at 1s, double each retry, cap at 5m.
	backoff := time.Second
	maxBackoff := 5 * time.Minute

	for {
		if err := f.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			f.logger.Error("refresh failed", "error", err, "retry_in", backoff)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = time.Second

		if !sleepWithContext(ctx, f.cfg.Interval) {
			f.logger.Info("forecaster stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// groupByDay splits the aligned observation and prediction slices into local
// calendar days, preserving input order.
func groupByDay(observations []domain.HourlyObservation, predictions []domain.Prediction) []DayForecast {
	var days []DayForecast
	index := make(map[time.Time]int)

	for i := range observations {
		t := observations[i].Time
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

		j, ok := index[midnight]
		if !ok {
			j = len(days)
			index[midnight] = j
			days = append(days, DayForecast{Date: midnight})
		}
		days[j].Hours = append(days[j].Hours, HourForecast{
			Observation: observations[i],
			Prediction:  predictions[i],
		})
	}
	return days
}

func dayPredictions(day DayForecast) []domain.Prediction {
	preds := make([]domain.Prediction, len(day.Hours))
	for i, h := range day.Hours {
		preds[i] = h.Prediction
	}
	return preds
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
