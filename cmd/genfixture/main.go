// Command genfixture generates Open-Meteo-shaped dual-station hourly fixtures
// for local development, then runs them through the actual prediction model so
// the printed summary matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genfixture -days 3 -site-out data/fixtures/site.json -ref-out data/fixtures/ref.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/inletlabs/kitecast/internal/domain"
)

// hourlyPayload mirrors the Open-Meteo hourly response body.
type hourlyPayload struct {
	Hourly map[string]any `json:"hourly"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	days := flag.Int("days", 3, "number of days to generate")
	start := flag.String("start", "2026-07-14", "first day (YYYY-MM-DD)")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	siteOut := flag.String("site-out", "", "output path for the site station fixture")
	refOut := flag.String("ref-out", "", "output path for the reference station fixture")
	flag.Parse()

	if *siteOut == "" || *refOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -site-out, -ref-out")
	}

	startDay, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}

	site, ref := generate(startDay, *days, rand.New(rand.NewSource(*seed)))

	if err := writeFixture(*siteOut, site); err != nil {
		return fmt.Errorf("writing site fixture: %w", err)
	}
	log.Printf("wrote site fixture: %s", *siteOut)

	if err := writeFixture(*refOut, ref); err != nil {
		return fmt.Errorf("writing reference fixture: %w", err)
	}
	log.Printf("wrote reference fixture: %s", *refOut)

	return printSummary(site, ref)
}

// generate builds aligned site and reference series. Each day has a diurnal
// temperature curve and an afternoon pressure gradient strong enough to drive
// a thermal session, with day-to-day jitter from the seeded source.
func generate(startDay time.Time, days int, rng *rand.Rand) (domain.StationSeries, domain.StationSeries) {
	site := domain.StationSeries{Fields: map[string][]float64{}}
	ref := domain.StationSeries{Fields: map[string][]float64{}}

	for d := 0; d < days; d++ {
		// Per-day character: how hot it gets and how hard the gradient peaks.
		peakTemp := 22 + rng.Float64()*8       // 22-30 C
		peakGradient := 2 + rng.Float64()*4    // 2-6 hPa
		rainChance := rng.Float64() * 0.15     // mostly dry summer days
		basePressure := 1010 + rng.Float64()*6 // 1010-1016 hPa

		for h := 0; h < 24; h++ {
			ts := startDay.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour)
			site.Times = append(site.Times, ts)
			ref.Times = append(ref.Times, ts)

			// Temperature peaks mid-afternoon.
			diurnal := math.Sin(math.Pi * float64(h-6) / 12)
			if diurnal < 0 {
				diurnal = 0
			}
			temp := 12 + (peakTemp-12)*diurnal

			// The inlet heats and its pressure sags relative to the coast,
			// strongest around 15:00.
			gradient := peakGradient * thermalShape(h)
			sitePressure := basePressure - gradient

			precip := 0.0
			if rng.Float64() < rainChance {
				precip = rng.Float64() * 1.5
			}

			baseWind := 4 + 4*diurnal + rng.Float64()*2
			gust := baseWind * (1.2 + rng.Float64()*0.3)

			appendHour(&site, temp, sitePressure, precip, baseWind, gust, 170+rng.Float64()*20)
			ref.Fields[domain.FieldPressure] = append(ref.Fields[domain.FieldPressure], basePressure)
		}
	}
	return site, ref
}

// thermalShape ramps the gradient up from late morning to a 15:00 peak and
// back down by evening.
func thermalShape(hour int) float64 {
	if hour < 9 || hour > 21 {
		return 0
	}
	return math.Sin(math.Pi * float64(hour-9) / 12)
}

func appendHour(s *domain.StationSeries, temp, pressure, precip, wind, gust, direction float64) {
	s.Fields[domain.FieldTemperature] = append(s.Fields[domain.FieldTemperature], round1(temp))
	s.Fields[domain.FieldPressure] = append(s.Fields[domain.FieldPressure], round1(pressure))
	s.Fields[domain.FieldPrecipitation] = append(s.Fields[domain.FieldPrecipitation], round1(precip))
	s.Fields[domain.FieldWindSpeed] = append(s.Fields[domain.FieldWindSpeed], round1(wind))
	s.Fields[domain.FieldWindGust] = append(s.Fields[domain.FieldWindGust], round1(gust))
	s.Fields[domain.FieldWindDirection] = append(s.Fields[domain.FieldWindDirection], round1(direction))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func writeFixture(path string, series domain.StationSeries) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	hourly := map[string]any{}
	stamps := make([]string, len(series.Times))
	for i, t := range series.Times {
		stamps[i] = t.Format("2006-01-02T15:04")
	}
	hourly["time"] = stamps
	for field, values := range series.Fields {
		hourly[field] = values
	}

	data, err := json.MarshalIndent(hourlyPayload{Hourly: hourly}, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printSummary runs the generated series through the model and reports each
// day's window, matching what the service would serve.
func printSummary(site, ref domain.StationSeries) error {
	observations, err := domain.Normalize(site, ref)
	if err != nil {
		return fmt.Errorf("normalize fixtures: %w", err)
	}

	cfg := domain.DefaultModelConfig()
	predictions := domain.PredictSeries(observations, cfg)

	fmt.Println("\n=== Fixture summary ===")
	byDay := map[time.Time][]domain.Prediction{}
	var order []time.Time
	for _, p := range predictions {
		day := time.Date(p.Time.Year(), p.Time.Month(), p.Time.Day(), 0, 0, 0, 0, p.Time.Location())
		if _, ok := byDay[day]; !ok {
			order = append(order, day)
		}
		byDay[day] = append(byDay[day], p)
	}

	for _, day := range order {
		w := domain.DetectWindow(byDay[day], cfg)
		if w.Found {
			fmt.Printf("  %s  session %02d:00-%02d:00, peak %.1f kn at %02d:00\n",
				day.Format("2006-01-02"), w.StartHour, w.EndHour, w.PeakSteadyKn, w.PeakHour)
			continue
		}
		fmt.Printf("  %s  no solid session, peak %.1f kn at %02d:00\n",
			day.Format("2006-01-02"), w.PeakSteadyKn, w.PeakHour)
	}
	return nil
}
