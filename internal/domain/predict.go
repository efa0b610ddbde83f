package domain

import "math"

// Thermal model segment parameters. These encode the shape of the
// gradient-to-wind curve for this site and are not operator-tunable, unlike
// the thresholds in ModelConfig.
const (
	strongGradientHPa   = 4.0
	strongBaseKn        = 22.0
	strongSlopeKnPerHPa = 2.5

	moderateGradientHPa   = 2.5
	moderateBaseKn        = 16.0
	moderateSlopeKnPerHPa = 2.0

	// Light rain above this rate cools the convection cycle (rain dampener).
	rainDampenerTriggerMM = 0.5

	// Fixed storm-gate output: steady 0 with a 45 kn gust marker.
	stormGustKn = 45.0

	// Fixed heat-bubble output: collapsed thermal leaves light residual air.
	heatBubbleLullKn   = 5.0
	heatBubbleSteadyKn = 8.0
	heatBubbleGustKn   = 12.0
)

// ModelConfig holds the operator-tunable thresholds and factors of the
// prediction model. It is passed explicitly into every engine call; there is
// no process-wide model state.
type ModelConfig struct {
	KiteableThresholdKn float64
	MinSessionHours     int
	KiteHourStart       int // first kiteable local hour, inclusive
	KiteHourEnd         int // last kiteable local hour, inclusive

	StormRainMM      float64
	StormPressureHPa float64
	HeatBubbleTempC  float64

	GustFactor       float64
	LullFactor       float64
	RainSteadyFactor float64
	RainGustFactor   float64

	AccuracyMAEKn float64
}

// DefaultModelConfig returns the tuned defaults for the Squamish inlet.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		KiteableThresholdKn: 15,
		MinSessionHours:     2,
		KiteHourStart:       10,
		KiteHourEnd:         21,
		StormRainMM:         2.0,
		StormPressureHPa:    1008,
		HeatBubbleTempC:     31,
		GustFactor:          1.35,
		LullFactor:          0.7,
		RainSteadyFactor:    0.6,
		RainGustFactor:      0.8,
		AccuracyMAEKn:       5,
	}
}

// Predict maps one hourly observation to a prediction via the rule cascade
// described in the package documentation. Pure and deterministic: identical
// input always yields identical output.
func Predict(obs HourlyObservation, cfg ModelConfig) Prediction {
	// Gate 1: storm safety. Hard override, everything else is irrelevant.
	if obs.PrecipitationMM > cfg.StormRainMM && obs.SitePressureHPa < cfg.StormPressureHPa {
		return Prediction{Time: obs.Time, LullKn: 0, SteadyKn: 0, GustKn: stormGustKn, Status: StatusDangerStorm}
	}

	// Gate 2: extreme heat collapses the thermal convection cycle.
	if obs.TemperatureC > cfg.HeatBubbleTempC {
		return Prediction{
			Time:     obs.Time,
			LullKn:   heatBubbleLullKn,
			SteadyKn: heatBubbleSteadyKn,
			GustKn:   heatBubbleGustKn,
			Status:   StatusHeatBubble,
		}
	}

	// Thermal model, piecewise on the pressure gradient.
	var steady float64
	var status Status
	switch {
	case obs.GradientHPa >= strongGradientHPa:
		steady = strongBaseKn + (obs.GradientHPa-strongGradientHPa)*strongSlopeKnPerHPa
		status = StatusExcellent
	case obs.GradientHPa >= moderateGradientHPa:
		steady = moderateBaseKn + (obs.GradientHPa-moderateGradientHPa)*moderateSlopeKnPerHPa
		status = StatusGood
	default:
		// No thermal contribution; fall back to the synoptic forecast wind.
		steady = obs.BaseWindKn
		status = StatusLight
	}

	// Gusts run ~35% over steady, but a stronger externally reported gust wins.
	gust := math.Max(steady*cfg.GustFactor, obs.GustKn)
	lull := steady * cfg.LullFactor

	// Rain dampener: only applied when a thermal/synoptic signal exists;
	// pure light-wind hours are not further dampened.
	if obs.PrecipitationMM > rainDampenerTriggerMM && status != StatusLight {
		steady *= cfg.RainSteadyFactor
		gust *= cfg.RainGustFactor
		status = StatusRainRisk
	}

	return clampOrdering(Prediction{Time: obs.Time, LullKn: lull, SteadyKn: steady, GustKn: gust, Status: status})
}

// PredictSeries applies Predict to each record of an ordered sequence.
func PredictSeries(observations []HourlyObservation, cfg ModelConfig) []Prediction {
	preds := make([]Prediction, len(observations))
	for i, obs := range observations {
		preds[i] = Predict(obs, cfg)
	}
	return preds
}

// clampOrdering restores 0 ≤ lull ≤ steady ≤ gust. The rain dampener scales
// steady and gust independently, which can leave the underived lull above the
// dampened steady.
func clampOrdering(p Prediction) Prediction {
	if p.SteadyKn < 0 {
		p.SteadyKn = 0
	}
	if p.LullKn < 0 {
		p.LullKn = 0
	}
	if p.LullKn > p.SteadyKn {
		p.LullKn = p.SteadyKn
	}
	if p.GustKn < p.SteadyKn {
		p.GustKn = p.SteadyKn
	}
	return p
}
