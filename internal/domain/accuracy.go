package domain

import (
	"fmt"
	"math"
)

// Evaluate scores one day's predictions against the observed base wind for
// the same hours. Residual = predicted steady − observed base speed; MAE is
// the mean of absolute residuals over the kiteable hours. The verdict is
// "accurate" when MAE is under the configured threshold.
//
// The two sequences must pair up hour for hour; a length or timestamp
// mismatch is a *MisalignedSeriesError.
func Evaluate(preds []Prediction, observed []HourlyObservation, cfg ModelConfig) (AccuracyReport, error) {
	if len(preds) != len(observed) {
		return AccuracyReport{}, &MisalignedSeriesError{Reason: fmt.Sprintf(
			"%d predictions paired with %d observations", len(preds), len(observed))}
	}

	report := AccuracyReport{GeneratedAt: clock.Now()}
	if len(preds) > 0 {
		report.Date = dayOf(preds[0].Time)
	}

	var absSum float64
	for i, p := range preds {
		if !p.Time.Equal(observed[i].Time) {
			return AccuracyReport{}, &MisalignedSeriesError{Reason: fmt.Sprintf(
				"prediction/observation timestamp mismatch at index %d", i)}
		}
		hour := p.Time.Hour()
		if hour < cfg.KiteHourStart || hour > cfg.KiteHourEnd {
			continue
		}
		residual := p.SteadyKn - observed[i].BaseWindKn
		absSum += math.Abs(residual)
		report.Residuals = append(report.Residuals, HourlyResidual{
			Hour:        hour,
			PredictedKn: p.SteadyKn,
			ObservedKn:  observed[i].BaseWindKn,
			ResidualKn:  residual,
		})
	}

	if n := len(report.Residuals); n > 0 {
		report.MAE = absSum / float64(n)
	}
	report.Accurate = report.MAE < cfg.AccuracyMAEKn
	report.Verdict = VerdictMissed
	if report.Accurate {
		report.Verdict = VerdictAccurate
	}
	return report, nil
}
