package domain

import "time"

// DetectWindow scans one day's predictions for the kiteable period.
//
// Only hours inside the configured kiteable range are considered. Let Q be
// the hours whose steady speed meets the kiteable threshold: fewer than the
// minimum session duration means no solid session (Found=false); otherwise
// the window spans from the first to the last hour of Q. This is a
// first-to-last span, not a longest-contiguous-run computation; sub-threshold
// gaps inside the span are not reported.
//
// The day-level storm flag and the peak steady speed with its hour are
// reported regardless of whether a window was found.
func DetectWindow(preds []Prediction, cfg ModelConfig) KiteWindow {
	w := KiteWindow{}
	if len(preds) == 0 {
		return w
	}
	w.Date = dayOf(preds[0].Time)

	firstQualifying, lastQualifying := -1, -1
	qualifying := 0
	peak := -1.0

	for _, p := range preds {
		hour := p.Time.Hour()
		if hour < cfg.KiteHourStart || hour > cfg.KiteHourEnd {
			continue
		}
		if p.Status == StatusDangerStorm {
			w.Storm = true
		}
		if p.SteadyKn > peak {
			peak = p.SteadyKn
			w.PeakHour = hour
		}
		if p.SteadyKn >= cfg.KiteableThresholdKn {
			qualifying++
			if firstQualifying == -1 {
				firstQualifying = hour
			}
			lastQualifying = hour
		}
	}

	if peak >= 0 {
		w.PeakSteadyKn = peak
	}
	if qualifying >= cfg.MinSessionHours {
		w.Found = true
		w.StartHour = firstQualifying
		w.EndHour = lastQualifying
	}
	return w
}

// dayOf truncates a timestamp to local midnight, preserving the location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
