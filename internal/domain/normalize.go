package domain

import (
	"fmt"
	"time"
)

// Normalize merges the target-site series with the reference-station
// pressure series into one ordered sequence of canonical hourly records,
// computing the pressure gradient for each hour.
//
// Both series must carry the identical ascending, gap-free hourly timestamp
// set; the site series must carry every field in SiteFields and the reference
// series FieldPressure, each value slice as long as the timestamp slice.
// Anything else fails with *MisalignedSeriesError before any prediction logic
// can run. Two empty series normalize to an empty result, not an error, so
// callers can render a neutral state.
func Normalize(site, ref StationSeries) ([]HourlyObservation, error) {
	if len(site.Times) == 0 && len(ref.Times) == 0 {
		return nil, nil
	}

	if len(site.Times) != len(ref.Times) {
		return nil, &MisalignedSeriesError{Reason: fmt.Sprintf(
			"site has %d timestamps, reference has %d", len(site.Times), len(ref.Times))}
	}
	for i := range site.Times {
		if !site.Times[i].Equal(ref.Times[i]) {
			return nil, &MisalignedSeriesError{Reason: fmt.Sprintf(
				"timestamp mismatch at index %d: site %s, reference %s",
				i, site.Times[i].Format(time.RFC3339), ref.Times[i].Format(time.RFC3339))}
		}
	}
	for i := 1; i < len(site.Times); i++ {
		if site.Times[i].Sub(site.Times[i-1]) != time.Hour {
			return nil, &MisalignedSeriesError{Reason: fmt.Sprintf(
				"series is not hourly and gap-free between %s and %s",
				site.Times[i-1].Format(time.RFC3339), site.Times[i].Format(time.RFC3339))}
		}
	}

	if err := requireFields(site, "site", SiteFields); err != nil {
		return nil, err
	}
	if err := requireFields(ref, "reference", ReferenceFields); err != nil {
		return nil, err
	}

	obs := make([]HourlyObservation, len(site.Times))
	for i, ts := range site.Times {
		sitePressure := site.Fields[FieldPressure][i]
		refPressure := ref.Fields[FieldPressure][i]
		obs[i] = HourlyObservation{
			Time:             ts,
			TemperatureC:     site.Fields[FieldTemperature][i],
			SitePressureHPa:  sitePressure,
			RefPressureHPa:   refPressure,
			PrecipitationMM:  site.Fields[FieldPrecipitation][i],
			BaseWindKn:       site.Fields[FieldWindSpeed][i],
			GustKn:           site.Fields[FieldWindGust][i],
			WindDirectionDeg: site.Fields[FieldWindDirection][i],
			GradientHPa:      refPressure - sitePressure,
		}
	}
	return obs, nil
}

// requireFields verifies each required field is present and as long as the
// timestamp slice.
func requireFields(s StationSeries, station string, fields []string) error {
	for _, f := range fields {
		values, ok := s.Fields[f]
		if !ok {
			return &MisalignedSeriesError{Reason: fmt.Sprintf(
				"%s series is missing required field %q", station, f)}
		}
		if len(values) != len(s.Times) {
			return &MisalignedSeriesError{Reason: fmt.Sprintf(
				"%s field %q has %d values for %d timestamps", station, f, len(values), len(s.Times))}
		}
	}
	return nil
}
