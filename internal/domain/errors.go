package domain

import "fmt"

// MisalignedSeriesError reports that the two station series cannot be merged:
// mismatched timestamp sets, a missing required field, or a ragged field
// slice. The Normalizer fails fast rather than silently zipping mismatched
// series.
type MisalignedSeriesError struct {
	Reason string
}

func (e *MisalignedSeriesError) Error() string {
	return "misaligned station series: " + e.Reason
}

// UpstreamFetchError wraps a network or HTTP failure from the weather
// provider. It is propagated to the caller unmodified; the core never
// retries.
type UpstreamFetchError struct {
	Station string // "site" or "reference"
	Status  int    // HTTP status, 0 for transport errors
	Err     error
}

func (e *UpstreamFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream fetch failed for %s station: status %d: %v", e.Station, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream fetch failed for %s station: %v", e.Station, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }
