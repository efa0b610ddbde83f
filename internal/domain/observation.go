package domain

import "time"

// Open-Meteo hourly field names. Series returned by a SeriesFetcher are keyed
// by these.
const (
	FieldTemperature   = "temperature_2m"
	FieldPressure      = "pressure_msl"
	FieldPrecipitation = "precipitation"
	FieldWindSpeed     = "windspeed_10m"
	FieldWindGust      = "windgusts_10m"
	FieldWindDirection = "winddirection_10m"
)

// SiteFields is the full variable set fetched for the target site.
var SiteFields = []string{
	FieldTemperature,
	FieldPressure,
	FieldPrecipitation,
	FieldWindSpeed,
	FieldWindGust,
	FieldWindDirection,
}

// ReferenceFields is the pressure-only set fetched for the reference station.
var ReferenceFields = []string{FieldPressure}

// StationSeries is a raw hourly series for one station: parallel value slices
// keyed by field name, one value per timestamp.
type StationSeries struct {
	Times  []time.Time
	Fields map[string][]float64
}

// HourlyObservation is the canonical merged record for one site-local hour.
type HourlyObservation struct {
	Time             time.Time `json:"time"`
	TemperatureC     float64   `json:"temperature_c"`
	SitePressureHPa  float64   `json:"site_pressure_hpa"`
	RefPressureHPa   float64   `json:"ref_pressure_hpa"`
	PrecipitationMM  float64   `json:"precipitation_mm"`
	BaseWindKn       float64   `json:"base_wind_kn"`
	GustKn           float64   `json:"gust_kn"`
	WindDirectionDeg float64   `json:"wind_direction_deg"`

	// GradientHPa = RefPressureHPa − SitePressureHPa, the thermal driver.
	GradientHPa float64 `json:"gradient_hpa"`
}

// Status classifies one hour's predicted conditions.
type Status string

const (
	StatusLight       Status = "light"
	StatusGood        Status = "good"
	StatusExcellent   Status = "excellent"
	StatusHeatBubble  Status = "heat_bubble"
	StatusRainRisk    Status = "rain_risk"
	StatusDangerStorm Status = "danger_storm"
)

// Prediction is the model output for one hour. Invariant after the cascade
// clamp: 0 ≤ LullKn ≤ SteadyKn ≤ GustKn.
type Prediction struct {
	Time     time.Time `json:"time"`
	LullKn   float64   `json:"lull_kn"`
	SteadyKn float64   `json:"steady_kn"`
	GustKn   float64   `json:"gust_kn"`
	Status   Status    `json:"status"`
}

// KiteWindow summarizes one day's rideable period. StartHour and EndHour are
// site-local hours and only meaningful when Found is true.
type KiteWindow struct {
	Date         time.Time `json:"date"`
	Found        bool      `json:"found"`
	StartHour    int       `json:"start_hour,omitempty"`
	EndHour      int       `json:"end_hour,omitempty"`
	PeakSteadyKn float64   `json:"peak_steady_kn"`
	PeakHour     int       `json:"peak_hour"`
	Storm        bool      `json:"storm"`
}

// HourlyResidual is one hour's prediction error against the observed wind.
type HourlyResidual struct {
	Hour        int     `json:"hour"`
	PredictedKn float64 `json:"predicted_kn"`
	ObservedKn  float64 `json:"observed_kn"`
	ResidualKn  float64 `json:"residual_kn"`
}

// AccuracyReport scores one day of predictions against observed wind.
type AccuracyReport struct {
	Date        time.Time        `json:"date"`
	MAE         float64          `json:"mae_kn"`
	Residuals   []HourlyResidual `json:"residuals"`
	Accurate    bool             `json:"accurate"`
	Verdict     string           `json:"verdict"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Accuracy verdicts.
const (
	VerdictAccurate = "accurate"
	VerdictMissed   = "model missed"
)
