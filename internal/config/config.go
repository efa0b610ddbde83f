// Package config holds all service settings, populated from environment
// variables (with a .env file as a lower-priority fallback for local
// development). Configuration is loaded once at startup and immutable
// thereafter; the prediction model receives its thresholds as an explicit
// value, never via globals.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/inletlabs/kitecast/internal/domain"
)

// Config is the top-level service configuration.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Target site and pressure-gradient reference station.
	// Defaults: Squamish spit and Vancouver International (YVR).
	SiteName string  `envconfig:"SITE_NAME" default:"squamish"`
	SiteLat  float64 `envconfig:"SITE_LAT" default:"49.7016"`
	SiteLon  float64 `envconfig:"SITE_LON" default:"-123.1558"`
	RefLat   float64 `envconfig:"REF_LAT" default:"49.1967"`
	RefLon   float64 `envconfig:"REF_LON" default:"-123.1815"`
	Timezone string  `envconfig:"SITE_TIMEZONE" default:"America/Vancouver"`

	// Upstream Open-Meteo endpoints and fetch-boundary tuning.
	ForecastBaseURL string        `envconfig:"OPENMETEO_FORECAST_URL" default:"https://api.open-meteo.com/v1/forecast"`
	ArchiveBaseURL  string        `envconfig:"OPENMETEO_ARCHIVE_URL" default:"https://archive-api.open-meteo.com/v1/archive"`
	FetchTimeout    time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	FetchCacheTTL   time.Duration `envconfig:"FETCH_CACHE_TTL" default:"15m"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"30m"`

	// Kafka window-digest publishing (off by default).
	KafkaEnabled     bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaDigestTopic string   `envconfig:"KAFKA_DIGEST_TOPIC" default:"kite-window-digests"`

	// Prediction model thresholds and factors (see domain.ModelConfig).
	KiteableThresholdKn float64 `envconfig:"KITEABLE_THRESHOLD_KN" default:"15"`
	MinSessionHours     int     `envconfig:"MIN_SESSION_HOURS" default:"2"`
	KiteHourStart       int     `envconfig:"KITE_HOUR_START" default:"10"`
	KiteHourEnd         int     `envconfig:"KITE_HOUR_END" default:"21"`
	StormRainMM         float64 `envconfig:"STORM_RAIN_MM" default:"2.0"`
	StormPressureHPa    float64 `envconfig:"STORM_PRESSURE_HPA" default:"1008"`
	HeatBubbleTempC     float64 `envconfig:"HEAT_BUBBLE_TEMP_C" default:"31"`
	GustFactor          float64 `envconfig:"GUST_FACTOR" default:"1.35"`
	LullFactor          float64 `envconfig:"LULL_FACTOR" default:"0.7"`
	RainSteadyFactor    float64 `envconfig:"RAIN_STEADY_FACTOR" default:"0.6"`
	RainGustFactor      float64 `envconfig:"RAIN_GUST_FACTOR" default:"0.8"`
	AccuracyMAEKn       float64 `envconfig:"ACCURACY_MAE_KN" default:"5"`
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file, if present, fills in variables the environment does not
// already define.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SiteLat < -90 || c.SiteLat > 90 || c.RefLat < -90 || c.RefLat > 90 {
		return errors.New("latitude must be within [-90, 90]")
	}
	if c.SiteLon < -180 || c.SiteLon > 180 || c.RefLon < -180 || c.RefLon > 180 {
		return errors.New("longitude must be within [-180, 180]")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid SITE_TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.KiteableThresholdKn <= 0 {
		return errors.New("KITEABLE_THRESHOLD_KN must be positive")
	}
	if c.MinSessionHours < 1 {
		return errors.New("MIN_SESSION_HOURS must be at least 1")
	}
	if c.KiteHourStart < 0 || c.KiteHourEnd > 23 || c.KiteHourStart > c.KiteHourEnd {
		return errors.New("kiteable hour range must satisfy 0 <= start <= end <= 23")
	}
	if c.GustFactor <= 0 || c.LullFactor <= 0 || c.RainSteadyFactor <= 0 || c.RainGustFactor <= 0 {
		return errors.New("model factors must be positive")
	}
	if c.RefreshInterval <= 0 {
		return errors.New("REFRESH_INTERVAL must be positive")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if c.KafkaEnabled && c.KafkaDigestTopic == "" {
		return errors.New("KAFKA_ENABLED is true but KAFKA_DIGEST_TOPIC is empty")
	}
	return nil
}

// Location returns the parsed site time zone. Validity is checked in Load.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ModelConfig assembles the immutable model configuration passed into every
// engine call.
func (c *Config) ModelConfig() domain.ModelConfig {
	return domain.ModelConfig{
		KiteableThresholdKn: c.KiteableThresholdKn,
		MinSessionHours:     c.MinSessionHours,
		KiteHourStart:       c.KiteHourStart,
		KiteHourEnd:         c.KiteHourEnd,
		StormRainMM:         c.StormRainMM,
		StormPressureHPa:    c.StormPressureHPa,
		HeatBubbleTempC:     c.HeatBubbleTempC,
		GustFactor:          c.GustFactor,
		LullFactor:          c.LullFactor,
		RainSteadyFactor:    c.RainSteadyFactor,
		RainGustFactor:      c.RainGustFactor,
		AccuracyMAEKn:       c.AccuracyMAEKn,
	}
}
