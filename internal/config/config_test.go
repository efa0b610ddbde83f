package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "squamish", cfg.SiteName)
	assert.InDelta(t, 49.7016, cfg.SiteLat, 1e-9)
	assert.InDelta(t, -123.1558, cfg.SiteLon, 1e-9)
	assert.InDelta(t, 49.1967, cfg.RefLat, 1e-9)
	assert.Equal(t, "America/Vancouver", cfg.Timezone)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.ForecastBaseURL)
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive", cfg.ArchiveBaseURL)
	assert.Equal(t, 15*time.Minute, cfg.FetchCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "kite-window-digests", cfg.KafkaDigestTopic)
	assert.Equal(t, 15.0, cfg.KiteableThresholdKn)
	assert.Equal(t, 2, cfg.MinSessionHours)
	assert.Equal(t, 10, cfg.KiteHourStart)
	assert.Equal(t, 21, cfg.KiteHourEnd)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SITE_NAME", "nitinat")
	t.Setenv("SITE_LAT", "48.6705")
	t.Setenv("SITE_LON", "-124.8543")
	t.Setenv("KITEABLE_THRESHOLD_KN", "18")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "nitinat", cfg.SiteName)
	assert.InDelta(t, 48.6705, cfg.SiteLat, 1e-9)
	assert.Equal(t, 18.0, cfg.KiteableThresholdKn)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"latitude out of range", "SITE_LAT", "123.4"},
		{"longitude out of range", "REF_LON", "-200"},
		{"unknown time zone", "SITE_TIMEZONE", "Mars/Olympus_Mons"},
		{"non-positive threshold", "KITEABLE_THRESHOLD_KN", "0"},
		{"zero session hours", "MIN_SESSION_HOURS", "0"},
		{"inverted hour range", "KITE_HOUR_START", "22"},
		{"hour end past midnight", "KITE_HOUR_END", "24"},
		{"zero gust factor", "GUST_FACTOR", "0"},
		{"zero refresh interval", "REFRESH_INTERVAL", "0s"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestKafkaValidation(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_DIGEST_TOPIC", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestModelConfig(t *testing.T) {
	t.Setenv("KITEABLE_THRESHOLD_KN", "17")
	t.Setenv("HEAT_BUBBLE_TEMP_C", "33")

	cfg, err := Load()
	require.NoError(t, err)

	model := cfg.ModelConfig()
	assert.Equal(t, 17.0, model.KiteableThresholdKn)
	assert.Equal(t, 33.0, model.HeatBubbleTempC)
	assert.Equal(t, 1.35, model.GustFactor)
	assert.Equal(t, 0.7, model.LullFactor)
}

func TestLocation(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	loc := cfg.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "America/Vancouver", loc.String())
}
