//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inletlabs/kitecast/internal/adapter/kafka"
	"github.com/inletlabs/kitecast/internal/domain"
	"github.com/inletlabs/kitecast/internal/observability"
	"github.com/inletlabs/kitecast/internal/pipeline"
)

const testDigestTopic = "test-kite-window-digests"

// digestMessage holds a deserialized message read from the digest topic.
type digestMessage struct {
	Window  domain.KiteWindow
	Key     string
	Headers map[string]string
}

// readDigest reads a single message from the digest consumer and deserializes it.
func readDigest(ctx context.Context, t *testing.T, consumer *kafkago.Reader) digestMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from digest topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var window domain.KiteWindow
	require.NoError(t, json.Unmarshal(msg.Value, &window), "unmarshal digest message")

	return digestMessage{
		Window:  window,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

func newDigestConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testDigestTopic,
		GroupID:     fmt.Sprintf("test-digest-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestDigestWriterRoundTrip verifies that published kite windows arrive on the
// digest topic with date keys and status headers intact.
func TestDigestWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testDigestTopic)

	writer := kafka.NewWriter([]string{broker}, testDigestTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	windows := []domain.KiteWindow{
		{
			Date:         time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC),
			Found:        true,
			StartHour:    12,
			EndHour:      17,
			PeakSteadyKn: 24.5,
			PeakHour:     14,
		},
		{
			Date:  time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
			Found: false,
			Storm: true,
		},
	}
	require.NoError(t, writer.PublishWindows(ctx, windows))

	consumer := newDigestConsumer(t, broker)

	first := readDigest(ctx, t, consumer)
	assert.Equal(t, "2026-07-14", first.Key)
	assert.Equal(t, "true", first.Headers["session_found"])
	assert.Equal(t, "false", first.Headers["storm"])
	assert.True(t, first.Window.Found)
	assert.Equal(t, 12, first.Window.StartHour)
	assert.Equal(t, 17, first.Window.EndHour)
	assert.Equal(t, 24.5, first.Window.PeakSteadyKn)

	second := readDigest(ctx, t, consumer)
	assert.Equal(t, "2026-07-15", second.Key)
	assert.Equal(t, "false", second.Headers["session_found"])
	assert.Equal(t, "true", second.Headers["storm"])
	assert.True(t, second.Window.Storm)
}

// fixedFetcher returns a canned series regardless of the request.
type fixedFetcher struct {
	series domain.StationSeries
}

func (f *fixedFetcher) FetchHourly(_ context.Context, _, _ float64, _ []string, _ domain.FetchMode, _ domain.DateRange) (domain.StationSeries, error) {
	return f.series, nil
}

// TestForecasterPublishesDigests wires the refresh cycle to a real broker and
// verifies one digest per forecast day lands on the topic.
func TestForecasterPublishesDigests(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testDigestTopic)

	start := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)
	site := domain.StationSeries{Fields: map[string][]float64{}}
	ref := domain.StationSeries{Fields: map[string][]float64{}}
	for i := 0; i < 48; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		site.Times = append(site.Times, ts)
		ref.Times = append(ref.Times, ts)
		site.Fields[domain.FieldTemperature] = append(site.Fields[domain.FieldTemperature], 22)
		site.Fields[domain.FieldPressure] = append(site.Fields[domain.FieldPressure], 1010)
		site.Fields[domain.FieldPrecipitation] = append(site.Fields[domain.FieldPrecipitation], 0)
		site.Fields[domain.FieldWindSpeed] = append(site.Fields[domain.FieldWindSpeed], 8)
		site.Fields[domain.FieldWindGust] = append(site.Fields[domain.FieldWindGust], 12)
		site.Fields[domain.FieldWindDirection] = append(site.Fields[domain.FieldWindDirection], 180)
		ref.Fields[domain.FieldPressure] = append(ref.Fields[domain.FieldPressure], 1015)
	}

	writer := kafka.NewWriter([]string{broker}, testDigestTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	forecaster := pipeline.NewForecaster(
		&fixedFetcher{series: site},
		&fixedFetcher{series: ref},
		pipeline.ForecasterConfig{
			Site:     pipeline.Site{Name: "squamish", Lat: 49.7016, Lon: -123.1558, Timezone: "UTC"},
			RefLat:   49.1967,
			RefLon:   -123.1815,
			Model:    domain.DefaultModelConfig(),
			Interval: 30 * time.Minute,
		},
		writer, discardLogger(), observability.NewMetricsForTesting())

	require.NoError(t, forecaster.Refresh(ctx))

	consumer := newDigestConsumer(t, broker)

	for _, wantDate := range []string{"2026-07-14", "2026-07-15"} {
		dm := readDigest(ctx, t, consumer)
		assert.Equal(t, wantDate, dm.Key)
		assert.Equal(t, "true", dm.Headers["session_found"])
		assert.True(t, dm.Window.Found)
	}
}
