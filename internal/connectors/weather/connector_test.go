package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantica-labs/pulse/internal/connectors"
	"github.com/quantica-labs/pulse/internal/core/domain"
)

func fastClient() connectors.ClientConfig {
	return connectors.ClientConfig{
		Timeout:     2 * time.Second,
		MaxRetries:  1,
		BaseDelay:   time.Millisecond,
		RequestsSec: 1000,
	}
}

func TestFetch_NoAPIKeyGoesSynthetic(t *testing.T) {
	conn := New(Config{Client: fastClient()})
	out, err := conn.Fetch(context.Background())
	require.NoError(t, err)

	assert.True(t, out.Degraded)
	assert.Len(t, out.Records, forecastEntries)
	for _, rec := range out.Records {
		assert.True(t, rec.Valid())
		assert.Equal(t, domain.KindWeather, rec.Kind)
	}
}

func TestFetch_ParsesForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		assert.Equal(t, "Oslo", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{"list": [
			{"dt": 1709312400, "main": {"temp": 4.2, "humidity": 81, "pressure": 1012},
			 "wind": {"speed": 3.4}, "weather": [{"description": "light rain"}]},
			{"dt": 1709301600, "main": {"temp": 3.1, "humidity": 85, "pressure": 1011},
			 "wind": {"speed": 2.8}, "weather": []}
		]}`))
	}))
	defer srv.Close()

	conn := New(Config{BaseURL: srv.URL, City: "Oslo", APIKey: "secret", Client: fastClient()})
	out, err := conn.Fetch(context.Background())
	require.NoError(t, err)

	assert.False(t, out.Degraded)
	assert.Zero(t, out.Dropped)
	require.Len(t, out.Records, 2)

	// Entries arrive sorted oldest first regardless of payload order.
	assert.Equal(t, 3.1, out.Records[0].Weather.Temperature)
	assert.Equal(t, "", out.Records[0].Weather.Condition)
	assert.Equal(t, 4.2, out.Records[1].Weather.Temperature)
	assert.Equal(t, "light rain", out.Records[1].Weather.Condition)
	assert.Equal(t, 81.0, out.Records[1].Weather.Humidity)
	assert.Equal(t, 3.4, out.Records[1].Weather.WindSpeed)
}

func TestFetch_DropsEntriesWithoutMainBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list": [
			{"dt": 1709312400, "main": {"temp": 4.2, "humidity": 81, "pressure": 1012}, "wind": {"speed": 1}},
			{"dt": 1709312400},
			{"dt": 0, "main": {"temp": 1, "humidity": 1, "pressure": 1}}
		]}`))
	}))
	defer srv.Close()

	conn := New(Config{BaseURL: srv.URL, APIKey: "secret", Client: fastClient()})
	out, err := conn.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, out.Dropped)
	assert.Len(t, out.Records, 1)
}

func TestFetch_RemoteFailureFallsBackToSynthetic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	conn := New(Config{BaseURL: srv.URL, APIKey: "secret", Client: fastClient()})
	out, err := conn.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Len(t, out.Records, forecastEntries)
}

func TestSynthetic_Deterministic(t *testing.T) {
	anchor := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	a := Synthetic("weather", anchor, 40)
	b := Synthetic("weather", anchor, 40)
	require.Len(t, a, 40)
	assert.Equal(t, a, b)

	for i, rec := range a {
		assert.Equal(t, anchor.Add(time.Duration(i)*3*time.Hour), rec.Timestamp)
		assert.GreaterOrEqual(t, rec.Weather.Humidity, 20.0)
		assert.LessOrEqual(t, rec.Weather.Humidity, 100.0)
		assert.GreaterOrEqual(t, rec.Weather.WindSpeed, 0.0)
		assert.NotEmpty(t, rec.Weather.Condition)
	}
}

func TestSynthetic_SummerWarmerThanWinter(t *testing.T) {
	summer := Synthetic("weather", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), 40)
	winter := Synthetic("weather", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 40)

	meanTemp := func(recs []domain.RawRecord) float64 {
		var sum float64
		for _, r := range recs {
			sum += r.Weather.Temperature
		}
		return sum / float64(len(recs))
	}
	assert.Greater(t, meanTemp(summer), meanTemp(winter))
}
