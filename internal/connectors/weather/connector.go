// Package weather fetches short-range forecast observations from the
// OpenWeatherMap API. The API is key-gated: without a key the connector goes
// straight to its synthetic generator and marks the output degraded.
package weather

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/quantica-labs/pulse/internal/connectors"
	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/logger"
)

const (
	defaultBaseURL = "https://api.openweathermap.org"
	defaultCity    = "London"

	// forecastEntries is how many 3-hourly readings the API returns
	// (5 days x 8 per day). The synthetic generator mirrors it.
	forecastEntries = 40
)

// Config holds the connector settings.
type Config struct {
	Name    string
	BaseURL string
	City    string

	// APIKey authenticates against the API. Empty means synthetic-only.
	APIKey string

	Client connectors.ClientConfig
}

// Connector implements driven.Connector for the weather source.
type Connector struct {
	name    string
	baseURL string
	city    string
	apiKey  string
	client  *connectors.Client
}

var _ driven.Connector = (*Connector)(nil)

// New builds a Connector from cfg.
func New(cfg Config) *Connector {
	name := cfg.Name
	if name == "" {
		name = "weather"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	city := cfg.City
	if city == "" {
		city = defaultCity
	}
	return &Connector{
		name:    name,
		baseURL: baseURL,
		city:    city,
		apiKey:  cfg.APIKey,
		client:  connectors.NewClient(cfg.Client),
	}
}

// Name returns the configured source name.
func (c *Connector) Name() string { return c.name }

// Kind returns the weather schema family.
func (c *Connector) Kind() domain.SourceKind { return domain.KindWeather }

// forecastResponse mirrors /data/2.5/forecast with units=metric.
type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Fetch retrieves the 3-hourly forecast window. Without an API key, or when
// the remote call fails, it falls back to the synthetic generator.
func (c *Connector) Fetch(ctx context.Context) (driven.FetchOutput, error) {
	if c.apiKey == "" {
		return c.fallback(ctx, domain.ErrNoAPIKey)
	}

	q := url.Values{}
	q.Set("q", c.city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	endpoint := fmt.Sprintf("%s/data/2.5/forecast?%s", c.baseURL, q.Encode())

	var resp forecastResponse
	if err := c.client.GetJSON(ctx, c.name, endpoint, &resp); err != nil {
		return c.fallback(ctx, err)
	}

	records, dropped := c.parse(resp)
	if len(records) == 0 {
		return c.fallback(ctx, fmt.Errorf("no parseable entries in response"))
	}
	if dropped > 0 {
		logger.Warn("%s: dropped %d malformed records", c.name, dropped)
	}
	logger.Info("%s: fetched %d records for %s", c.name, len(records), c.city)
	return driven.FetchOutput{Records: records, Dropped: dropped}, nil
}

func (c *Connector) parse(resp forecastResponse) (records []domain.RawRecord, dropped int) {
	for _, entry := range resp.List {
		if entry.Main == nil || entry.Dt <= 0 {
			dropped++
			logger.Debug("%s: %v", c.name, &domain.ValidationError{
				Source: c.name, Reason: "entry missing main block or timestamp",
			})
			continue
		}
		condition := ""
		if len(entry.Weather) > 0 {
			condition = entry.Weather[0].Description
		}
		records = append(records, domain.RawRecord{
			Source:    c.name,
			Kind:      domain.KindWeather,
			Timestamp: time.Unix(entry.Dt, 0).UTC(),
			Weather: &domain.WeatherFields{
				Temperature: entry.Main.Temp,
				Humidity:    entry.Main.Humidity,
				Pressure:    entry.Main.Pressure,
				WindSpeed:   entry.Wind.Speed,
				Condition:   condition,
			},
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, dropped
}

func (c *Connector) fallback(ctx context.Context, cause error) (driven.FetchOutput, error) {
	if ctx.Err() != nil {
		return driven.FetchOutput{}, &domain.ConnectionError{Source: c.name, Err: ctx.Err()}
	}
	logger.Warn("%s: falling back to synthetic data: %v", c.name, cause)
	anchor := time.Now().UTC().Truncate(time.Hour)
	return driven.FetchOutput{
		Records:  Synthetic(c.name, anchor, forecastEntries),
		Degraded: true,
	}, nil
}
