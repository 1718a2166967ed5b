// Package market fetches daily OHLCV quote bars from the Alpha Vantage API.
// The API is key-gated and returns all numeric fields as strings; coercion
// happens here so the rest of the pipeline only sees floats.
package market

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/quantica-labs/pulse/internal/connectors"
	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/logger"
)

const (
	defaultBaseURL = "https://www.alphavantage.co"
	defaultSymbol  = "SPY"

	dateLayout = "2006-01-02"

	// syntheticDays matches the API's compact output size.
	syntheticDays = 100
)

// Config holds the connector settings.
type Config struct {
	Name    string
	BaseURL string
	Symbol  string

	// APIKey authenticates against the API. Empty means synthetic-only.
	APIKey string

	Client connectors.ClientConfig
}

// Connector implements driven.Connector for the market source.
type Connector struct {
	name    string
	baseURL string
	symbol  string
	apiKey  string
	client  *connectors.Client
}

var _ driven.Connector = (*Connector)(nil)

// New builds a Connector from cfg.
func New(cfg Config) *Connector {
	name := cfg.Name
	if name == "" {
		name = "market"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	symbol := cfg.Symbol
	if symbol == "" {
		symbol = defaultSymbol
	}
	return &Connector{
		name:    name,
		baseURL: baseURL,
		symbol:  symbol,
		apiKey:  cfg.APIKey,
		client:  connectors.NewClient(cfg.Client),
	}
}

// Name returns the configured source name.
func (c *Connector) Name() string { return c.name }

// Kind returns the market schema family.
func (c *Connector) Kind() domain.SourceKind { return domain.KindMarket }

// dailyResponse mirrors the TIME_SERIES_DAILY payload. The API signals rate
// limiting with a 200 response carrying a Note instead of data.
type dailyResponse struct {
	Note       string              `json:"Note"`
	ErrMessage string              `json:"Error Message"`
	Series     map[string]dailyBar `json:"Time Series (Daily)"`
}

type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// Fetch retrieves the most recent daily bars for the configured symbol.
// Without an API key, or when the remote call fails, it falls back to the
// synthetic generator.
func (c *Connector) Fetch(ctx context.Context) (driven.FetchOutput, error) {
	if c.apiKey == "" {
		return c.fallback(ctx, domain.ErrNoAPIKey)
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", c.symbol)
	q.Set("outputsize", "compact")
	q.Set("apikey", c.apiKey)
	endpoint := fmt.Sprintf("%s/query?%s", c.baseURL, q.Encode())

	var resp dailyResponse
	if err := c.client.GetJSON(ctx, c.name, endpoint, &resp); err != nil {
		return c.fallback(ctx, err)
	}
	if resp.Note != "" {
		return c.fallback(ctx, &domain.RateLimitError{Source: c.name})
	}
	if resp.ErrMessage != "" {
		return c.fallback(ctx, &domain.ConnectionError{
			Source: c.name, Err: fmt.Errorf("api error: %s", resp.ErrMessage),
		})
	}

	records, dropped := c.parse(resp.Series)
	if len(records) == 0 {
		return c.fallback(ctx, fmt.Errorf("no parseable bars in response"))
	}
	if dropped > 0 {
		logger.Warn("%s: dropped %d malformed records", c.name, dropped)
	}
	logger.Info("%s: fetched %d bars for %s", c.name, len(records), c.symbol)
	return driven.FetchOutput{Records: records, Dropped: dropped}, nil
}

func (c *Connector) parse(series map[string]dailyBar) (records []domain.RawRecord, dropped int) {
	for key, bar := range series {
		ts, err := time.Parse(dateLayout, key)
		if err != nil {
			dropped++
			logger.Debug("%s: %v", c.name, &domain.ValidationError{
				Source: c.name, Reason: fmt.Sprintf("unparseable date key %q", key),
			})
			continue
		}
		fields, err := coerceBar(bar)
		if err != nil {
			dropped++
			logger.Debug("%s: %v", c.name, &domain.ValidationError{
				Source: c.name, Reason: fmt.Sprintf("%s: %v", key, err),
			})
			continue
		}
		records = append(records, domain.RawRecord{
			Source:    c.name,
			Kind:      domain.KindMarket,
			Timestamp: ts.UTC(),
			Market:    fields,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, dropped
}

func coerceBar(bar dailyBar) (*domain.MarketFields, error) {
	fields := &domain.MarketFields{}
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open", bar.Open, &fields.Open},
		{"high", bar.High, &fields.High},
		{"low", bar.Low, &fields.Low},
		{"close", bar.Close, &fields.Close},
		{"volume", bar.Volume, &fields.Volume},
	} {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s=%q not numeric", f.name, f.raw)
		}
		if v < 0 {
			return nil, fmt.Errorf("field %s=%q negative", f.name, f.raw)
		}
		*f.dst = v
	}
	return fields, nil
}

func (c *Connector) fallback(ctx context.Context, cause error) (driven.FetchOutput, error) {
	if ctx.Err() != nil {
		return driven.FetchOutput{}, &domain.ConnectionError{Source: c.name, Err: ctx.Err()}
	}
	logger.Warn("%s: falling back to synthetic data: %v", c.name, cause)
	anchor := time.Now().UTC().Truncate(24 * time.Hour)
	return driven.FetchOutput{
		Records:  Synthetic(c.name, anchor, syntheticDays),
		Degraded: true,
	}, nil
}
