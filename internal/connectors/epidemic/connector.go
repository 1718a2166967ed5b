// Package epidemic fetches daily cumulative epidemiological counts from the
// disease.sh historical API. The API is key-less; the connector degrades to
// its synthetic generator only when the remote call fails.
package epidemic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/quantica-labs/pulse/internal/connectors"
	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/logger"
)

const (
	defaultBaseURL = "https://disease.sh"
	defaultDays    = 90

	// dateLayout matches the API's M/D/YY date keys.
	dateLayout = "1/2/06"
)

// Config holds the connector settings.
type Config struct {
	// Name keys snapshots and models built from this source.
	Name string

	// BaseURL overrides the API host. Used in tests.
	BaseURL string

	// Days is the trailing window to request.
	Days int

	Client connectors.ClientConfig
}

// Connector implements driven.Connector for the epidemic source.
type Connector struct {
	name    string
	baseURL string
	days    int
	client  *connectors.Client
}

var _ driven.Connector = (*Connector)(nil)

// New builds a Connector from cfg.
func New(cfg Config) *Connector {
	name := cfg.Name
	if name == "" {
		name = "epidemic"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	days := cfg.Days
	if days <= 0 {
		days = defaultDays
	}
	return &Connector{
		name:    name,
		baseURL: baseURL,
		days:    days,
		client:  connectors.NewClient(cfg.Client),
	}
}

// Name returns the configured source name.
func (c *Connector) Name() string { return c.name }

// Kind returns the epidemic schema family.
func (c *Connector) Kind() domain.SourceKind { return domain.KindEpidemic }

// historyResponse mirrors /v3/covid-19/historical/all. Values are cumulative
// counts keyed by M/D/YY dates.
type historyResponse struct {
	Cases     map[string]float64 `json:"cases"`
	Deaths    map[string]float64 `json:"deaths"`
	Recovered map[string]float64 `json:"recovered"`
}

// Fetch retrieves the trailing window of daily counts. On failure it falls
// back to the synthetic generator and marks the output degraded.
func (c *Connector) Fetch(ctx context.Context) (driven.FetchOutput, error) {
	url := fmt.Sprintf("%s/v3/covid-19/historical/all?lastdays=%d", c.baseURL, c.days)

	var resp historyResponse
	if err := c.client.GetJSON(ctx, c.name, url, &resp); err != nil {
		return c.fallback(ctx, err)
	}

	records, dropped := c.parse(resp)
	if len(records) == 0 {
		return c.fallback(ctx, fmt.Errorf("no parseable records in response"))
	}
	if dropped > 0 {
		logger.Warn("%s: dropped %d malformed records", c.name, dropped)
	}
	logger.Info("%s: fetched %d records", c.name, len(records))
	return driven.FetchOutput{Records: records, Dropped: dropped}, nil
}

func (c *Connector) parse(resp historyResponse) (records []domain.RawRecord, dropped int) {
	for key, cases := range resp.Cases {
		ts, err := time.Parse(dateLayout, key)
		if err != nil {
			dropped++
			logger.Debug("%s: %v", c.name, &domain.ValidationError{
				Source: c.name, Reason: fmt.Sprintf("unparseable date key %q", key),
			})
			continue
		}
		if cases < 0 {
			dropped++
			continue
		}
		deaths, ok := resp.Deaths[key]
		if !ok {
			// Forward-filled downstream.
			deaths = math.NaN()
		}
		recovered, ok := resp.Recovered[key]
		if !ok {
			recovered = math.NaN()
		}
		records = append(records, domain.RawRecord{
			Source:    c.name,
			Kind:      domain.KindEpidemic,
			Timestamp: ts.UTC(),
			Epidemic: &domain.EpidemicFields{
				Cases:     cases,
				Deaths:    deaths,
				Recovered: recovered,
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
	anchor := time.Now().UTC().Truncate(24 * time.Hour)
	return driven.FetchOutput{
		Records:  Synthetic(c.name, anchor, c.days),
		Degraded: true,
	}, nil
}
