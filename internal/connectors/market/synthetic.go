package market

import (
	"math"
	"math/rand"
	"time"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

const syntheticSeed = 303

// Synthetic generates days of plausible daily bars ending at anchor: a
// geometric random walk with mild drift, intraday ranges derived from the
// walk, and volume inversely tied to the day's move. Deterministic for a
// given anchor and length. Weekends are skipped like real trading calendars.
func Synthetic(source string, anchor time.Time, days int) []domain.RawRecord {
	rng := rand.New(rand.NewSource(syntheticSeed))
	records := make([]domain.RawRecord, 0, days)

	price := 420.0
	ts := anchor.AddDate(0, 0, -days*7/5-4)
	for len(records) < days {
		ts = ts.AddDate(0, 0, 1)
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		ret := 0.0003 + rng.NormFloat64()*0.012
		open := price
		close := open * math.Exp(ret)
		spread := math.Abs(rng.NormFloat64()) * 0.006 * open
		high := math.Max(open, close) + spread
		low := math.Min(open, close) - spread
		volume := math.Round(8e7 * (1 + 10*math.Abs(ret)) * (0.8 + 0.4*rng.Float64()))

		records = append(records, domain.RawRecord{
			Source:    source,
			Kind:      domain.KindMarket,
			Timestamp: ts,
			Market: &domain.MarketFields{
				Open:   round2(open),
				High:   round2(high),
				Low:    round2(low),
				Close:  round2(close),
				Volume: volume,
			},
		})
		price = close
	}
	return records
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
