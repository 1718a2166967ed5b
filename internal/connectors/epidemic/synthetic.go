package epidemic

import (
	"math"
	"math/rand"
	"time"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

const syntheticSeed = 101

// Synthetic generates days of plausible cumulative counts ending at anchor.
// The generator is deterministic for a given anchor and length: a damped
// growth curve with a weekly reporting wave and seeded noise, so downstream
// stages always have data to exercise even with every source offline.
func Synthetic(source string, anchor time.Time, days int) []domain.RawRecord {
	rng := rand.New(rand.NewSource(syntheticSeed))
	records := make([]domain.RawRecord, 0, days)

	var cases, deaths, recovered float64
	cases = 1000
	for i := 0; i < days; i++ {
		ts := anchor.AddDate(0, 0, i-days+1)

		// Weekly wave models weekend reporting dips.
		wave := 1 + 0.3*math.Sin(2*math.Pi*float64(i)/7)
		newCases := (500 + 200*wave + rng.NormFloat64()*50) * (1 - float64(i)/float64(2*days))
		if newCases < 0 {
			newCases = 0
		}
		newDeaths := math.Max(0, newCases*(0.015+rng.NormFloat64()*0.002))
		newRecovered := math.Max(0, newCases*(0.9+rng.NormFloat64()*0.05))
		cases += math.Round(newCases)
		deaths += math.Round(newDeaths)
		recovered += math.Round(newRecovered)
		if recovered > cases {
			recovered = cases
		}

		records = append(records, domain.RawRecord{
			Source:    source,
			Kind:      domain.KindEpidemic,
			Timestamp: ts,
			Epidemic: &domain.EpidemicFields{
				Cases:     cases,
				Deaths:    deaths,
				Recovered: recovered,
			},
		})
	}
	return records
}
