package weather

import (
	"math"
	"math/rand"
	"time"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

const syntheticSeed = 202

var syntheticConditions = []string{
	"clear sky", "few clouds", "scattered clouds", "light rain", "overcast clouds",
}

// Synthetic generates a window of 3-hourly readings starting at anchor, shaped
// like a forecast window: a diurnal temperature cycle around a seasonal mean
// with seeded noise. Deterministic for a given anchor and length.
func Synthetic(source string, anchor time.Time, entries int) []domain.RawRecord {
	rng := rand.New(rand.NewSource(syntheticSeed))
	records := make([]domain.RawRecord, 0, entries)

	// Seasonal mean peaks mid July in the northern hemisphere.
	yearFrac := float64(anchor.YearDay()) / 365
	seasonal := 12 + 8*math.Sin(2*math.Pi*(yearFrac-0.22))

	for i := 0; i < entries; i++ {
		ts := anchor.Add(time.Duration(i) * 3 * time.Hour)
		hourFrac := float64(ts.Hour()) / 24

		// Diurnal cycle bottoms out around 03:00, peaks around 15:00.
		diurnal := 5 * math.Sin(2*math.Pi*(hourFrac-0.375))
		temp := seasonal + diurnal + rng.NormFloat64()*1.5

		records = append(records, domain.RawRecord{
			Source:    source,
			Kind:      domain.KindWeather,
			Timestamp: ts,
			Weather: &domain.WeatherFields{
				Temperature: math.Round(temp*10) / 10,
				Humidity:    clamp(70-diurnal*2+rng.NormFloat64()*5, 20, 100),
				Pressure:    math.Round(1013 + 5*math.Sin(float64(i)/8) + rng.NormFloat64()*2),
				WindSpeed:   math.Max(0, 4+rng.NormFloat64()*2),
				Condition:   syntheticConditions[rng.Intn(len(syntheticConditions))],
			},
		})
	}
	return records
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
