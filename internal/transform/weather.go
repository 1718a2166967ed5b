package transform

import (
	"fmt"
	"sort"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

// Weather sources are sub-daily, so calendar position (hour, weekday,
// season) carries most of the seasonal structure. The free-text condition is
// label-encoded deterministically: codes are assigned by sorted unique
// condition string, so the same input always encodes the same way.

func weatherBase(records []domain.RawRecord) *domain.Frame {
	codes := conditionCodes(records)
	f := domain.NewFrame([]string{"temperature", "humidity", "pressure", "wind_speed", "weather_code"})
	for _, r := range records {
		w := r.Weather
		_ = f.AppendRow(r.Timestamp, []float64{
			w.Temperature, w.Humidity, w.Pressure, w.WindSpeed, float64(codes[w.Condition]),
		})
	}
	return f
}

func weatherFeatures(f *domain.Frame, cfg Config) error {
	temp, err := f.Column("temperature")
	if err != nil {
		return err
	}

	w := cfg.MovingAverageWindow
	cols := []struct {
		name   string
		values []float64
	}{
		{"temp_fahrenheit", fahrenheit(temp)},
		{fmt.Sprintf("temperature_ma%d", w), movingAverage(temp, w)},
		{"temperature_growth", growthRate(temp)},
		{"hour", hours(f.Timestamps)},
		{"day_of_week", daysOfWeek(f.Timestamps)},
		{"month", months(f.Timestamps)},
		{"is_summer", isSummer(f.Timestamps)},
		{"is_winter", isWinter(f.Timestamps)},
		{"is_weekend", isWeekend(f.Timestamps)},
	}
	for _, c := range cols {
		if err := f.AddColumn(c.name, c.values); err != nil {
			return err
		}
	}
	return nil
}

func fahrenheit(celsius []float64) []float64 {
	out := make([]float64, len(celsius))
	for i, c := range celsius {
		out[i] = c*9/5 + 32
	}
	return out
}

// conditionCodes assigns each distinct condition string a stable code by
// lexicographic order.
func conditionCodes(records []domain.RawRecord) map[string]int {
	seen := map[string]bool{}
	for _, r := range records {
		if r.Weather != nil {
			seen[r.Weather.Condition] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	codes := make(map[string]int, len(names))
	for i, name := range names {
		codes[name] = i
	}
	return codes
}
