package transform

import (
	"fmt"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

// Epidemic sources carry cumulative daily counts; derived features follow
// the epidemiological conventions: first differences for daily deltas,
// rates against total cases, rolling averages, lags and calendar position.

func epidemicBase(records []domain.RawRecord) *domain.Frame {
	f := domain.NewFrame([]string{"cases", "deaths", "recovered"})
	for _, r := range records {
		// validate() guarantees the payload is present.
		_ = f.AppendRow(r.Timestamp, []float64{r.Epidemic.Cases, r.Epidemic.Deaths, r.Epidemic.Recovered})
	}
	return f
}

func epidemicFeatures(f *domain.Frame, cfg Config) error {
	cases, err := f.Column("cases")
	if err != nil {
		return err
	}
	deaths, err := f.Column("deaths")
	if err != nil {
		return err
	}
	recovered, err := f.Column("recovered")
	if err != nil {
		return err
	}

	w := cfg.MovingAverageWindow
	cols := []struct {
		name   string
		values []float64
	}{
		{"new_cases", clipBelow(diff(cases), 0)},
		{"new_deaths", clipBelow(diff(deaths), 0)},
		{"new_recovered", clipBelow(diff(recovered), 0)},
		{"case_fatality_rate", scale(ratio(deaths, cases), 100)},
		{"recovery_rate", scale(ratio(recovered, cases), 100)},
		{fmt.Sprintf("cases_ma%d", w), movingAverage(cases, w)},
		{fmt.Sprintf("deaths_ma%d", w), movingAverage(deaths, w)},
		{"cases_growth", growthRate(cases)},
		{"deaths_growth", growthRate(deaths)},
		{"cases_lag1", lag(cases, 1)},
		{"cases_lag7", lag(cases, 7)},
		{"deaths_lag1", lag(deaths, 1)},
		{"day_of_year", dayOfYear(f.Timestamps)},
		{"month", months(f.Timestamps)},
	}
	for _, c := range cols {
		if err := f.AddColumn(c.name, c.values); err != nil {
			return err
		}
	}
	return nil
}

// scale multiplies every value by k.
func scale(values []float64, k float64) []float64 {
	for i := range values {
		values[i] *= k
	}
	return values
}
