package transform

import "time"

// Calendar features derive from each row's own timestamp, never from the
// wall clock, keeping the transform idempotent.

func hours(ts []time.Time) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = float64(t.Hour())
	}
	return out
}

func daysOfWeek(ts []time.Time) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = float64(t.Weekday())
	}
	return out
}

func dayOfYear(ts []time.Time) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = float64(t.YearDay())
	}
	return out
}

func months(ts []time.Time) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = float64(t.Month())
	}
	return out
}

func quarters(ts []time.Time) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = float64((int(t.Month())-1)/3 + 1)
	}
	return out
}

func isSummer(ts []time.Time) []float64 {
	return indicator(ts, func(t time.Time) bool {
		m := t.Month()
		return m >= time.June && m <= time.August
	})
}

func isWinter(ts []time.Time) []float64 {
	return indicator(ts, func(t time.Time) bool {
		m := t.Month()
		return m == time.December || m <= time.February
	})
}

func isWeekend(ts []time.Time) []float64 {
	return indicator(ts, func(t time.Time) bool {
		d := t.Weekday()
		return d == time.Saturday || d == time.Sunday
	})
}

func indicator(ts []time.Time, pred func(time.Time) bool) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		if pred(t) {
			out[i] = 1
		}
	}
	return out
}
