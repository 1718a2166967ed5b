package transform

import "math"

// Shared numeric feature kernels. All of them return one value per input
// row: warm-up positions are backfilled with the earliest computable value
// (or a defined neutral value) so no derived column ever carries a missing
// entry.

// movingAverage computes the rolling mean over the trailing window. Partial
// windows at the start use however many values exist.
func movingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// movingStd computes the rolling population standard deviation over the
// trailing window. A single-element window has deviation 0.
func movingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		n := float64(i - lo + 1)
		var sum float64
		for j := lo; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / n
		var sq float64
		for j := lo; j <= i; j++ {
			d := values[j] - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / n)
	}
	return out
}

// growthRate computes (current − previous) / previous per row. A zero
// previous value yields 0 rather than an infinity, and the first row has no
// previous value so it is 0 as well.
func growthRate(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (values[i] - prev) / prev
	}
	return out
}

// diff computes first differences, with the first row backfilled to 0.
func diff(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}
	return out
}

// lag shifts values back by k rows, backfilling the warm-up rows with the
// earliest value.
func lag(values []float64, k int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		j := i - k
		if j < 0 {
			j = 0
		}
		out[i] = values[j]
	}
	return out
}

// ema computes an exponential moving average with the conventional
// 2/(span+1) smoothing, seeded from the first value.
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// clipBelow clamps values below floor to floor, in place.
func clipBelow(values []float64, floor float64) []float64 {
	for i, v := range values {
		if v < floor {
			values[i] = floor
		}
	}
	return values
}

// ratio divides a by b element-wise, yielding 0 where b is 0.
func ratio(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		if b[i] == 0 {
			continue
		}
		out[i] = a[i] / b[i]
	}
	return out
}
