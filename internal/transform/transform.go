// Package transform turns raw source records into processed feature frames.
// It applies, in order: type-checked normalization (forward-fill of missing
// values, outlier clipping), then per-kind feature derivation (moving
// averages, growth rates, technical indicators, calendar features).
//
// Transforms are pure: no randomness and no wall clock. The same input
// sequence always yields byte-identical output, so training and inference
// see the same feature schema.
package transform

import (
	"fmt"
	"math"
	"sort"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/logger"
)

// Config controls normalization and feature derivation.
type Config struct {
	// MovingAverageWindow is the window for per-column moving averages.
	MovingAverageWindow int

	// ZScoreBand clips values further than this many standard deviations
	// from the column mean.
	ZScoreBand float64
}

// DefaultConfig returns the standard transform settings.
func DefaultConfig() Config {
	return Config{
		MovingAverageWindow: 7,
		ZScoreBand:          3,
	}
}

// Result is the output of one transform: the normalized base frame, the
// processed frame with derived features, and the count of records dropped
// for failing validation.
type Result struct {
	Raw       *domain.Frame
	Processed *domain.Frame
	Dropped   int
}

// Transform normalizes a record batch and derives its features. All records
// must share one source kind; records whose payload does not match their
// kind are dropped and counted, never failing the transform.
func Transform(records []domain.RawRecord, cfg Config) (*Result, error) {
	if cfg.MovingAverageWindow <= 0 {
		cfg.MovingAverageWindow = DefaultConfig().MovingAverageWindow
	}
	if cfg.ZScoreBand <= 0 {
		cfg.ZScoreBand = DefaultConfig().ZScoreBand
	}

	valid, dropped := validate(records)
	if len(valid) == 0 {
		return nil, fmt.Errorf("transform: no valid records (%d dropped)", dropped)
	}

	// Oldest first. Stable so equal timestamps keep input order.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	kind := valid[0].Kind
	var raw *domain.Frame
	switch kind {
	case domain.KindEpidemic:
		raw = epidemicBase(valid)
	case domain.KindWeather:
		raw = weatherBase(valid)
	case domain.KindMarket:
		raw = marketBase(valid)
	default:
		return nil, fmt.Errorf("transform: %w: %s", domain.ErrUnsupportedKind, kind)
	}

	normalize(raw, kind, cfg.ZScoreBand)

	processed := raw.Clone()
	var err error
	switch kind {
	case domain.KindEpidemic:
		err = epidemicFeatures(processed, cfg)
	case domain.KindWeather:
		err = weatherFeatures(processed, cfg)
	case domain.KindMarket:
		err = marketFeatures(processed, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("derive features: %w", err)
	}

	if dropped > 0 {
		logger.Warn("transform %s: dropped %d invalid records", kind, dropped)
	}
	return &Result{Raw: raw, Processed: processed, Dropped: dropped}, nil
}

// validate filters records whose payload does not match their declared kind
// or whose kind differs from the batch's first valid record.
func validate(records []domain.RawRecord) (valid []domain.RawRecord, dropped int) {
	var kind domain.SourceKind
	for _, r := range records {
		if !r.Valid() || r.Timestamp.IsZero() {
			dropped++
			continue
		}
		if kind == "" {
			kind = r.Kind
		}
		if r.Kind != kind {
			dropped++
			continue
		}
		valid = append(valid, r)
	}
	return valid, dropped
}

// normalize applies missing-value handling then outlier clipping to every
// column in place. Missing values (NaN) forward-fill from the prior record,
// falling back to the source-level default when no prior value exists.
func normalize(f *domain.Frame, kind domain.SourceKind, band float64) {
	defaults := columnDefaults(kind)
	for c, name := range f.Columns {
		fallback := defaults[name]
		prev := math.NaN()
		for i := range f.Rows {
			v := f.Rows[i][c]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				if math.IsNaN(prev) {
					v = fallback
				} else {
					v = prev
				}
				f.Rows[i][c] = v
			}
			prev = v
		}
		clipZScore(f, c, band)
	}

	// Cumulative counts cannot be negative; negatives are data errors.
	if kind == domain.KindEpidemic {
		for i := range f.Rows {
			for c := range f.Rows[i] {
				if f.Rows[i][c] < 0 {
					f.Rows[i][c] = 0
				}
			}
		}
	}
}

// clipZScore clamps column c to mean ± band·stddev.
func clipZScore(f *domain.Frame, c int, band float64) {
	n := float64(len(f.Rows))
	if n < 2 {
		return
	}
	var sum float64
	for i := range f.Rows {
		sum += f.Rows[i][c]
	}
	mean := sum / n

	var sq float64
	for i := range f.Rows {
		d := f.Rows[i][c] - mean
		sq += d * d
	}
	std := math.Sqrt(sq / n)
	if std == 0 {
		return
	}

	lo, hi := mean-band*std, mean+band*std
	for i := range f.Rows {
		if f.Rows[i][c] < lo {
			f.Rows[i][c] = lo
		} else if f.Rows[i][c] > hi {
			f.Rows[i][c] = hi
		}
	}
}

// columnDefaults returns the per-column fallback used when a value is
// missing and no prior record exists to forward-fill from.
func columnDefaults(kind domain.SourceKind) map[string]float64 {
	switch kind {
	case domain.KindWeather:
		return map[string]float64{
			"temperature": 15,
			"humidity":    50,
			"pressure":    1013,
			"wind_speed":  0,
		}
	default:
		return map[string]float64{}
	}
}
