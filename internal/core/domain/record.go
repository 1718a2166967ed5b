package domain

import "time"

// RawRecord is one observation fetched by a connector, before any
// transformation. It is a tagged variant: Kind selects which of the typed
// field structs is populated; exactly one is non-nil. Records are immutable
// once fetched.
type RawRecord struct {
	// Source is the configured source name that produced this record.
	Source string

	// Kind selects the populated payload.
	Kind SourceKind

	// Timestamp is the observation time (day, tick or reading time).
	Timestamp time.Time

	Epidemic *EpidemicFields
	Weather  *WeatherFields
	Market   *MarketFields
}

// EpidemicFields holds one day of cumulative epidemiological counts.
type EpidemicFields struct {
	Cases     float64
	Deaths    float64
	Recovered float64
}

// WeatherFields holds one weather observation.
// Condition is a free-text description (e.g. "light rain").
type WeatherFields struct {
	Temperature float64 // Celsius
	Humidity    float64 // percent
	Pressure    float64 // hPa
	WindSpeed   float64 // m/s
	Condition   string
}

// MarketFields holds one daily OHLCV quote bar.
type MarketFields struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Valid reports whether the record's payload matches its kind.
func (r RawRecord) Valid() bool {
	switch r.Kind {
	case KindEpidemic:
		return r.Epidemic != nil && r.Weather == nil && r.Market == nil
	case KindWeather:
		return r.Weather != nil && r.Epidemic == nil && r.Market == nil
	case KindMarket:
		return r.Market != nil && r.Epidemic == nil && r.Weather == nil
	default:
		return false
	}
}
