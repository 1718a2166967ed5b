package domain

import "fmt"

// SourceKind identifies the schema family of an upstream source.
type SourceKind string

const (
	// KindEpidemic is daily epidemiological counts (cases, deaths, recovered).
	KindEpidemic SourceKind = "epidemic"

	// KindWeather is sub-daily weather observations.
	KindWeather SourceKind = "weather"

	// KindMarket is daily market quote bars.
	KindMarket SourceKind = "market"
)

// AllSourceKinds returns every supported source kind.
func AllSourceKinds() []SourceKind {
	return []SourceKind{KindEpidemic, KindWeather, KindMarket}
}

// ParseSourceKind converts a string to a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case KindEpidemic, KindWeather, KindMarket:
		return SourceKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
}

// String returns the kind identifier.
func (k SourceKind) String() string {
	return string(k)
}
