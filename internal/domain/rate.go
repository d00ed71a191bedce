package domain

import "fmt"

// PrecipRate is a precipitation intensity class.
type PrecipRate uint8

const (
	RateUnknown PrecipRate = iota
	RateTrace
	RateMedium
	RateHeavy
)

func (r PrecipRate) String() string {
	switch r {
	case RateTrace:
		return "trace"
	case RateMedium:
		return "medium"
	case RateHeavy:
		return "heavy"
	default:
		return ""
	}
}

// MarshalText encodes the rate label; unknown encodes as an empty string.
func (r PrecipRate) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText accepts "trace", "medium", "heavy" or "".
func (r *PrecipRate) UnmarshalText(text []byte) error {
	switch string(text) {
	case "trace":
		*r = RateTrace
	case "medium":
		*r = RateMedium
	case "heavy":
		*r = RateHeavy
	case "":
		*r = RateUnknown
	default:
		return fmt.Errorf("invalid precip rate %q", text)
	}
	return nil
}

// RateOf buckets one precipitation value. Values exactly equal to either
// cutoff fall in no bucket and stay RateUnknown.
func RateOf(precip Reading, traceCutoff, highCutoff float64) PrecipRate {
	v, ok := precip.Get()
	switch {
	case !ok:
		return RateUnknown
	case v < traceCutoff:
		return RateTrace
	case v > highCutoff:
		return RateHeavy
	case v > traceCutoff && v < highCutoff:
		return RateMedium
	default:
		return RateUnknown
	}
}

// ClassifyPrecipRate returns a copy of ds with the precip-rate column derived
// from precipColumn. The cutoffs are not validated; traceCutoff should be
// below highCutoff.
func ClassifyPrecipRate(ds *Dataset, precipColumn string, traceCutoff, highCutoff float64) (*Dataset, error) {
	out := ds.Clone()
	precip, err := out.column(precipColumn)
	if err != nil {
		return nil, fmt.Errorf("classify precip rate: %w", err)
	}

	out.rate = make([]PrecipRate, len(precip))
	for i, p := range precip {
		out.rate[i] = RateOf(p, traceCutoff, highCutoff)
	}
	return out, nil
}
