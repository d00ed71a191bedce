package domain

import "fmt"

// Phase is the physical state of precipitation inferred from air temperature.
type Phase uint8

const (
	PhaseUnknown Phase = iota
	PhaseSnow
	PhaseRain
	PhaseMixed
)

// Fixed McCabe and Wolock (2010) thresholds in °C.
const (
	snowBelowC = -1.0
	rainAboveC = 3.0
)

func (p Phase) String() string {
	switch p {
	case PhaseSnow:
		return "snow"
	case PhaseRain:
		return "rain"
	case PhaseMixed:
		return "mixed"
	default:
		return ""
	}
}

// MarshalText encodes the phase label; unknown encodes as an empty string.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText accepts "snow", "rain", "mixed" or "".
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "snow":
		*p = PhaseSnow
	case "rain":
		*p = PhaseRain
	case "mixed":
		*p = PhaseMixed
	case "":
		*p = PhaseUnknown
	default:
		return fmt.Errorf("invalid phase %q", text)
	}
	return nil
}

// PhaseOf classifies a single temperature reading.
func PhaseOf(temp Reading) Phase {
	t, ok := temp.Get()
	switch {
	case !ok:
		return PhaseUnknown
	case t < snowBelowC:
		return PhaseSnow
	case t > rainAboveC:
		return PhaseRain
	default:
		return PhaseMixed
	}
}

// ClassifyPhase returns a copy of ds with the phase column derived from
// tempColumn. Rows with missing temperature get PhaseUnknown.
func ClassifyPhase(ds *Dataset, tempColumn string) (*Dataset, error) {
	out := ds.Clone()
	temps, err := out.column(tempColumn)
	if err != nil {
		return nil, fmt.Errorf("classify phase: %w", err)
	}

	out.phase = make([]Phase, len(temps))
	for i, t := range temps {
		out.phase[i] = PhaseOf(t)
	}
	return out, nil
}
