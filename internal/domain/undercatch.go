package domain

import (
	"fmt"
	"math"
)

const (
	// maxCalibratedWind is the highest wind speed (m/s) in the Yang et al. (1998)
	// calibration; faster winds are clipped to it.
	maxCalibratedWind = 7.0

	// maxCorrectionFactor rejects corrections larger than 100x.
	maxCorrectionFactor = 100.0

	// UndercatchSuffix is appended to the precipitation column name when the
	// undercatch correction writes to a new column.
	UndercatchSuffix = "_undercatch_adj"
)

// UndercatchOptions selects the columns and output mode for CorrectUndercatch.
type UndercatchOptions struct {
	PrecipColumn string
	WindColumn   string

	// InPlace overwrites PrecipColumn. Otherwise the result goes to
	// PrecipColumn+UndercatchSuffix and PrecipColumn is left untouched.
	InPlace bool
}

// TargetColumn returns the column the correction writes to.
func (o UndercatchOptions) TargetColumn() string {
	if o.InPlace {
		return o.PrecipColumn
	}
	return o.PrecipColumn + UndercatchSuffix
}

// CorrectionStats counts what a precipitation correction did to each row.
type CorrectionStats struct {
	Corrected int // value changed by the correction
	Retained  int // measured value kept because no valid correction applied
	Discarded int // measured value physically invalid and set missing
	Missing   int // no measurement to correct
}

// CatchFactor returns the undercatch multiplier for a phase at the given wind
// speed (m/s). Wind above 7 m/s is clipped. It reports false when the phase is
// unknown, the wind is missing or negative, or the factor is not a usable
// multiplier.
func CatchFactor(phase Phase, wind Reading) (float64, bool) {
	u, ok := wind.Get()
	if !ok || u < 0 {
		return 0, false
	}
	u = math.Min(u, maxCalibratedWind)

	var f float64
	switch phase {
	case PhaseRain:
		f = 100 / math.Exp(4.606-0.041*math.Pow(u, 0.69))
	case PhaseSnow:
		f = 100 / math.Exp(4.606-0.036*math.Pow(u, 1.75))
	case PhaseMixed:
		f = 100 / (101.04 - 5.62*u)
	default:
		return 0, false
	}
	return f, validFactor(f)
}

func validFactor(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0 && f <= maxCorrectionFactor
}

// correctValue applies factor to precip. A missing result falls back to the
// measured value so a real observation never turns into a gap.
func correctValue(precip Reading, factor float64, factorOK bool) (Reading, outcome) {
	p, ok := precip.Get()
	switch {
	case !ok:
		return Missing(), outcomeMissing
	case p < 0:
		return Missing(), outcomeDiscarded
	case !factorOK || !validFactor(factor):
		return precip, outcomeRetained
	}
	return Of(p * factor), outcomeCorrected
}

type outcome uint8

const (
	outcomeMissing outcome = iota
	outcomeCorrected
	outcomeRetained
	outcomeDiscarded
)

func (s *CorrectionStats) add(o outcome) {
	switch o {
	case outcomeCorrected:
		s.Corrected++
	case outcomeRetained:
		s.Retained++
	case outcomeDiscarded:
		s.Discarded++
	default:
		s.Missing++
	}
}

// CorrectUndercatch returns a copy of ds with gauge precipitation corrected
// for wind-induced undercatch. ClassifyPhase must have run first. Phase and
// wind columns are not modified.
func CorrectUndercatch(ds *Dataset, opts UndercatchOptions) (*Dataset, CorrectionStats, error) {
	var stats CorrectionStats
	if ds.phase == nil {
		return nil, stats, fmt.Errorf("correct undercatch: %w", ErrPhaseNotClassified)
	}

	out := ds.Clone()
	precip, err := out.column(opts.PrecipColumn)
	if err != nil {
		return nil, stats, fmt.Errorf("correct undercatch: %w", err)
	}
	wind, err := out.column(opts.WindColumn)
	if err != nil {
		return nil, stats, fmt.Errorf("correct undercatch: %w", err)
	}

	corrected := make([]Reading, len(precip))
	for i := range precip {
		factor, ok := CatchFactor(out.phase[i], wind[i])
		v, o := correctValue(precip[i], factor, ok)
		corrected[i] = v
		stats.add(o)
	}

	if err := out.SetColumn(opts.TargetColumn(), corrected); err != nil {
		return nil, stats, fmt.Errorf("correct undercatch: %w", err)
	}
	return out, stats, nil
}
