package domain

import "fmt"

const (
	snowWettingLoss  = 0.15
	otherWettingLoss = 0.03

	// WettingLossSuffix is appended to the precipitation column name when the
	// wetting-loss adjustment writes to a new column.
	WettingLossSuffix = "_wetting_loss_adjusted"
)

// WettingLossOptions selects the column and output mode for AddWettingLoss.
type WettingLossOptions struct {
	PrecipColumn string

	// InPlace overwrites PrecipColumn. Otherwise the result goes to
	// PrecipColumn+WettingLossSuffix.
	InPlace bool
}

// TargetColumn returns the column the adjustment writes to.
func (o WettingLossOptions) TargetColumn() string {
	if o.InPlace {
		return o.PrecipColumn
	}
	return o.PrecipColumn + WettingLossSuffix
}

// WettingLoss returns the additive offset for a positive sample of the given
// phase. Only snow gets the larger offset; rain, mixed and unknown phases all
// get the smaller one.
func WettingLoss(phase Phase) float64 {
	if phase == PhaseSnow {
		return snowWettingLoss
	}
	return otherWettingLoss
}

// AddWettingLoss returns a copy of ds with the gauge wetting loss added to
// every positive precipitation sample. Zero and missing samples are copied
// unchanged. The input should already be undercatch corrected; that is not
// checked.
func AddWettingLoss(ds *Dataset, opts WettingLossOptions) (*Dataset, CorrectionStats, error) {
	var stats CorrectionStats
	if ds.phase == nil {
		return nil, stats, fmt.Errorf("add wetting loss: %w", ErrPhaseNotClassified)
	}

	out := ds.Clone()
	precip, err := out.column(opts.PrecipColumn)
	if err != nil {
		return nil, stats, fmt.Errorf("add wetting loss: %w", err)
	}

	adjusted := make([]Reading, len(precip))
	for i, r := range precip {
		p, ok := r.Get()
		switch {
		case !ok:
			stats.Missing++
			adjusted[i] = r
		case p > 0:
			stats.Corrected++
			adjusted[i] = Of(p + WettingLoss(out.phase[i]))
		default:
			stats.Retained++
			adjusted[i] = r
		}
	}

	if err := out.SetColumn(opts.TargetColumn(), adjusted); err != nil {
		return nil, stats, fmt.Errorf("add wetting loss: %w", err)
	}
	return out, stats, nil
}
