package domain

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Period is an aggregation target period.
type Period uint8

const (
	PeriodMonthly Period = iota + 1
	PeriodAnnual
)

// daysPerYear is the expected annual sample count. Leap years are not
// special-cased so validity thresholds stay comparable with earlier output.
const daysPerYear = 365

// minCoverage is the fraction of expected samples a period must exceed.
const minCoverage = 0.9

func (p Period) String() string {
	switch p {
	case PeriodMonthly:
		return "monthly"
	case PeriodAnnual:
		return "annual"
	default:
		return fmt.Sprintf("period(%d)", uint8(p))
	}
}

// ParsePeriod accepts "monthly" and "annual" and the frequency aliases
// M, MS, A, AS, Y and YS.
func ParsePeriod(s string) (Period, error) {
	switch strings.TrimSpace(s) {
	case "monthly", "month", "M", "MS":
		return PeriodMonthly, nil
	case "annual", "year", "yearly", "A", "AS", "Y", "YS":
		return PeriodAnnual, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnsupportedPeriod)
	}
}

// Reducer is the statistic computed over a period.
type Reducer uint8

const (
	ReducerMean Reducer = iota + 1
	ReducerSum
)

func (r Reducer) String() string {
	switch r {
	case ReducerMean:
		return "mean"
	case ReducerSum:
		return "sum"
	default:
		return fmt.Sprintf("reducer(%d)", uint8(r))
	}
}

// ParseReducer accepts "mean" and "sum".
func ParseReducer(s string) (Reducer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean":
		return ReducerMean, nil
	case "sum":
		return ReducerSum, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnsupportedReducer)
	}
}

// PeriodValue is one aggregated period.
type PeriodValue struct {
	Start    time.Time `json:"start"`
	Value    Reading   `json:"value"`
	Coverage float64   `json:"coverage"`
}

// Aggregation is a column reduced to one value per period.
type Aggregation struct {
	Station string        `json:"station,omitempty"`
	Column  string        `json:"column"`
	Period  Period        `json:"-"`
	Reducer Reducer       `json:"-"`
	Values  []PeriodValue `json:"values"`
}

// Invalid counts periods whose value was withheld.
func (a Aggregation) Invalid() int {
	n := 0
	for _, v := range a.Values {
		if !v.Value.Valid {
			n++
		}
	}
	return n
}

// Aggregate reduces column to one value per calendar month or year, covering
// every period from the first row to the last. A period reports its value
// only when its count of present samples exceeds 90% of the expected count
// (days in the month, or 365 for a year); otherwise the value is missing. The
// coverage ratio is reported either way.
func Aggregate(ds *Dataset, column string, period Period, reducer Reducer) (Aggregation, error) {
	if period != PeriodMonthly && period != PeriodAnnual {
		return Aggregation{}, fmt.Errorf("aggregate %s: %w", period, ErrUnsupportedPeriod)
	}
	if reducer != ReducerMean && reducer != ReducerSum {
		return Aggregation{}, fmt.Errorf("aggregate %s: %w", reducer, ErrUnsupportedReducer)
	}
	col, err := ds.column(column)
	if err != nil {
		return Aggregation{}, fmt.Errorf("aggregate: %w", err)
	}

	agg := Aggregation{Station: ds.Station, Column: column, Period: period, Reducer: reducer}
	if ds.Len() == 0 {
		return agg, nil
	}

	last := periodStart(ds.times[ds.Len()-1], period)
	row := 0
	for start := periodStart(ds.times[0], period); !start.After(last); start = nextPeriod(start, period) {
		end := nextPeriod(start, period)

		var vals []float64
		for ; row < ds.Len() && ds.times[row].Before(end); row++ {
			if v, ok := col[row].Get(); ok {
				vals = append(vals, v)
			}
		}

		expected := expectedSamples(start, period)
		pv := PeriodValue{Start: start, Coverage: float64(len(vals)) / float64(expected)}
		if len(vals) > 0 && float64(len(vals)) > minCoverage*float64(expected) {
			pv.Value = reduce(vals, reducer)
		}
		agg.Values = append(agg.Values, pv)
	}
	return agg, nil
}

func reduce(vals []float64, reducer Reducer) Reading {
	if reducer == ReducerSum {
		return Of(floats.Sum(vals))
	}
	return Of(stat.Mean(vals, nil))
}

func periodStart(t time.Time, period Period) time.Time {
	if period == PeriodAnnual {
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func nextPeriod(start time.Time, period Period) time.Time {
	if period == PeriodAnnual {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

func expectedSamples(start time.Time, period Period) int {
	if period == PeriodAnnual {
		return daysPerYear
	}
	return DaysInMonth(start.Year(), start.Month())
}
