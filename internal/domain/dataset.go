package domain

import (
	"fmt"
	"slices"
	"time"
)

// Dataset is a station's time-indexed record set.
//
// Numeric columns are stored column-wise, one Reading per row. The phase and
// precip-rate columns are nil until the corresponding classifier has run.
type Dataset struct {
	Station string

	times   []time.Time
	order   []string
	columns map[string][]Reading

	phase []Phase
	rate  []PrecipRate
}

// NewDataset creates an empty-column dataset over the given timestamps, which
// must be strictly increasing. The slice is copied.
func NewDataset(station string, times []time.Time) (*Dataset, error) {
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("row %d (%s): %w", i, times[i].Format(time.RFC3339), ErrUnordered)
		}
	}
	return &Dataset{
		Station: station,
		times:   slices.Clone(times),
		columns: make(map[string][]Reading),
	}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.times) }

// Time returns the timestamp of row i.
func (d *Dataset) Time(i int) time.Time { return d.times[i] }

// Times returns a copy of the row timestamps.
func (d *Dataset) Times() []time.Time { return slices.Clone(d.times) }

// Columns returns the numeric column names in insertion order.
func (d *Dataset) Columns() []string { return slices.Clone(d.order) }

// HasColumn reports whether the numeric column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// Column returns a copy of the named numeric column.
func (d *Dataset) Column(name string) ([]Reading, error) {
	col, ok := d.columns[name]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
	}
	return slices.Clone(col), nil
}

// SetColumn adds or replaces a numeric column. A new column is appended to the
// column order; replacing keeps its position.
func (d *Dataset) SetColumn(name string, values []Reading) error {
	if len(values) != len(d.times) {
		return fmt.Errorf("column %q has %d values for %d rows: %w", name, len(values), len(d.times), ErrLengthMismatch)
	}
	if _, ok := d.columns[name]; !ok {
		d.order = append(d.order, name)
	}
	d.columns[name] = slices.Clone(values)
	return nil
}

// SetFloats is SetColumn for raw floats; NaN marks a missing value.
func (d *Dataset) SetFloats(name string, values []float64) error {
	readings := make([]Reading, len(values))
	for i, v := range values {
		readings[i] = Of(v)
	}
	return d.SetColumn(name, readings)
}

// Phases returns a copy of the phase column, or nil if unclassified.
func (d *Dataset) Phases() []Phase { return slices.Clone(d.phase) }

// PrecipRates returns a copy of the precip-rate column, or nil if unclassified.
func (d *Dataset) PrecipRates() []PrecipRate { return slices.Clone(d.rate) }

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	c := &Dataset{
		Station: d.Station,
		times:   slices.Clone(d.times),
		order:   slices.Clone(d.order),
		columns: make(map[string][]Reading, len(d.columns)),
		phase:   slices.Clone(d.phase),
		rate:    slices.Clone(d.rate),
	}
	for name, col := range d.columns {
		c.columns[name] = slices.Clone(col)
	}
	return c
}

// WaterYears labels every row with its hydrological water year.
func (d *Dataset) WaterYears() []int {
	out := make([]int, len(d.times))
	for i, t := range d.times {
		out[i] = WaterYear(t)
	}
	return out
}

// column returns the backing slice for in-package mutation of a clone.
func (d *Dataset) column(name string) ([]Reading, error) {
	col, ok := d.columns[name]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
	}
	return col, nil
}
