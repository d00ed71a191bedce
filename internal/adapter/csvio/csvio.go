// Package csvio reads station time series from CSV and writes cleaned and
// aggregated results back out.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wx-clean-service/internal/domain"
)

// TimeColumn is the header of the timestamp column.
const TimeColumn = "timestamp"

// Header names of the categorical columns emitted by Write.
const (
	PhaseColumn = "phase"
	RateColumn  = "precip_rate"
)

// ErrNoTimeColumn is returned when the header lacks a timestamp column.
var ErrNoTimeColumn = errors.New("csv has no timestamp column")

// ErrDuplicateColumn is returned when the header names a column twice.
var ErrDuplicateColumn = errors.New("duplicate column in csv header")

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Read parses a header row followed by one row per timestamp. Every column
// other than the timestamp is numeric; empty, NaN and NA cells are missing.
// Timestamps without a zone are read as UTC. Rows must already be in strictly
// increasing time order. Derived phase and precip_rate columns written by
// Write are ignored; they are recomputed on cleaning.
func Read(r io.Reader, station string) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read csv: %w", ErrNoTimeColumn)
	}

	header := rows[0]
	timeIdx := -1
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		key := header[i]
		if strings.EqualFold(key, TimeColumn) {
			key = TimeColumn
			timeIdx = i
		}
		if seen[key] {
			return nil, fmt.Errorf("read csv: column %q: %w", header[i], ErrDuplicateColumn)
		}
		seen[key] = true
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("read csv: %w", ErrNoTimeColumn)
	}

	rows = rows[1:]
	times := make([]time.Time, len(rows))
	cols := make([][]domain.Reading, len(header))
	for i, name := range header {
		if i != timeIdx && !derived(name) {
			cols[i] = make([]domain.Reading, len(rows))
		}
	}

	for n, row := range rows {
		line := n + 2
		t, err := parseTime(row[timeIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		times[n] = t
		for i, cell := range row {
			if cols[i] == nil {
				continue
			}
			v, err := parseReading(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, header[i], err)
			}
			cols[i][n] = v
		}
	}

	ds, err := domain.NewDataset(station, times)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	for i, name := range header {
		if cols[i] == nil {
			continue
		}
		if err := ds.SetColumn(name, cols[i]); err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
	}
	return ds, nil
}

func derived(name string) bool {
	return name == PhaseColumn || name == RateColumn
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseReading(s string) (domain.Reading, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "null":
		return domain.Missing(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return domain.Of(v), nil
}

// Write emits ds as CSV: the timestamp, every numeric column in order, then
// phase and precip_rate when they have been classified. Missing values are
// empty cells.
func Write(w io.Writer, ds *domain.Dataset) error {
	names := ds.Columns()
	cols := make([][]domain.Reading, len(names))
	for i, name := range names {
		col, err := ds.Column(name)
		if err != nil {
			return err
		}
		cols[i] = col
	}
	phases := ds.Phases()
	rates := ds.PrecipRates()

	header := append([]string{TimeColumn}, names...)
	if phases != nil {
		header = append(header, PhaseColumn)
	}
	if rates != nil {
		header = append(header, RateColumn)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(header))
	for row := 0; row < ds.Len(); row++ {
		record = record[:0]
		record = append(record, ds.Time(row).Format(time.RFC3339))
		for _, col := range cols {
			record = append(record, col[row].String())
		}
		if phases != nil {
			record = append(record, phases[row].String())
		}
		if rates != nil {
			record = append(record, rates[row].String())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAggregate emits one row per period: its start date, the reduced value
// (empty when withheld) and the coverage ratio.
func WriteAggregate(w io.Writer, agg domain.Aggregation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"period", agg.Column, "coverage"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, v := range agg.Values {
		rec := []string{
			v.Start.Format("2006-01-02"),
			v.Value.String(),
			strconv.FormatFloat(v.Coverage, 'f', 4, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv period %s: %w", rec[0], err)
		}
	}
	cw.Flush()
	return cw.Error()
}
