package domain

import (
	"fmt"
	"time"
)

const (
	// maxWindSpeed is the WMO plausibility ceiling (Zahumensky, 2004).
	maxWindSpeed = 75.0

	// minHourlyWindRange is the smallest max-min spread a working anemometer
	// shows within an hour.
	minHourlyWindRange = 0.5
)

// WindQC reports what CleanWindSpeed removed.
type WindQC struct {
	// Flags marks rows whose containing hour was judged a stuck sensor.
	Flags []bool

	OverCeiling int // readings above the physical ceiling
	FaultyHours int // hours judged stuck
	Nulled      int // readings removed because their hour was stuck
}

// sensitivityCutoff returns the last hour start, in loc, for which the
// stuck-sensor test is trusted. The logger resolution dropped in April 2017.
func sensitivityCutoff(loc *time.Location) time.Time {
	return time.Date(2017, time.April, 1, 0, 0, 0, 0, loc)
}

func hourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// CleanWindSpeed returns a copy of ds with implausible wind readings removed
// from windColumn. Readings above 75 m/s are dropped unconditionally. Each
// clock hour is then judged stuck when its readings sum to exactly zero, vary
// by less than 0.5, and the hour starts no later than 2017-04-01; every row in
// a stuck hour loses its reading. Hours without any valid reading are never
// judged stuck.
func CleanWindSpeed(ds *Dataset, windColumn string) (*Dataset, WindQC, error) {
	out := ds.Clone()
	wind, err := out.column(windColumn)
	if err != nil {
		return nil, WindQC{}, fmt.Errorf("clean wind speed: %w", err)
	}

	qc := WindQC{Flags: make([]bool, len(wind))}
	for i, r := range wind {
		if v, ok := r.Get(); ok && v > maxWindSpeed {
			wind[i] = Missing()
			qc.OverCeiling++
		}
	}

	// Rows are strictly ordered, so each hour is a contiguous run.
	for start := 0; start < len(wind); {
		hour := hourStart(out.times[start])
		end := start + 1
		for end < len(wind) && hourStart(out.times[end]).Equal(hour) {
			end++
		}

		if stuckHour(wind[start:end]) && !hour.After(sensitivityCutoff(hour.Location())) {
			qc.FaultyHours++
			for i := start; i < end; i++ {
				qc.Flags[i] = true
				if wind[i].Valid {
					wind[i] = Missing()
					qc.Nulled++
				}
			}
		}
		start = end
	}

	return out, qc, nil
}

// stuckHour reports whether an hour of readings is a flat zero.
func stuckHour(readings []Reading) bool {
	var (
		n             int
		sum, lo, hi float64
	)
	for _, r := range readings {
		v, ok := r.Get()
		if !ok {
			continue
		}
		if n == 0 || v < lo {
			lo = v
		}
		if n == 0 || v > hi {
			hi = v
		}
		sum += v
		n++
	}
	return n > 0 && hi-lo < minHourlyWindRange && sum == 0
}
