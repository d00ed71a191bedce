package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaterYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC), 2015},
		{time.Date(2015, time.September, 30, 23, 59, 0, 0, time.UTC), 2015},
		{time.Date(2015, time.October, 1, 0, 0, 0, 0, time.UTC), 2016},
		{time.Date(2015, time.December, 31, 0, 0, 0, 0, time.UTC), 2016},
	}
	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			assert.Equal(t, tt.want, WaterYear(tt.date))
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2015, time.July))
	assert.Equal(t, 28, DaysInMonth(2015, time.February))
	assert.Equal(t, 29, DaysInMonth(2016, time.February))
	assert.Equal(t, 31, DaysInMonth(2015, time.December))
}

func TestYearFraction(t *testing.T) {
	assert.Equal(t, 2015.0, YearFraction(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 2016.5, YearFraction(time.Date(2016, 7, 2, 0, 0, 0, 0, time.UTC)), 1e-9)
}

func TestJulianDayToDate(t *testing.T) {
	tests := []struct {
		jd   int
		want time.Time
	}{
		{2451545, time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{2440588, time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{2457024, time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JulianDayToDate(tt.jd))
	}
}
