package domain

import "time"

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WaterYear returns the hydrological water year of t. Water years start on
// October 1, so October through December belong to the following year.
func WaterYear(t time.Time) int {
	if t.Month() >= time.October {
		return t.Year() + 1
	}
	return t.Year()
}

// YearFraction returns t as a decimal year, e.g. 2020-07-02 12:00 UTC is
// roughly 2020.5.
func YearFraction(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	next := start.AddDate(1, 0, 0)
	return float64(t.Year()) + t.Sub(start).Seconds()/next.Sub(start).Seconds()
}

// JulianDayToDate converts an integer Julian Day Number to its Gregorian
// calendar date (Fliegel and Van Flandern, 1968).
func JulianDayToDate(jd int) time.Time {
	l := jd + 68569
	n := 4 * l / 146097
	l -= (146097*n + 3) / 4
	i := 4000 * (l + 1) / 1461001
	l = l - 1461*i/4 + 31
	j := 80 * l / 2447
	k := l - 2447*j/80
	l = j / 11
	j = j + 2 - 12*l
	year := 100*(n-49) + i + l
	return time.Date(year, time.Month(j), k, 0, 0, 0, 0, time.UTC)
}
