package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testStation = "imnavait"

var nan = math.NaN()

// regularDataset builds a dataset of n rows spaced step apart from start and
// fills the given float columns (NaN = missing).
func regularDataset(t *testing.T, start time.Time, step time.Duration, n int, cols map[string][]float64) *Dataset {
	t.Helper()
	times := make([]time.Time, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * step)
	}
	ds, err := NewDataset(testStation, times)
	require.NoError(t, err)
	for name, vals := range cols {
		require.Len(t, vals, n, "column %s", name)
		require.NoError(t, ds.SetFloats(name, vals))
	}
	return ds
}

func floatsOf(t *testing.T, ds *Dataset, name string) []float64 {
	t.Helper()
	col, err := ds.Column(name)
	require.NoError(t, err)
	out := make([]float64, len(col))
	for i, r := range col {
		out[i] = r.Float()
	}
	return out
}
