package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataset_RejectsUnorderedTimes(t *testing.T) {
	t0 := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		times []time.Time
	}{
		{"duplicate", []time.Time{t0, t0}},
		{"descending", []time.Time{t0.Add(time.Hour), t0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataset(testStation, tt.times)
			require.ErrorIs(t, err, ErrUnordered)
		})
	}
}

func TestDataset_SetColumnLengthMismatch(t *testing.T) {
	ds := regularDataset(t, time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), time.Hour, 3, nil)
	err := ds.SetFloats("precip", []float64{1, 2})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestDataset_ColumnUnknown(t *testing.T) {
	ds := regularDataset(t, time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), time.Hour, 1, nil)
	_, err := ds.Column("temp")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestDataset_ColumnOrderIsInsertionOrder(t *testing.T) {
	ds := regularDataset(t, time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), time.Hour, 1, nil)
	require.NoError(t, ds.SetFloats("temp", []float64{1}))
	require.NoError(t, ds.SetFloats("precip", []float64{2}))
	require.NoError(t, ds.SetFloats("temp", []float64{3}))

	assert.Equal(t, []string{"temp", "precip"}, ds.Columns())
	assert.Equal(t, []float64{3}, floatsOf(t, ds, "temp"))
}

func TestDataset_CloneIsDeep(t *testing.T) {
	ds := regularDataset(t, time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), time.Hour, 2,
		map[string][]float64{"temp": {-5, 5}})
	classified, err := ClassifyPhase(ds, "temp")
	require.NoError(t, err)

	clone := classified.Clone()
	require.NoError(t, clone.SetFloats("temp", []float64{10, 10}))
	clone.phase[0] = PhaseRain

	assert.Equal(t, []float64{-5, 5}, floatsOf(t, classified, "temp"))
	assert.Equal(t, PhaseSnow, classified.Phases()[0])
}

func TestReading_Of(t *testing.T) {
	assert.False(t, Of(nan).Valid)
	r := Of(2.5)
	v, ok := r.Get()
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)
	assert.Equal(t, "2.5", r.String())
	assert.Empty(t, Missing().String())
}

func TestReading_JSON(t *testing.T) {
	data, err := json.Marshal([]Reading{Of(1.5), Missing()})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null]`, string(data))

	var back []Reading
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Reading{Of(1.5), Missing()}, back)
}

func TestDataset_WaterYears(t *testing.T) {
	times := []time.Time{
		time.Date(2015, time.September, 30, 23, 0, 0, 0, time.UTC),
		time.Date(2015, time.October, 1, 0, 0, 0, 0, time.UTC),
	}
	ds, err := NewDataset(testStation, times)
	require.NoError(t, err)
	assert.Equal(t, []int{2015, 2016}, ds.WaterYears())
}
