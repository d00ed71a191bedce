package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateOf(t *testing.T) {
	const trace, high = 0.25, 2.5

	tests := []struct {
		name   string
		precip Reading
		want   PrecipRate
	}{
		{"zero is trace", Of(0), RateTrace},
		{"below trace", Of(0.1), RateTrace},
		{"at trace cutoff", Of(trace), RateUnknown},
		{"medium", Of(1), RateMedium},
		{"at high cutoff", Of(high), RateUnknown},
		{"heavy", Of(7), RateHeavy},
		{"missing", Missing(), RateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RateOf(tt.precip, trace, high))
		})
	}
}

func TestClassifyPrecipRate(t *testing.T) {
	ds := regularDataset(t, time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), time.Hour, 4,
		map[string][]float64{"precip": {0.1, 1, 5, nan}})

	out, err := ClassifyPrecipRate(ds, "precip", 0.25, 2.5)
	require.NoError(t, err)

	assert.Equal(t, []PrecipRate{RateTrace, RateMedium, RateHeavy, RateUnknown}, out.PrecipRates())
	assert.Nil(t, ds.PrecipRates(), "input must not be modified")
}

func TestClassifyPrecipRate_UnknownColumn(t *testing.T) {
	ds := regularDataset(t, time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), time.Hour, 1, nil)
	_, err := ClassifyPrecipRate(ds, "precip", 0.25, 2.5)
	require.ErrorIs(t, err, ErrUnknownColumn)
}
