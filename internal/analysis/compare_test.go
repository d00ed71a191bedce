package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/wx-clean-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readings(vals ...float64) []domain.Reading {
	out := make([]domain.Reading, len(vals))
	for i, v := range vals {
		out[i] = domain.Of(v)
	}
	return out
}

func TestCompare_PerfectLine(t *testing.T) {
	x := readings(1, 2, 3, 4, 5)
	y := readings(3, 5, 7, 9, 11)

	c, err := Compare(x, y)
	require.NoError(t, err)

	assert.Equal(t, 5, c.N)
	assert.InDelta(t, 2, c.Slope, 1e-9)
	assert.InDelta(t, 1, c.Intercept, 1e-9)
	assert.InDelta(t, 1, c.RSquared, 1e-9)
	assert.InDelta(t, 0, c.SlopeP, 1e-9)
	assert.InDelta(t, 1, c.KendallTau, 1e-12)
	assert.Less(t, c.KendallP, 0.05)
}

func TestCompare_DropsIncompletePairs(t *testing.T) {
	x := readings(1, 2, math.NaN(), 3, 4)
	y := readings(2, 4, 100, math.NaN(), 8.5)

	c, err := Compare(x, y)
	require.NoError(t, err)
	assert.Equal(t, 3, c.N)
	assert.Greater(t, c.Slope, 0.0)
}

func TestCompare_NoisyFit(t *testing.T) {
	x := readings(1, 2, 3, 4, 5, 6, 7, 8)
	y := readings(1.1, 1.9, 3.2, 3.8, 5.3, 5.9, 7.2, 7.7)

	c, err := Compare(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1, c.Slope, 0.1)
	assert.Greater(t, c.RSquared, 0.95)
	assert.Less(t, c.AdjRSq, c.RSquared)
	assert.Less(t, c.SlopeP, 0.01)
}

func TestCompare_Errors(t *testing.T) {
	_, err := Compare(readings(1, 2), readings(1, 2))
	require.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = Compare(readings(2, 2, 2), readings(1, 2, 3))
	require.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = Compare(readings(1, 2, 3), readings(1, 2))
	require.ErrorIs(t, err, domain.ErrLengthMismatch)
}

func TestCompare_ConstantY(t *testing.T) {
	// A dry spell: the gauge reads zero throughout.
	_, err := Compare(readings(1, 2, 3, 4), readings(5, 5, 5, 5))
	require.ErrorIs(t, err, domain.ErrInsufficientData)
	assert.Contains(t, err.Error(), "y has no variance")
}

func TestKendallTauB_Ties(t *testing.T) {
	// Reference values from scipy.stats.kendalltau (tau-b, asymptotic p).
	tests := []struct {
		name   string
		x, y   []float64
		tau, p float64
	}{
		{
			name: "ties in both",
			x:    []float64{0, 0, 0, 1, 2, 2, 3, 4},
			y:    []float64{0, 0, 1, 0, 2, 3, 3, 5},
			tau:  0.7916666666666666,
			p:    0.011541534700533585,
		},
		{
			name: "zero-heavy gauge",
			x:    []float64{1, 2, 3, 4, 5, 6},
			y:    []float64{0, 0, 0, 0.5, 0.5, 2},
			tau:  0.8563488385776753,
			p:    0.023751657448104452,
		},
		{
			name: "unsorted input",
			x:    []float64{4, 2, 0, 3, 0, 1, 2, 0},
			y:    []float64{5, 2, 0, 3, 1, 0, 3, 0},
			tau:  0.7916666666666666,
			p:    0.011541534700533585,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tau, p := kendallTauB(tt.x, tt.y)
			assert.InDelta(t, tt.tau, tau, 1e-12)
			assert.InDelta(t, tt.p, p, 1e-9)
		})
	}
}

func TestKendallTauB_Reversed(t *testing.T) {
	tau, p := kendallTauB([]float64{1, 2, 3, 4, 5}, []float64{11, 9, 7, 5, 3})
	assert.InDelta(t, -1, tau, 1e-12)
	assert.InDelta(t, 0.014305878435429655, p, 1e-9)
}

func TestKendallTauB_Constant(t *testing.T) {
	tau, p := kendallTauB([]float64{1, 2, 3}, []float64{0, 0, 0})
	assert.True(t, math.IsNaN(tau))
	assert.True(t, math.IsNaN(p))
}

func TestCompareColumns(t *testing.T) {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 4)
	for i := range times {
		times[i] = start.AddDate(0, 0, i)
	}
	ds, err := domain.NewDataset("imnavait", times)
	require.NoError(t, err)
	require.NoError(t, ds.SetFloats("precip", []float64{1, 2, 3, 4}))
	require.NoError(t, ds.SetFloats("reference", []float64{1.2, 2.1, 3.3, 4.4}))

	c, err := CompareColumns(ds, "precip", "reference")
	require.NoError(t, err)
	assert.Equal(t, "precip", c.X)
	assert.Equal(t, "reference", c.Y)
	assert.Contains(t, c.Equation(), "reference=1.0")

	_, err = CompareColumns(ds, "precip", "missing")
	require.ErrorIs(t, err, domain.ErrUnknownColumn)
}

func TestFormatPValue(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.0001, "p< 0.01"},
		{0.0094, "p< 0.01"},
		{0.05, "p= 0.05"},
		{0.2345, "p= 0.23"},
		{math.NaN(), "p= n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPValue(tt.p))
	}
}
