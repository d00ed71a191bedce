// Package analysis summarizes the relationship between two cleaned columns,
// e.g. gauge precipitation against a reference, without any plotting.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/wx-clean-service/internal/domain"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minPairs is the smallest sample with a defined slope standard error.
const minPairs = 3

var (
	errNoVariance = errors.New("x has no variance")
	errConstantY  = errors.New("y has no variance")
)

// Comparison is an OLS fit of y on x plus a rank correlation.
type Comparison struct {
	X string `json:"x,omitempty"`
	Y string `json:"y,omitempty"`
	N int    `json:"n"`

	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	AdjRSq    float64 `json:"adj_r_squared"`
	SlopeP    float64 `json:"slope_p"`

	KendallTau float64 `json:"kendall_tau"`
	KendallP   float64 `json:"kendall_p"`
}

// CompareColumns runs Compare on two columns of ds.
func CompareColumns(ds *domain.Dataset, xColumn, yColumn string) (Comparison, error) {
	x, err := ds.Column(xColumn)
	if err != nil {
		return Comparison{}, err
	}
	y, err := ds.Column(yColumn)
	if err != nil {
		return Comparison{}, err
	}
	c, err := Compare(x, y)
	if err != nil {
		return Comparison{}, fmt.Errorf("compare %s and %s: %w", xColumn, yColumn, err)
	}
	c.X, c.Y = xColumn, yColumn
	return c, nil
}

// Compare fits y = slope·x + intercept by ordinary least squares over the rows
// where both readings are present and computes Kendall's tau on the same
// rows. The slope p-value is two-sided from Student's t. Tau is tau-b and its
// p-value uses the tie-corrected normal approximation. A constant x or y
// yields ErrInsufficientData.
func Compare(x, y []domain.Reading) (Comparison, error) {
	if len(x) != len(y) {
		return Comparison{}, domain.ErrLengthMismatch
	}
	xs, ys := completePairs(x, y)
	n := len(xs)
	if n < minPairs {
		return Comparison{}, fmt.Errorf("%d complete pairs: %w", n, domain.ErrInsufficientData)
	}

	mx := stat.Mean(xs, nil)
	var sxx float64
	for _, v := range xs {
		sxx += (v - mx) * (v - mx)
	}
	if sxx == 0 {
		return Comparison{}, fmt.Errorf("%w: %w", errNoVariance, domain.ErrInsufficientData)
	}

	if stat.Variance(ys, nil) == 0 {
		return Comparison{}, fmt.Errorf("%w: %w", errConstantY, domain.ErrInsufficientData)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, intercept, slope)

	var ssr float64
	for i := range xs {
		res := ys[i] - (intercept + slope*xs[i])
		ssr += res * res
	}
	df := float64(n - 2)
	se := math.Sqrt(ssr / df / sxx)

	c := Comparison{
		N:         n,
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		AdjRSq:    1 - (1-r2)*float64(n-1)/df,
		SlopeP:    studentTwoSided(slope/se, df),
	}

	c.KendallTau, c.KendallP = kendallTauB(xs, ys)
	return c, nil
}

func studentTwoSided(t, df float64) float64 {
	if math.IsInf(t, 0) {
		return 0
	}
	if math.IsNaN(t) {
		return math.NaN()
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

func completePairs(x, y []domain.Reading) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		xv, xok := x[i].Get()
		yv, yok := y[i].Get()
		if xok && yok {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	return xs, ys
}

// FormatPValue renders a p-value for figure captions: "p< 0.01" when it
// rounds below 0.01, otherwise "p= " and the first two decimals. An undefined
// p-value renders as "p= n/a".
func FormatPValue(p float64) string {
	if math.IsNaN(p) || p < 0 {
		return "p= n/a"
	}
	if math.Round(p*1000)/1000 < 0.01 {
		return "p< 0.01"
	}
	return "p= " + truncate(fmt.Sprintf("%f", p), 4)
}

// Equation renders the fit the way it is printed under a correlation plot.
func (c Comparison) Equation() string {
	slope := fmt.Sprintf("%f", c.Slope)
	intercept := fmt.Sprintf("%f", c.Intercept)
	return fmt.Sprintf("%s=%sx %s+%s; R^2= %.2f; %s",
		c.Y, truncate(slope, 4), c.X, truncate(intercept, 6), c.AdjRSq, FormatPValue(c.SlopeP))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
