package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// kendallTauB returns Kendall's tau-b and its two-sided p-value from the
// tie-corrected normal approximation. Pairs are counted in O(n log n) by
// sorting on x and counting y inversions with a merge sort (Knight, 1966).
// Both tau and p are NaN when either series is constant.
func kendallTauB(x, y []float64) (tau, p float64) {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if x[i] != x[j] {
			return x[i] < x[j]
		}
		return y[i] < y[j]
	})

	xs := make([]float64, n)
	ys := make([]float64, n)
	for k, i := range idx {
		xs[k], ys[k] = x[i], y[i]
	}

	xt := tieRuns(xs)
	var joint int64
	for start := 0; start < n; {
		end := start + 1
		for end < n && xs[end] == xs[start] && ys[end] == ys[start] {
			end++
		}
		t := int64(end - start)
		joint += t * (t - 1) / 2
		start = end
	}

	swaps := mergeCount(ys, make([]float64, n))
	yt := tieRuns(ys) // ys is sorted now

	total := int64(n) * int64(n-1) / 2
	if xt.pairs == total || yt.pairs == total {
		return math.NaN(), math.NaN()
	}
	s := float64(total - xt.pairs - yt.pairs + joint - 2*swaps)
	tau = s / math.Sqrt(float64(total-xt.pairs)) / math.Sqrt(float64(total-yt.pairs))

	fn := float64(n)
	m := fn * (fn - 1)
	variance := (m*(2*fn+5)-xt.v1-yt.v1)/18 +
		2*float64(xt.pairs)*float64(yt.pairs)/m +
		xt.v0*yt.v0/(9*m*(fn-2))
	z := s / math.Sqrt(variance)
	p = 2 * distuv.UnitNormal.Survival(math.Abs(z))
	return tau, p
}

// ties summarizes runs of equal values in a sorted series.
type ties struct {
	pairs int64   // Σ t(t-1)/2
	v0    float64 // Σ t(t-1)(t-2)
	v1    float64 // Σ t(t-1)(2t+5)
}

func tieRuns(sorted []float64) ties {
	var out ties
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end] == sorted[start] {
			end++
		}
		if t := end - start; t > 1 {
			ft := float64(t)
			out.pairs += int64(t) * int64(t-1) / 2
			out.v0 += ft * (ft - 1) * (ft - 2)
			out.v1 += ft * (ft - 1) * (2*ft + 5)
		}
		start = end
	}
	return out
}

// mergeCount sorts v ascending and returns the number of strictly inverted
// pairs. Equal values are not counted.
func mergeCount(v, buf []float64) int64 {
	if len(v) < 2 {
		return 0
	}
	mid := len(v) / 2
	swaps := mergeCount(v[:mid], buf[:mid]) + mergeCount(v[mid:], buf[mid:])

	i, j, k := 0, mid, 0
	for i < mid && j < len(v) {
		if v[j] < v[i] {
			buf[k] = v[j]
			swaps += int64(mid - i)
			j++
		} else {
			buf[k] = v[i]
			i++
		}
		k++
	}
	k += copy(buf[k:], v[i:mid])
	copy(buf[k:], v[j:])
	copy(v, buf[:len(v)])
	return swaps
}
