package stats

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
	gfloats "gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Number interface {
	constraints.Integer | constraints.Float
}

func floats[T Number](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func Sum[T Number](xs []T) float64 {
	return gfloats.Sum(floats(xs))
}

// Mean returns NaN for an empty slice.
func Mean[T Number](xs []T) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(floats(xs), nil)
}

// Var is the population variance.
func Var[T Number](xs []T) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.PopVariance(floats(xs), nil)
}

func Std[T Number](xs []T) float64 {
	return math.Sqrt(Var(xs))
}

// Moment returns the mean of x^order, or of (x-mean)^order when center is
// set.
func Moment[T Number](xs []T, order int, center bool) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	fs := floats(xs)
	if center {
		return stat.Moment(float64(order), fs, nil)
	}
	return stat.MomentAbout(float64(order), fs, 0, nil)
}

// Median averages the two middle values of an even-length sample.
func Median[T Number](xs []T) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := floats(xs)
	sort.Float64s(s)
	m := stat.Quantile(0.5, stat.Empirical, s, nil)
	if len(s)%2 == 0 {
		m = (m + s[len(s)/2]) / 2
	}
	return m
}

func Max[T Number](xs []T) (T, bool) {
	var m T
	if len(xs) == 0 {
		return m, false
	}
	m = xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m, true
}

func Min[T Number](xs []T) (T, bool) {
	var m T
	if len(xs) == 0 {
		return m, false
	}
	m = xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m, true
}

// Pearson returns the correlation coefficient of paired samples. It is NaN
// when either side has zero variance.
func Pearson[T Number](xs, ys []T) float64 {
	if len(xs) == 0 || len(xs) != len(ys) {
		return math.NaN()
	}
	return stat.Correlation(floats(xs), floats(ys), nil)
}

// toFloat converts the numeric kinds a stat or attribute may hold.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
