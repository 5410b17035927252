// Package combin enumerates and indexes k-subsets of {0, ..., n-1} on top
// of gonum's combinatorics.
//
// Subsets are handled as ascending index slices, which lets random
// generators skip through the space of candidate edges by rank instead of
// materialising it.
package combin

import (
	"math"

	gcombin "gonum.org/v1/gonum/stat/combin"
)

// Binomial returns n choose k. ok is false when the result, or an
// intermediate product of computing it, does not fit in an int.
func Binomial(n, k int) (c int, ok bool) {
	if k < 0 || n < 0 || k > n {
		return 0, true
	}
	if gcombin.GeneralizedBinomial(float64(n), float64(k))*float64(n) >= math.MaxInt {
		return 0, false
	}
	return gcombin.Binomial(n, k), true
}

// Each calls fn with every k-subset in lexicographic order. The slice is
// reused between calls. Returning false stops the walk.
func Each(n, k int, fn func(idx []int) bool) {
	if k < 0 || k > n {
		return
	}
	gen := gcombin.NewCombinationGenerator(n, k)
	idx := make([]int, k)
	for gen.Next() {
		if !fn(gen.Combination(idx)) {
			return
		}
	}
}

// Unrank writes the k-subset with index r into dst (grown if needed) and
// returns it. Distinct r in [0, Binomial(n, k)) give distinct subsets.
func Unrank(n, k, r int, dst []int) []int {
	if cap(dst) < k {
		dst = make([]int, k)
	}
	return gcombin.IndexToCombination(dst[:k], r, n, k)
}

// Subsets returns all k-subsets of items, in lexicographic order of
// position.
func Subsets[T any](items []T, k int) [][]T {
	out := make([][]T, 0)
	Each(len(items), k, func(idx []int) bool {
		s := make([]T, k)
		for i, j := range idx {
			s[i] = items[j]
		}
		out = append(out, s)
		return true
	})
	return out
}
