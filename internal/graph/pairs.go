package graph

import "iter"

// Pairs lazily yields the full cross product of xs and ys in row-major order:
// x0 with every y, then x1 with every y, and so on. The sequence is finite
// and restartable only by re-invocation.
func Pairs[T comparable](xs, ys []T) iter.Seq2[T, T] {
	return func(yield func(T, T) bool) {
		for _, x := range xs {
			for _, y := range ys {
				if !yield(x, y) {
					return
				}
			}
		}
	}
}

// PairsAbout lazily yields only the candidate pairs touching pivot, without
// materializing the cross product: first every occurrence of pivot in xs
// paired with all of ys in order, then every element of xs in order paired
// with each occurrence of pivot in ys. The pair (pivot, pivot) is re-emitted
// once per occurrence found in each phase; callers needing deduplication do
// it downstream. Output size is bounded by
// count(pivot, xs)*len(ys) + len(xs)*count(pivot, ys), which stays linear
// when the pivot occurs a bounded number of times.
func PairsAbout[T comparable](xs, ys []T, pivot T) iter.Seq2[T, T] {
	return func(yield func(T, T) bool) {
		for _, x := range xs {
			if x != pivot {
				continue
			}
			for _, y := range ys {
				if !yield(x, y) {
					return
				}
			}
		}

		var hits []T
		for _, y := range ys {
			if y == pivot {
				hits = append(hits, y)
			}
		}
		if len(hits) == 0 {
			return
		}
		for _, x := range xs {
			for _, y := range hits {
				if !yield(x, y) {
					return
				}
			}
		}
	}
}
