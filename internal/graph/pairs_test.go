package graph

import (
	"testing"
	"time"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct{ X, Y int }

func collect(seq func(yield func(int, int) bool)) []pair {
	var out []pair
	seq(func(x, y int) bool {
		out = append(out, pair{x, y})
		return true
	})
	return out
}

func TestPairsRowMajor(t *testing.T) {
	got := collect(Pairs([]int{1, 2}, []int{10, 20, 30}))
	want := []pair{
		{1, 10}, {1, 20}, {1, 30},
		{2, 10}, {2, 20}, {2, 30},
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestPairsEmptySides(t *testing.T) {
	assert.Empty(t, collect(Pairs(nil, []int{1, 2})))
	assert.Empty(t, collect(Pairs([]int{1, 2}, nil)))
}

func TestPairsEarlyStop(t *testing.T) {
	var seen int
	Pairs([]int{1, 2, 3}, []int{4, 5, 6})(func(x, y int) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen, "a false yield stops the producer immediately")
}

func TestPairsAboutOrderAndDuplicates(t *testing.T) {
	got := collect(PairsAbout([]int{1, 2, 3}, []int{3, 4, 5}, 3))
	want := []pair{
		// Phase one: pivot occurrences in xs, against all of ys.
		{3, 3}, {3, 4}, {3, 5},
		// Phase two: all of xs, against pivot occurrences in ys. The pair
		// (3, 3) shows up again; both phases found it independently.
		{1, 3}, {2, 3}, {3, 3},
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestPairsAboutPivotAbsent(t *testing.T) {
	assert.Empty(t, collect(PairsAbout([]int{1, 2}, []int{3, 4}, 9)))
}

func TestPairsAboutPivotOnlyInOneSide(t *testing.T) {
	got := collect(PairsAbout([]int{7, 1}, []int{2, 3}, 7))
	want := []pair{{7, 2}, {7, 3}}
	assert.Empty(t, cmp.Diff(want, got))

	got = collect(PairsAbout([]int{2, 3}, []int{1, 7}, 7))
	want = []pair{{2, 7}, {3, 7}}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestPairsAboutEarlyStop(t *testing.T) {
	var seen int
	PairsAbout([]int{3, 1, 2}, []int{3, 4, 5}, 3)(func(x, y int) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)
}

// With a single pivot occurrence per side the output is exactly 2N pairs,
// so enumeration must stay linear even where the cross product would have
// N squared entries.
func TestPairsAboutLinearAtScale(t *testing.T) {
	const n = 500_000
	xs := make([]int, n)
	ys := make([]int, n)
	for i := range xs {
		xs[i] = i
		ys[i] = i + n
	}
	const pivot = n / 2
	ys[n/2] = pivot

	start := time.Now()
	var count int
	PairsAbout(xs, ys, pivot)(func(x, y int) bool {
		count++
		return true
	})
	elapsed := time.Since(start)

	assert.Equal(t, 2*n, count)
	assert.Less(t, elapsed, time.Second, "enumeration must not degenerate to the cross product")
}

// Property: the emitted pair count always equals
// count(pivot, xs)*len(ys) + len(xs)*count(pivot, ys), and every emitted
// pair touches the pivot.
func FuzzPairsAboutCount(f *testing.F) {
	f.Add([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	f.Add([]byte{0, 0, 0, 0})
	f.Fuzz(func(t *testing.T, data []byte) {
		fz := fuzz.NewConsumer(data)
		var xs, ys []byte
		if err := fz.CreateSlice(&xs); err != nil {
			t.Skip()
		}
		if err := fz.CreateSlice(&ys); err != nil {
			t.Skip()
		}
		pivot, err := fz.GetByte()
		if err != nil {
			t.Skip()
		}

		occurrences := func(s []byte) int {
			n := 0
			for _, v := range s {
				if v == pivot {
					n++
				}
			}
			return n
		}
		want := occurrences(xs)*len(ys) + len(xs)*occurrences(ys)

		var got int
		PairsAbout(xs, ys, pivot)(func(x, y byte) bool {
			require.True(t, x == pivot || y == pivot)
			got++
			return true
		})
		require.Equal(t, want, got)
	})
}
