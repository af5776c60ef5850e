package wordcount

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/exp/constraints"
)

// Upsert inserts initial under key when key is absent, otherwise replaces the
// current value with update(current).
func Upsert[K comparable, V any](m map[K]V, key K, initial V, update func(V) V) {
	if current, ok := m[key]; ok {
		m[key] = update(current)
		return
	}
	m[key] = initial
}

// Total sums every count in m.
func Total[K comparable, V constraints.Integer](m map[K]V) V {
	var sum V
	for _, n := range m {
		sum += n
	}
	return sum
}

// Equal reports whether a and b hold the same words with the same counts.
func Equal(a, b Counts) bool {
	return maps.Equal(a, b)
}

// Difference describes a word whose count differs between two Counts.
// A count of zero means the word is absent on that side.
type Difference struct {
	Word  string `json:"word"`
	Left  int    `json:"left"`
	Right int    `json:"right"`
}

// Diff lists the words whose counts differ between left and right, sorted by word.
func Diff(left, right Counts) []Difference {
	var diffs []Difference
	for word, l := range left {
		if r := right[word]; r != l {
			diffs = append(diffs, Difference{Word: word, Left: l, Right: r})
		}
	}
	for word, r := range right {
		if _, ok := left[word]; !ok {
			diffs = append(diffs, Difference{Word: word, Right: r})
		}
	}
	slices.SortFunc(diffs, func(a, b Difference) int {
		return strings.Compare(a.Word, b.Word)
	})
	return diffs
}
