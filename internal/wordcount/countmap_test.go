package wordcount

import (
	"reflect"
	"testing"
)

func TestUpsert(t *testing.T) {
	m := map[string]int{}
	double := func(n int) int { return n * 2 }

	Upsert(m, "a", 3, double)
	if m["a"] != 3 {
		t.Errorf("absent key: got %d, want 3", m["a"])
	}

	Upsert(m, "a", 3, double)
	if m["a"] != 6 {
		t.Errorf("present key: got %d, want 6", m["a"])
	}

	// A stored zero is present, so update applies rather than initial.
	m["z"] = 0
	Upsert(m, "z", 10, func(n int) int { return n + 1 })
	if m["z"] != 1 {
		t.Errorf("zero-valued key: got %d, want 1", m["z"])
	}
}

func TestTotal(t *testing.T) {
	if got := Total(Counts{}); got != 0 {
		t.Errorf("Total(empty) = %d, want 0", got)
	}
	if got := Total(Counts{"a": 2, "b": 5}); got != 7 {
		t.Errorf("Total = %d, want 7", got)
	}
	if got := Total(map[rune]uint8{'x': 1, 'y': 2}); got != 3 {
		t.Errorf("Total(uint8) = %d, want 3", got)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Counts
		want bool
	}{
		{"both empty", Counts{}, Counts{}, true},
		{"nil and empty", nil, Counts{}, true},
		{"same", Counts{"a": 1, "b": 2}, Counts{"b": 2, "a": 1}, true},
		{"different size", Counts{"a": 1}, Counts{"a": 1, "b": 1}, false},
		{"different value", Counts{"a": 1}, Counts{"a": 2}, false},
		{"different key", Counts{"a": 1}, Counts{"b": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	left := Counts{"same": 2, "more": 3, "gone": 1}
	right := Counts{"same": 2, "more": 1, "new": 4}

	want := []Difference{
		{Word: "gone", Left: 1, Right: 0},
		{Word: "more", Left: 3, Right: 1},
		{Word: "new", Left: 0, Right: 4},
	}
	if got := Diff(left, right); !reflect.DeepEqual(got, want) {
		t.Errorf("Diff = %+v, want %+v", got, want)
	}

	if got := Diff(left, left); len(got) != 0 {
		t.Errorf("Diff of identical counts = %+v, want none", got)
	}
}
