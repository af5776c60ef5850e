// Package report renders word counts as a frequency-sorted text report.
package report

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/nvandessel/wordcount/internal/wordcount"
)

// Entry is one line of a report.
type Entry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// String formats the entry as "word, count".
func (e Entry) String() string {
	return e.Word + ", " + strconv.Itoa(e.Count)
}

// Sorted returns the entries of counts ordered by count, highest first.
// Words with equal counts are ordered lexically (byte-wise, ascending).
func Sorted(counts wordcount.Counts) []Entry {
	entries := make([]Entry, 0, len(counts))
	for word, n := range counts {
		entries = append(entries, Entry{Word: word, Count: n})
	}
	slices.SortStableFunc(entries, compareEntries)
	return entries
}

func compareEntries(a, b Entry) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return strings.Compare(a.Word, b.Word)
}

// Top returns at most n entries. n <= 0 returns all of them.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// Render formats counts one entry per line, each terminated by "\n".
// An empty Counts renders as "".
func Render(counts wordcount.Counts) string {
	return RenderEntries(Sorted(counts))
}

// RenderEntries formats already sorted entries the way Render does.
func RenderEntries(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
