// Package wordcount tokenizes text into words and tallies their occurrences.
//
// A word is a maximal run of letters and decimal digits inside a single line.
// Every other character, line terminators included, separates words and is
// never part of one.
package wordcount

import "unicode"

// Counts maps each distinct word to the number of times it occurred.
// Keys are case-sensitive and never empty.
type Counts map[string]int

// IsWordRune reports whether r may appear inside a word.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsWord reports whether s could be a key of Counts: non-empty and made only
// of word runes.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsWordRune(r) {
			return false
		}
	}
	return true
}

// Count tokenizes each line and returns the occurrence count of every word.
// The result is never nil.
func Count(lines []string) Counts {
	counts := make(Counts)
	for _, line := range lines {
		countLine(counts, line)
	}
	return counts
}

// CountText counts a whole text as a single input. Line terminators are
// separators, so CountText(strings.Join(lines, "\n")) equals Count(lines).
func CountText(text string) Counts {
	return Count([]string{text})
}

// countLine adds the words of one line to counts.
func countLine(counts Counts, line string) {
	start := -1
	for i, r := range line {
		if IsWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			add(counts, line[start:i])
			start = -1
		}
	}
	// Word ending at the line boundary
	if start >= 0 {
		add(counts, line[start:])
	}
}

func add(counts Counts, word string) {
	Upsert(counts, word, 1, increment)
}

func increment(n int) int {
	return n + 1
}

