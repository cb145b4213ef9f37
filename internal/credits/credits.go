// Package credits implements the billing arithmetic for detection requests.
package credits

import "strings"

// DollarsPerCredit is the fixed unit price applied when reporting cost.
const DollarsPerCredit = 0.05

// ForWordCount returns the number of billing credits for a word count:
// one credit per started thousand words, zero for empty text.
func ForWordCount(wordCount int) int {
	if wordCount == 0 {
		return 0
	}
	n := (wordCount + 999) / 1000
	if n < 1 {
		n = 1
	}
	return n
}

// CountWords counts whitespace-separated tokens. Word counts fed into
// ForWordCount are always derived this way, so they are never negative.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Total sums ForWordCount over a set of word counts. The per-record floor
// makes the formula nonlinear, so totals cannot be computed from a plain
// sum of words.
func Total(wordCounts []int) int {
	total := 0
	for _, wc := range wordCounts {
		total += ForWordCount(wc)
	}
	return total
}
