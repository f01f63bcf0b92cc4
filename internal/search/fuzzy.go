// Package search ranks history entries against a query with a fuzzy
// scorer: substring hits outrank subsequence hits, and contiguous
// subsequence runs outrank scattered ones.
package search

import (
	"strings"
	"unicode/utf8"
)

// Scoring constants. The arithmetic is load-bearing: ranking tests
// reproduce it exactly.
const (
	substringBase  = 100
	shortTextBonus = 100
	charAward      = 10
	runAward       = 5
)

// Match scores query against text. Reports whether the query matches at
// all, and a score for ranking:
//   - empty query matches everything at score 0
//   - case-insensitive substring: 100 + max(0, 100-chars(text)), so
//     shorter texts rank higher for the same literal hit
//   - otherwise a subsequence walk over text, awarding 10 + 5*run for
//     each matched query character; a miss resets the run. The whole
//     query must be consumed or the score is 0.
func Match(text, query string) (bool, int) {
	if query == "" {
		return true, 0
	}

	lowText := strings.ToLower(text)
	lowQuery := strings.ToLower(query)

	// Text length counts runes, matching the rune-based walk below, so
	// multibyte text scores the same as its ASCII twin.
	if strings.Contains(lowText, lowQuery) {
		bonus := shortTextBonus - utf8.RuneCountInString(text)
		if bonus < 0 {
			bonus = 0
		}
		return true, substringBase + bonus
	}

	score := 0
	run := 0
	qi := 0
	qRunes := []rune(lowQuery)
	for _, r := range lowText {
		if qi < len(qRunes) && r == qRunes[qi] {
			score += charAward + runAward*run
			run++
			qi++
		} else {
			run = 0
		}
	}
	if qi < len(qRunes) {
		return false, 0
	}
	return true, score
}
