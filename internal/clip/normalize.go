package clip

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeText trims surrounding whitespace from captured text. Internal
// whitespace is preserved: the captured content must round-trip exactly.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}

// Preview derives a bounded single-line summary from a payload. Runs of
// whitespace collapse to single spaces and the result is truncated at
// maxChars runes. Derived once at creation and never recomputed on touch.
func Preview(p Payload, maxChars int) string {
	return previewLine(p.Display(), maxChars)
}

func previewLine(s string, maxChars int) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space && b.Len() > 0 {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}

	out := strings.TrimRight(b.String(), " ")
	if maxChars > 0 && utf8.RuneCountInString(out) > maxChars {
		runes := []rune(out)
		out = string(runes[:maxChars-1]) + "…"
	}
	return out
}
