package search

import (
	"sort"
	"strings"

	"github.com/hpungsan/clipd/internal/clip"
)

// Filter ranks entries against a query. An empty or whitespace-only
// query returns the input unchanged. Each entry is scored independently
// against its displayable text and its preview; it is included if either
// matches, at the better of the two scores. The sort is stable so equal
// scores keep the input's relative order.
func Filter(entries []clip.Entry, query string) []clip.Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}

	type scored struct {
		entry clip.Entry
		score int
	}

	matched := make([]scored, 0, len(entries))
	for _, e := range entries {
		displayOK, displayScore := Match(e.Payload.Display(), query)
		previewOK, previewScore := Match(e.Preview, query)
		if !displayOK && !previewOK {
			continue
		}
		score := displayScore
		if previewScore > score {
			score = previewScore
		}
		matched = append(matched, scored{entry: e, score: score})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].score > matched[j].score
	})

	out := make([]clip.Entry, len(matched))
	for i, m := range matched {
		out[i] = m.entry
	}
	return out
}
