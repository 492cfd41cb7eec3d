package drawsheet

import (
	"sort"
	"strings"
)

// mergeRecords collapses candidate records from every page and pane into
// at most one record per merge key. The same draw shows up more than
// once when a bulletin reprints a running total across pages, or when a
// pane-boundary ambiguity lets both panes pick up one row; the copy with
// the higher-ranked tag is the canonical one, and on equal rank the
// first-seen copy stays.
//
// Output is ordered ascending by date, then by the game's session order.
func mergeRecords(candidates []DrawRecord, game GameConfig) []DrawRecord {
	byKey := make(map[MergeKey]DrawRecord, len(candidates))
	for _, rec := range candidates {
		key := rec.Key(game)
		existing, seen := byKey[key]
		if !seen || tagRank(rec, game) > tagRank(existing, game) {
			byKey[key] = rec
		}
	}

	merged := make([]DrawRecord, 0, len(byKey))
	for _, rec := range byKey {
		merged = append(merged, rec)
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.Before(merged[j].Date)
		}
		si, sj := sessionOrder(merged[i].Session, game), sessionOrder(merged[j].Session, game)
		if si != sj {
			return si < sj
		}
		// Primary before variants; keeps output stable across runs even
		// though map iteration is not.
		return merged[i].Tag < merged[j].Tag
	})
	return merged
}

// tagRank is the record's merge priority. Untagged records rank at the
// game's configured untagged priority; tags missing from the vocabulary
// rank zero, below everything, since a tag the game does not define is
// provisional at best. Matching is case-insensitive because classified
// tags are stored uppercased regardless of how the priority table or
// the bulletin spells them.
func tagRank(rec DrawRecord, game GameConfig) int {
	if rec.Tag == "" {
		return game.UntaggedPriority
	}
	for tag, rank := range game.TagPriority {
		if strings.EqualFold(tag, rec.Tag) {
			return rank
		}
	}
	return 0
}

// sessionOrder places a session label in the game's declared order;
// unknown labels sort last.
func sessionOrder(session string, game GameConfig) int {
	for i, s := range game.Sessions {
		if session == s {
			return i
		}
	}
	return len(game.Sessions)
}
