package engine

import (
	"sort"

	"NewsBroadcaster/internal/domain"
)

// Rank orders items by priority score descending, with ties broken by
// timestamp descending and then source enum order; the sort is stable, so
// full ties keep insertion order. A positive cap drops everything beyond it
// for good; dropped items are not reconsidered by the trimmer.
func Rank(items []domain.NormalizedItem, cap int) []domain.NormalizedItem {
	ranked := make([]domain.NormalizedItem, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].PriorityScore != ranked[j].PriorityScore {
			return ranked[i].PriorityScore > ranked[j].PriorityScore
		}
		if !ranked[i].Timestamp.Equal(ranked[j].Timestamp) {
			return ranked[i].Timestamp.After(ranked[j].Timestamp)
		}
		return ranked[i].Source.Order() < ranked[j].Source.Order()
	})

	if cap > 0 && len(ranked) > cap {
		ranked = ranked[:cap]
	}
	return ranked
}
