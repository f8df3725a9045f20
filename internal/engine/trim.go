package engine

import "NewsBroadcaster/internal/domain"

// cutOrder lists sections from the first to sacrifice to the last. Calendar
// entries are time-actionable and go last.
var cutOrder = []domain.SectionKind{
	domain.SectionLifeServices,
	domain.SectionTopHeadlines,
	domain.SectionPersonallyRelevant,
	domain.SectionSchedule,
}

// Trim removes whole items until the estimated spoken duration fits the
// budget. Within a section the lowest-ranked item goes first, and the next
// section in cut order is touched only once the current one is empty. The
// final remaining item is never removed: an impossible budget yields the
// minimal best-effort broadcast with truncated=true rather than nothing.
// A budget of zero means unbounded.
func Trim(sections []domain.Section, opts Options) ([]domain.Section, float64, bool) {
	total := 0.0
	count := 0
	for _, section := range sections {
		for _, item := range section.Items {
			total += itemSeconds(item, opts)
			count++
		}
	}

	budget := float64(opts.MaxDurationSeconds)
	if opts.MaxDurationSeconds <= 0 || total <= budget {
		return sections, total, false
	}

	trimmed := make([]domain.Section, len(sections))
	copy(trimmed, sections)
	for i := range trimmed {
		items := make([]domain.NormalizedItem, len(trimmed[i].Items))
		copy(items, trimmed[i].Items)
		trimmed[i].Items = items
	}

	truncated := false
	for total > budget && count > 1 {
		idx := nextCut(trimmed)
		if idx < 0 {
			break
		}
		items := trimmed[idx].Items
		last := items[len(items)-1]
		trimmed[idx].Items = items[:len(items)-1]
		total -= itemSeconds(last, opts)
		count--
		truncated = true
	}

	kept := trimmed[:0]
	for _, section := range trimmed {
		if len(section.Items) > 0 {
			kept = append(kept, section)
		}
	}
	return kept, total, truncated
}

// nextCut picks the first non-empty section in cut order; items leave in
// reverse rank order, so the victim is always the section's last item.
func nextCut(sections []domain.Section) int {
	for _, kind := range cutOrder {
		for i, section := range sections {
			if section.Kind == kind && len(section.Items) > 0 {
				return i
			}
		}
	}
	return -1
}

func itemSeconds(item domain.NormalizedItem, opts Options) float64 {
	return float64(item.RawLength) / opts.CharsPerSecond
}
