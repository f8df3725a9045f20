package engine

import "NewsBroadcaster/internal/domain"

// sectionOrder is the fixed rendering order of the broadcast.
var sectionOrder = []domain.SectionKind{
	domain.SectionTopHeadlines,
	domain.SectionPersonallyRelevant,
	domain.SectionSchedule,
	domain.SectionLifeServices,
}

// Assemble routes each group's canonical item into its section and returns
// the non-empty sections in fixed order. An rss group that merged with a
// social item counts as personally relevant, not a headline.
func Assemble(groups []domain.DedupGroup) []domain.Section {
	buckets := map[domain.SectionKind][]domain.NormalizedItem{}
	for _, group := range groups {
		kind := sectionFor(group)
		buckets[kind] = append(buckets[kind], group.Canonical)
	}

	sections := make([]domain.Section, 0, len(sectionOrder))
	for _, kind := range sectionOrder {
		if items := buckets[kind]; len(items) > 0 {
			sections = append(sections, domain.Section{Kind: kind, Items: items})
		}
	}
	return sections
}

func sectionFor(group domain.DedupGroup) domain.SectionKind {
	switch group.Canonical.Source {
	case domain.SourceRSS:
		if group.HasSource(domain.SourceSocial) {
			return domain.SectionPersonallyRelevant
		}
		return domain.SectionTopHeadlines
	case domain.SourceSocial, domain.SourceMail:
		return domain.SectionPersonallyRelevant
	case domain.SourceCalendar:
		return domain.SectionSchedule
	case domain.SourceWeather:
		return domain.SectionLifeServices
	default:
		// Unknown sources pass through to the personal section.
		return domain.SectionPersonallyRelevant
	}
}
