package engine

import (
	"strings"
	"testing"

	"NewsBroadcaster/internal/domain"
)

func longItem(source domain.Source, runes int, score float64) domain.NormalizedItem {
	return domain.NormalizedItem{
		Source:        source,
		Body:          strings.Repeat("A", runes),
		RawLength:     runes,
		PriorityScore: score,
	}
}

func TestTrimUnboundedBudget(t *testing.T) {
	t.Parallel()

	sections := []domain.Section{
		{Kind: domain.SectionTopHeadlines, Items: []domain.NormalizedItem{longItem(domain.SourceRSS, 1600, 30)}},
	}

	opts := DefaultOptions()
	trimmed, seconds, truncated := Trim(sections, opts)
	if truncated {
		t.Fatal("zero budget means unbounded, nothing should be cut")
	}
	if len(trimmed) != 1 || len(trimmed[0].Items) != 1 {
		t.Fatalf("sections changed under unbounded budget: %+v", trimmed)
	}
	if seconds != 1600.0/opts.CharsPerSecond {
		t.Fatalf("unexpected estimate: %f", seconds)
	}
}

func TestTrimDropsLifeServicesFirst(t *testing.T) {
	t.Parallel()

	sections := []domain.Section{
		{Kind: domain.SectionTopHeadlines, Items: []domain.NormalizedItem{longItem(domain.SourceRSS, 1600, 30)}},
		{Kind: domain.SectionLifeServices, Items: []domain.NormalizedItem{longItem(domain.SourceWeather, 800, 0)}},
	}

	opts := DefaultOptions()
	opts.MaxDurationSeconds = 10

	trimmed, _, truncated := Trim(sections, opts)
	if !truncated {
		t.Fatal("expected truncated=true")
	}
	if len(trimmed) != 1 {
		t.Fatalf("expected 1 surviving section, got %d", len(trimmed))
	}
	if trimmed[0].Kind != domain.SectionTopHeadlines {
		t.Fatalf("life services should be cut first, surviving: %s", trimmed[0].Kind)
	}
}

func TestTrimNeverEmptiesBroadcast(t *testing.T) {
	t.Parallel()

	sections := []domain.Section{
		{Kind: domain.SectionTopHeadlines, Items: []domain.NormalizedItem{longItem(domain.SourceRSS, 1600, 30)}},
	}

	opts := DefaultOptions()
	opts.MaxDurationSeconds = 1

	trimmed, _, truncated := Trim(sections, opts)
	if len(trimmed) != 1 || len(trimmed[0].Items) != 1 {
		t.Fatalf("last remaining item must survive an impossible budget: %+v", trimmed)
	}
	if !truncated {
		t.Fatal("impossible budget without cuts still reports truncated=false")
	}
}

func TestTrimCutsLowestRankedWithinSection(t *testing.T) {
	t.Parallel()

	// Ranked order: highest first. 10s budget fits two 48-rune items (4s
	// each at 12 chars/sec) but not three.
	sections := []domain.Section{
		{Kind: domain.SectionPersonallyRelevant, Items: []domain.NormalizedItem{
			longItem(domain.SourceSocial, 48, 90),
			longItem(domain.SourceSocial, 48, 50),
			longItem(domain.SourceSocial, 48, 10),
		}},
	}

	opts := DefaultOptions()
	opts.MaxDurationSeconds = 10

	trimmed, seconds, truncated := Trim(sections, opts)
	if !truncated {
		t.Fatal("expected truncated=true")
	}
	if len(trimmed[0].Items) != 2 {
		t.Fatalf("expected 2 surviving items, got %d", len(trimmed[0].Items))
	}
	if trimmed[0].Items[0].PriorityScore != 90 || trimmed[0].Items[1].PriorityScore != 50 {
		t.Fatalf("lowest-ranked item should go first: %+v", trimmed[0].Items)
	}
	if seconds > float64(opts.MaxDurationSeconds) {
		t.Fatalf("estimate %f exceeds budget", seconds)
	}
}

func TestTrimScheduleCutLast(t *testing.T) {
	t.Parallel()

	sections := []domain.Section{
		{Kind: domain.SectionPersonallyRelevant, Items: []domain.NormalizedItem{longItem(domain.SourceSocial, 600, 40)}},
		{Kind: domain.SectionSchedule, Items: []domain.NormalizedItem{longItem(domain.SourceCalendar, 60, 200)}},
		{Kind: domain.SectionLifeServices, Items: []domain.NormalizedItem{longItem(domain.SourceWeather, 600, 0)}},
	}

	opts := DefaultOptions()
	opts.MaxDurationSeconds = 5

	trimmed, seconds, truncated := Trim(sections, opts)
	if !truncated {
		t.Fatal("expected truncated=true")
	}
	if len(trimmed) != 1 || trimmed[0].Kind != domain.SectionSchedule {
		t.Fatalf("schedule must be the last section standing: %+v", trimmed)
	}
	if seconds != 5 {
		t.Fatalf("unexpected final estimate: %f", seconds)
	}
}

func TestTrimNoCutMeansNotTruncated(t *testing.T) {
	t.Parallel()

	sections := []domain.Section{
		{Kind: domain.SectionTopHeadlines, Items: []domain.NormalizedItem{longItem(domain.SourceRSS, 60, 30)}},
	}

	opts := DefaultOptions()
	opts.MaxDurationSeconds = 100

	_, seconds, truncated := Trim(sections, opts)
	if truncated {
		t.Fatal("under-budget broadcast must not be truncated")
	}
	if seconds != 5 {
		t.Fatalf("unexpected estimate: %f", seconds)
	}
}
