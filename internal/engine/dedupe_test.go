package engine

import (
	"testing"
	"time"

	"NewsBroadcaster/internal/domain"
)

func rssItem(headline, body string, ts time.Time, score float64) domain.NormalizedItem {
	return domain.NormalizedItem{Source: domain.SourceRSS, Headline: headline, Body: body, Timestamp: ts, PriorityScore: score}
}

func socialItem(body string, ts time.Time, score float64) domain.NormalizedItem {
	return domain.NormalizedItem{Source: domain.SourceSocial, Body: body, Timestamp: ts, PriorityScore: score}
}

func TestDedupeMergesRSSAndSocial(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.March, 10, 7, 0, 0, 0, time.UTC)
	items := []domain.NormalizedItem{
		rssItem("SpaceX launches new rocket", "SpaceX launches new rocket successfully.", ts, 37),
		socialItem("SpaceX launches new rocket successfully.", ts.Add(30*time.Minute), 1100),
	}

	groups := Dedupe(items, DefaultOptions())
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Canonical.Source != domain.SourceSocial {
		t.Fatalf("higher-scored member should be canonical, got %s", groups[0].Canonical.Source)
	}
	if len(groups[0].Suppressed) != 1 {
		t.Fatalf("expected 1 suppressed member, got %d", len(groups[0].Suppressed))
	}
}

func TestDedupeMailNeverMerges(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.March, 10, 7, 0, 0, 0, time.UTC)
	items := []domain.NormalizedItem{
		rssItem("quarterly results announced", "quarterly results announced today", ts, 10),
		{Source: domain.SourceMail, Headline: "quarterly results announced", Body: "quarterly results announced today", Timestamp: ts, PriorityScore: 50},
	}

	groups := Dedupe(items, DefaultOptions())
	if len(groups) != 2 {
		t.Fatalf("mail must not merge with rss, got %d groups", len(groups))
	}
}

func TestDedupeRespectsTimeWindow(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	items := []domain.NormalizedItem{
		rssItem("SpaceX launches new rocket", "SpaceX launches new rocket successfully.", ts, 10),
		socialItem("SpaceX launches new rocket successfully.", ts.Add(7*time.Hour), 20),
	}

	groups := Dedupe(items, DefaultOptions())
	if len(groups) != 2 {
		t.Fatalf("items outside the window must not merge, got %d groups", len(groups))
	}
}

func TestDedupeTransitiveClosure(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.March, 10, 7, 0, 0, 0, time.UTC)
	a := rssItem("", "alpha beta gamma delta", ts, 5)
	b := socialItem("alpha beta gamma delta epsilon zeta", ts.Add(time.Hour), 50)
	c := rssItem("", "gamma delta epsilon zeta", ts.Add(2*time.Hour), 5)

	// a~b and b~c clear the threshold; a~c alone would not.
	groups := Dedupe([]domain.NormalizedItem{a, b, c}, DefaultOptions())
	if len(groups) != 1 {
		t.Fatalf("expected transitive merge into 1 group, got %d", len(groups))
	}
	if len(groups[0].Suppressed) != 2 {
		t.Fatalf("expected 2 suppressed members, got %d", len(groups[0].Suppressed))
	}
}

func TestDedupeIdempotent(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.March, 10, 7, 0, 0, 0, time.UTC)
	items := []domain.NormalizedItem{
		rssItem("SpaceX launches new rocket", "SpaceX launches new rocket successfully.", ts, 37),
		socialItem("SpaceX launches new rocket successfully.", ts.Add(30*time.Minute), 1100),
		rssItem("AI policy update", "Regulators publish a new framework.", ts, 30),
	}

	first := Dedupe(items, DefaultOptions())
	canonicals := make([]domain.NormalizedItem, 0, len(first))
	for _, group := range first {
		canonicals = append(canonicals, group.Canonical)
	}

	second := Dedupe(canonicals, DefaultOptions())
	if len(second) != len(first) {
		t.Fatalf("re-running dedupe merged further: %d -> %d groups", len(first), len(second))
	}
	for _, group := range second {
		if len(group.Suppressed) != 0 {
			t.Fatalf("re-running dedupe suppressed items: %+v", group)
		}
	}
}

func TestDedupeCanonicalTieBreak(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.March, 10, 7, 0, 0, 0, time.UTC)
	social := socialItem("identical breaking story text", ts, 40)
	rss := rssItem("", "identical breaking story text", ts.Add(time.Minute), 40)

	groups := Dedupe([]domain.NormalizedItem{social, rss}, DefaultOptions())
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Canonical.Source != domain.SourceRSS {
		t.Fatalf("equal scores should prefer rss, got %s", groups[0].Canonical.Source)
	}
}
