package engine

import (
	"strings"
	"time"
	"unicode"

	"NewsBroadcaster/internal/domain"
)

// overlappingSources lists source pairs whose items may describe the same
// event. Mail, calendar and weather never merge with anything.
var overlappingSources = map[[2]domain.Source]bool{
	{domain.SourceRSS, domain.SourceSocial}: true,
	{domain.SourceSocial, domain.SourceRSS}: true,
}

// Dedupe clusters items that describe one real-world event. Matching is
// pairwise token-set Jaccard over headline+body above the configured
// threshold, with timestamps inside the configured window; clusters close
// transitively (union-find), so A~B and B~C merge all three. Group order
// follows the first member's input position, keeping output deterministic.
func Dedupe(items []domain.NormalizedItem, opts Options) []domain.DedupGroup {
	if len(items) == 0 {
		return nil
	}

	parent := make([]int, len(items))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	tokens := make([]map[string]bool, len(items))
	for i, item := range items {
		tokens[i] = tokenize(item.Headline + " " + item.Body)
	}

	window := time.Duration(opts.DedupTimeWindowSeconds) * time.Second
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if !overlappingSources[[2]domain.Source{items[i].Source, items[j].Source}] {
				continue
			}
			if !withinWindow(items[i].Timestamp, items[j].Timestamp, window) {
				continue
			}
			if jaccard(tokens[i], tokens[j]) >= opts.DedupSimilarityThreshold {
				union(i, j)
			}
		}
	}

	members := map[int][]int{}
	var roots []int
	for i := range items {
		root := find(i)
		if _, seen := members[root]; !seen {
			roots = append(roots, root)
		}
		members[root] = append(members[root], i)
	}

	groups := make([]domain.DedupGroup, 0, len(roots))
	for _, root := range roots {
		idx := members[root]
		canonical := idx[0]
		for _, candidate := range idx[1:] {
			if betterCanonical(items[candidate], items[canonical]) {
				canonical = candidate
			}
		}
		group := domain.DedupGroup{Canonical: items[canonical]}
		for _, i := range idx {
			if i != canonical {
				group.Suppressed = append(group.Suppressed, items[i])
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// betterCanonical prefers the higher priority score, then the earlier source
// in enum order (rss before social), then the earlier timestamp.
func betterCanonical(candidate, current domain.NormalizedItem) bool {
	if candidate.PriorityScore != current.PriorityScore {
		return candidate.PriorityScore > current.PriorityScore
	}
	if candidate.Source.Order() != current.Source.Order() {
		return candidate.Source.Order() < current.Source.Order()
	}
	return candidate.Timestamp.Before(current.Timestamp)
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}

// tokenize lower-cases and splits on non-alphanumerics. Runs of ASCII
// letters and digits form one token; every other letter (CJK in practice)
// is its own token, since word boundaries carry no spaces there.
func tokenize(s string) map[string]bool {
	set := map[string]bool{}
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			set[word.String()] = true
			word.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		switch {
		case r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			word.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flush()
			set[string(r)] = true
		default:
			flush()
		}
	}
	flush()
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	shared := 0
	for token := range a {
		if b[token] {
			shared++
		}
	}
	unionSize := len(a) + len(b) - shared
	return float64(shared) / float64(unionSize)
}
