// Package verify re-checks a rendered script against the structural
// guarantees of the broadcast it was produced from. It exists for the
// non-deterministic renderer path: the engine's output is correct by
// construction, but a language model may still reorder or unmask content.
package verify

import (
	"fmt"
	"strings"

	"NewsBroadcaster/internal/domain"
)

// Check returns a list of structural problems found in the rendered script:
// missing or misordered section headers, and unmasked identities that the
// broadcast carried only in masked form. An empty result means the script
// preserved what it was given.
func Check(script string, broadcast domain.Broadcast) []string {
	var problems []string

	lastPos := -1
	lastTitle := ""
	for _, section := range broadcast.Sections {
		title := section.Kind.Title()
		pos := strings.Index(script, title)
		if pos < 0 {
			problems = append(problems, fmt.Sprintf("section %q missing from script", title))
			continue
		}
		if pos < lastPos {
			problems = append(problems, fmt.Sprintf("section %q appears before %q", title, lastTitle))
		}
		lastPos = pos
		lastTitle = title
	}

	for _, section := range broadcast.Sections {
		for _, item := range section.Items {
			for _, unmasked := range unmaskedForms(item.Identity) {
				if strings.Contains(script, unmasked) {
					problems = append(problems, fmt.Sprintf("script reintroduces unmasked address for %q", item.Identity))
				}
			}
		}
	}

	return problems
}

// unmaskedForms guesses plausible unmasked variants of a masked address so
// leaks of the original can be caught. Only the masked marker position is
// known, so this stays heuristic: it reports the domain appearing without
// the mask marker in front of it.
func unmaskedForms(identity string) []string {
	at := strings.Index(identity, "***@")
	if at < 0 {
		return nil
	}
	prefix := identity[:at]
	domainPart := identity[at+len("***"):]
	if prefix == "" || domainPart == "" {
		return nil
	}
	// Any longer local part ending right before @domain is a leak.
	return []string{prefix + "@" + strings.TrimPrefix(domainPart, "@")}
}
