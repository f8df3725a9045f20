package engine

import (
	"log/slog"
	"sync"
	"time"

	"NewsBroadcaster/internal/domain"
)

// Compiler runs the full assembly pipeline. It holds configuration only;
// every Compile call owns its working set end-to-end, so concurrent calls
// never interfere.
type Compiler struct {
	opts   Options
	logger *slog.Logger
}

// NewCompiler sanitizes the options (clamping out-of-range values with a
// warning) and returns a reusable compiler.
func NewCompiler(opts Options, logger *slog.Logger) *Compiler {
	return &Compiler{opts: opts.sanitized(logger), logger: logger}
}

// Compile turns raw source blocks into the final Broadcast plus the dedup
// groups for audit. The reference time is injected, never read from the
// clock, so identical inputs always yield identical broadcasts. Source
// blocks normalize and mask concurrently; results join in input order
// before deduplication, which keeps the fan-out invisible in the output.
func (c *Compiler) Compile(now time.Time, inputs []domain.SourceInput) (domain.Broadcast, []domain.DedupGroup) {
	perSource := make([][]domain.NormalizedItem, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input domain.SourceInput) {
			defer wg.Done()
			normalized := Normalize(input.Source, input.Items, c.opts, now)
			for j := range normalized {
				normalized[j] = Mask(normalized[j])
			}
			perSource[i] = normalized
		}(i, input)
	}
	wg.Wait()

	var items []domain.NormalizedItem
	for _, batch := range perSource {
		items = append(items, batch...)
	}

	groups := Dedupe(items, c.opts)
	sections := Assemble(groups)
	for i := range sections {
		sections[i].Items = Rank(sections[i].Items, c.opts.SectionItemCap)
	}
	sections, seconds, truncated := Trim(sections, c.opts)

	if c.logger != nil {
		c.logger.Debug("broadcast compiled",
			"items", len(items),
			"groups", len(groups),
			"sections", len(sections),
			"seconds", seconds,
			"truncated", truncated)
	}

	return domain.Broadcast{
		GeneratedAt:           now,
		Sections:              sections,
		TotalEstimatedSeconds: seconds,
		Truncated:             truncated,
	}, groups
}
