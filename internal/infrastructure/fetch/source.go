// Package fetch contains the per-source fetch strategies. Every fetcher is
// best-effort: it owes the pipeline nothing beyond a possibly empty list of
// raw items.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsBroadcaster/internal/config"
	"NewsBroadcaster/internal/domain"
	"NewsBroadcaster/internal/feeds"
	"NewsBroadcaster/internal/ports"
)

// CompositeSource implements ports.FeedSource via registered fetcher
// strategies. A failing source logs a warning and contributes an empty
// block; partial data loss never aborts the broadcast.
type CompositeSource struct {
	registry *feeds.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.FeedSource = (*CompositeSource)(nil)

// NewCompositeSource wires the fetcher registry with config-defined sources.
func NewCompositeSource(reg *feeds.Registry, sources []config.SourceConfig, log *slog.Logger) *CompositeSource {
	return &CompositeSource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// FetchDaily iterates over configured sources and executes their fetchers.
func (s *CompositeSource) FetchDaily(ctx context.Context, day time.Time) ([]domain.SourceInput, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("fetcher registry is not configured")
	}

	s.debug("fetch daily", "sources", len(s.sources), "day", day.Format("2006-01-02"))

	inputs := make([]domain.SourceInput, 0, len(s.sources))
	for _, src := range s.sources {
		fetcher, err := s.registry.Resolve(src.Fetcher)
		if err != nil {
			s.warn("skipping source", "source", src.Name, "error", err)
			continue
		}

		req := feeds.Request{
			Day:       day,
			Options:   src.Options,
			Endpoints: toEndpoints(src.Endpoints),
		}

		items, err := fetcher.Fetch(ctx, req)
		if err != nil {
			s.warn("source fetch failed", "source", src.Name, "error", err)
			continue
		}
		if len(items) == 0 {
			continue
		}

		s.debug("source produced items", "source", src.Name, "count", len(items))
		inputs = append(inputs, domain.SourceInput{Source: src.Name, Items: items})
	}

	s.debug("composite source done", "blocks", len(inputs))
	return inputs, nil
}

func toEndpoints(cfg []config.EndpointConfig) []feeds.Endpoint {
	endpoints := make([]feeds.Endpoint, 0, len(cfg))
	for _, e := range cfg {
		endpoints = append(endpoints, feeds.Endpoint{Name: e.Name, URL: e.URL})
	}
	return endpoints
}

func (s *CompositeSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *CompositeSource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
