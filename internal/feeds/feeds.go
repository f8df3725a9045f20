package feeds

import (
	"context"
	"fmt"
	"time"
)

// Endpoint is one concrete target of a fetcher: a feed URL, an account
// name, a city, a calendar id.
type Endpoint struct {
	Name string
	URL  string
}

// Request carries the parameters a fetcher needs for one run.
type Request struct {
	Day       time.Time
	Endpoints []Endpoint
	Options   map[string]string
}

// Fetcher captures a single source strategy (rss, social, weather, ...).
// Implementations return raw source-shaped items; normalization belongs to
// the engine.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]map[string]any, error)
}

// Registry maps fetcher names to their implementations.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[string]Fetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(fetcher Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]Fetcher{}
	}
	r.fetchers[fetcher.Name()] = fetcher
}

// Resolve returns a fetcher by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Fetcher, error) {
	if fetcher, ok := r.fetchers[name]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("fetcher %s is not registered", name)
}
