package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsBroadcaster/internal/domain"
	"NewsBroadcaster/internal/engine"
	"NewsBroadcaster/internal/ports"
	"NewsBroadcaster/internal/verify"
)

// PipelineDeps wires all driven adapters into the broadcast pipeline.
type PipelineDeps struct {
	Source     ports.FeedSource
	Compiler   *engine.Compiler
	Renderer   ports.Renderer
	Fallback   ports.Renderer
	Repository ports.BroadcastRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the daily broadcast workflow: fetch, compile, render,
// verify, persist, deliver. Everything after the compile step is optional
// and best-effort; the compiled broadcast itself is always valid.
type Pipeline struct {
	source     ports.FeedSource
	compiler   *engine.Compiler
	renderer   ports.Renderer
	fallback   ports.Renderer
	repository ports.BroadcastRepository
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		compiler:   deps.Compiler,
		renderer:   deps.Renderer,
		fallback:   deps.Fallback,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
	}
}

// ProcessDay produces and delivers one broadcast for the given reference
// time. The time doubles as the engine's injected "now", so re-running a
// day re-renders the identical broadcast.
func (p *Pipeline) ProcessDay(ctx context.Context, now time.Time) error {
	if p.source == nil || p.compiler == nil {
		return nil
	}

	if p.repository != nil {
		delivered, err := p.repository.AlreadyDelivered(ctx, now)
		if err != nil {
			p.warn("delivery check failed", "error", err)
		} else if delivered {
			p.debug("broadcast already delivered", "day", now.Format("2006-01-02"))
			return nil
		}
	}

	inputs, err := p.source.FetchDaily(ctx, now)
	if err != nil {
		return fmt.Errorf("fetch daily: %w", err)
	}

	broadcast, groups := p.compiler.Compile(now.UTC(), inputs)

	script, err := p.render(ctx, broadcast)
	if err != nil {
		return fmt.Errorf("render broadcast: %w", err)
	}

	for _, problem := range verify.Check(script, broadcast) {
		p.warn("rendered script violates broadcast structure", "problem", problem)
	}

	if p.repository != nil {
		run := domain.BroadcastRun{
			ID:               uuid.NewString(),
			GeneratedAt:      broadcast.GeneratedAt,
			Script:           script,
			EstimatedSeconds: broadcast.TotalEstimatedSeconds,
			Truncated:        broadcast.Truncated,
			Suppressed:       suppressedItems(groups),
		}
		if err := p.repository.SaveRun(ctx, run); err != nil {
			p.warn("persist run failed", "error", err)
		}
	}

	if p.notifier == nil {
		return nil
	}
	return p.notifier.PublishScript(ctx, script)
}

// render prefers the configured renderer and falls back to the
// deterministic script renderer when the external one fails.
func (p *Pipeline) render(ctx context.Context, broadcast domain.Broadcast) (string, error) {
	if p.renderer != nil {
		script, err := p.renderer.Render(ctx, broadcast)
		if err == nil {
			return script, nil
		}
		p.warn("renderer failed, falling back", "error", err)
	}
	if p.fallback == nil {
		return "", fmt.Errorf("no renderer available")
	}
	return p.fallback.Render(ctx, broadcast)
}

func suppressedItems(groups []domain.DedupGroup) []domain.NormalizedItem {
	var suppressed []domain.NormalizedItem
	for _, group := range groups {
		suppressed = append(suppressed, group.Suppressed...)
	}
	return suppressed
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
