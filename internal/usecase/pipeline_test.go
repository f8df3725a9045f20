package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"NewsBroadcaster/internal/domain"
	"NewsBroadcaster/internal/engine"
)

type fakeSource struct {
	inputs []domain.SourceInput
	err    error
	calls  int
}

func (f *fakeSource) FetchDaily(ctx context.Context, day time.Time) ([]domain.SourceInput, error) {
	f.calls++
	return f.inputs, f.err
}

type fakeRenderer struct {
	script string
	err    error
}

func (f *fakeRenderer) Render(ctx context.Context, b domain.Broadcast) (string, error) {
	return f.script, f.err
}

type fakeRepository struct {
	delivered bool
	saved     []domain.BroadcastRun
}

func (f *fakeRepository) SaveRun(ctx context.Context, run domain.BroadcastRun) error {
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeRepository) AlreadyDelivered(ctx context.Context, day time.Time) (bool, error) {
	return f.delivered, nil
}

type fakeNotifier struct {
	published []string
}

func (f *fakeNotifier) PublishScript(ctx context.Context, script string) error {
	f.published = append(f.published, script)
	return nil
}

func testInputs(now time.Time) []domain.SourceInput {
	return []domain.SourceInput{
		{Source: "rss", Items: []map[string]any{{
			"title":        "AI policy update",
			"summary":      "Regulators publish a new framework.",
			"published_at": now.Add(-time.Hour).Format(time.RFC3339),
		}}},
	}
}

func TestProcessDayDeliversBroadcast(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	repo := &fakeRepository{}
	notifier := &fakeNotifier{}

	pipeline := NewPipeline(PipelineDeps{
		Source:     &fakeSource{inputs: testInputs(now)},
		Compiler:   engine.NewCompiler(engine.DefaultOptions(), nil),
		Renderer:   &fakeRenderer{script: "今日要闻方面，AI policy update。"},
		Repository: repo,
		Notifier:   notifier,
	})

	if err := pipeline.ProcessDay(context.Background(), now); err != nil {
		t.Fatalf("process day: %v", err)
	}
	if len(notifier.published) != 1 {
		t.Fatalf("expected one published script, got %d", len(notifier.published))
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one saved run, got %d", len(repo.saved))
	}
	run := repo.saved[0]
	if run.ID == "" {
		t.Fatal("run ID must be assigned")
	}
	if run.Script != notifier.published[0] {
		t.Fatal("persisted script differs from published script")
	}
	if !run.GeneratedAt.Equal(now) {
		t.Fatalf("unexpected generated-at: %s", run.GeneratedAt)
	}
}

func TestProcessDaySkipsDeliveredDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	source := &fakeSource{inputs: testInputs(now)}
	notifier := &fakeNotifier{}

	pipeline := NewPipeline(PipelineDeps{
		Source:     source,
		Compiler:   engine.NewCompiler(engine.DefaultOptions(), nil),
		Renderer:   &fakeRenderer{script: "script"},
		Repository: &fakeRepository{delivered: true},
		Notifier:   notifier,
	})

	if err := pipeline.ProcessDay(context.Background(), now); err != nil {
		t.Fatalf("process day: %v", err)
	}
	if source.calls != 0 {
		t.Fatal("delivered day must not fetch again")
	}
	if len(notifier.published) != 0 {
		t.Fatal("delivered day must not publish again")
	}
}

func TestProcessDayFallsBackWhenRendererFails(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	notifier := &fakeNotifier{}

	pipeline := NewPipeline(PipelineDeps{
		Source:   &fakeSource{inputs: testInputs(now)},
		Compiler: engine.NewCompiler(engine.DefaultOptions(), nil),
		Renderer: &fakeRenderer{err: errors.New("model unavailable")},
		Fallback: &fakeRenderer{script: "今日要闻方面，备用播报。"},
		Notifier: notifier,
	})

	if err := pipeline.ProcessDay(context.Background(), now); err != nil {
		t.Fatalf("process day: %v", err)
	}
	if len(notifier.published) != 1 || !strings.Contains(notifier.published[0], "备用播报") {
		t.Fatalf("fallback script not published: %+v", notifier.published)
	}
}

func TestProcessDayPropagatesFetchError(t *testing.T) {
	t.Parallel()

	pipeline := NewPipeline(PipelineDeps{
		Source:   &fakeSource{err: errors.New("upstream down")},
		Compiler: engine.NewCompiler(engine.DefaultOptions(), nil),
		Renderer: &fakeRenderer{script: "script"},
	})

	err := pipeline.ProcessDay(context.Background(), time.Now())
	if err == nil || !strings.Contains(err.Error(), "fetch daily") {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
