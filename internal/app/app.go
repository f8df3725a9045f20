package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"NewsBroadcaster/internal/config"
	"NewsBroadcaster/internal/domain"
	"NewsBroadcaster/internal/engine"
	"NewsBroadcaster/internal/feeds"
	"NewsBroadcaster/internal/infrastructure/fetch"
	"NewsBroadcaster/internal/infrastructure/renderer"
	"NewsBroadcaster/internal/infrastructure/scheduler"
	"NewsBroadcaster/internal/infrastructure/storage"
	"NewsBroadcaster/internal/infrastructure/telegram"
	"NewsBroadcaster/internal/logging"
	"NewsBroadcaster/internal/ports"
	"NewsBroadcaster/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := feeds.NewRegistry()
	registry.Register(fetch.NewRSSFetcher(nil, baseLogger.With("component", "fetch.rss")))
	registry.Register(fetch.NewSocialFetcher(nil, cfg.Social.BearerToken, baseLogger.With("component", "fetch.social")))
	registry.Register(fetch.NewWeatherFetcher(nil, baseLogger.With("component", "fetch.weather")))
	registry.Register(fetch.NewMailFetcher(nil, cfg.Google.APIToken, baseLogger.With("component", "fetch.mail")))
	registry.Register(fetch.NewCalendarFetcher(nil, cfg.Google.APIToken, baseLogger.With("component", "fetch.calendar")))

	source := fetch.NewCompositeSource(registry, cfg.Sources, baseLogger.With("component", "source"))
	compiler := engine.NewCompiler(engineOptions(cfg.Broadcast), baseLogger.With("component", "engine"))

	var llm ports.Renderer
	if cfg.ChatGPT.APIKey != "" {
		llm = renderer.NewChatGPTRenderer(cfg.ChatGPT)
	}

	var db *sql.DB
	var repository ports.BroadcastRepository
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("audit store unavailable", "error", err)
		} else {
			db = opened
			repository = storage.NewPostgresRepository(db)
		}
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Compiler:   compiler,
		Renderer:   llm,
		Fallback:   renderer.NewScriptRenderer(),
		Repository: repository,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, db: db}
}

// Run performs a single broadcast for the current day.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.ProcessDay(ctx, now)
}

// RunDaemon keeps producing broadcasts on the configured schedule until the
// context is cancelled.
func (a *Application) RunDaemon(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression)
	sched := usecase.NewScheduler(driver, a.pipeline)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases long-lived resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// payload mirrors the JSON shape the original editor consumed: a config
// object plus pre-fetched source blocks.
type payload struct {
	Config map[string]any       `json:"config"`
	Inputs []domain.SourceInput `json:"inputs"`
}

// RenderPayload compiles a saved JSON payload deterministically and renders
// it with the template renderer. It bypasses fetching entirely, which makes
// it the reproducible path for scripted checks.
func (a *Application) RenderPayload(ctx context.Context, path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		var inputs []domain.SourceInput
		if listErr := json.Unmarshal(raw, &inputs); listErr != nil {
			return "", fmt.Errorf("parse payload: %w", err)
		}
		p.Inputs = inputs
	}

	opts := engineOptions(a.cfg.Broadcast)
	now := time.Now().UTC()
	applyPayloadConfig(&opts, &now, p.Config)

	compiler := engine.NewCompiler(opts, a.logger.With("component", "engine"))
	broadcast, _ := compiler.Compile(now, p.Inputs)
	return renderer.NewScriptRenderer().Render(ctx, broadcast)
}

// applyPayloadConfig overlays the payload's snake_case options, matching the
// original config.json keys.
func applyPayloadConfig(opts *engine.Options, now *time.Time, cfg map[string]any) {
	intValue := func(key string) (int, bool) {
		if v, ok := cfg[key].(float64); ok {
			return int(v), true
		}
		return 0, false
	}

	if v, ok := intValue("max_duration_seconds"); ok {
		opts.MaxDurationSeconds = v
	}
	if v, ok := cfg["dedup_similarity_threshold"].(float64); ok {
		opts.DedupSimilarityThreshold = v
	}
	if v, ok := intValue("dedup_time_window_seconds"); ok {
		opts.DedupTimeWindowSeconds = v
	}
	if v, ok := intValue("section_item_cap"); ok {
		opts.SectionItemCap = v
	}
	if v, ok := cfg["chars_per_second"].(float64); ok {
		opts.CharsPerSecond = v
	}
	if v, ok := cfg["now"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			*now = ts.UTC()
		}
	}
}

func engineOptions(cfg config.BroadcastConfig) engine.Options {
	opts := engine.DefaultOptions()
	opts.MaxDurationSeconds = cfg.MaxDurationSeconds
	if cfg.DedupSimilarityThreshold != 0 {
		opts.DedupSimilarityThreshold = cfg.DedupSimilarityThreshold
	}
	if cfg.DedupTimeWindowSeconds != 0 {
		opts.DedupTimeWindowSeconds = cfg.DedupTimeWindowSeconds
	}
	opts.SectionItemCap = cfg.SectionItemCap
	if cfg.CharsPerSecond != 0 {
		opts.CharsPerSecond = cfg.CharsPerSecond
	}
	opts.PrioritySenders = cfg.PrioritySenders

	w := cfg.PriorityWeights
	if w.Like != 0 {
		opts.PriorityWeights.Like = w.Like
	}
	if w.Retweet != 0 {
		opts.PriorityWeights.Retweet = w.Retweet
	}
	if w.RSSRecency != 0 {
		opts.PriorityWeights.RSSRecency = w.RSSRecency
	}
	if w.MailBase != 0 {
		opts.PriorityWeights.MailBase = w.MailBase
	}
	if w.MailPriorityBoost != 0 {
		opts.PriorityWeights.MailPriorityBoost = w.MailPriorityBoost
	}
	if w.CalendarProximity != 0 {
		opts.PriorityWeights.CalendarProximity = w.CalendarProximity
	}
	return opts
}
