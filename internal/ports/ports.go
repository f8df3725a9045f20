package ports

import (
	"context"
	"time"

	"NewsBroadcaster/internal/domain"
)

// FeedSource gathers the raw source blocks for one broadcast day. Fetchers
// are best-effort: a failing source contributes an empty block, never an
// aborted compile.
type FeedSource interface {
	FetchDaily(ctx context.Context, day time.Time) ([]domain.SourceInput, error)
}

// Renderer turns a compiled Broadcast into spoken script text.
type Renderer interface {
	Render(ctx context.Context, broadcast domain.Broadcast) (string, error)
}

// BroadcastRepository persists run snapshots and suppressed dedup members
// for audit and replay.
type BroadcastRepository interface {
	SaveRun(ctx context.Context, run domain.BroadcastRun) error
	AlreadyDelivered(ctx context.Context, day time.Time) (bool, error)
}

// Notifier delivers the rendered script to an outbound channel.
type Notifier interface {
	PublishScript(ctx context.Context, script string) error
}

// Scheduler controls when broadcasts are produced.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
