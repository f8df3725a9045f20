// Package engine implements the broadcast assembly pipeline: normalization,
// masking, cross-source deduplication, ranking, section assembly and
// duration trimming. Every stage is a pure function of its inputs; the
// compiler injects "now" so identical calls produce identical broadcasts.
package engine

import "log/slog"

const (
	defaultSimilarityThreshold = 0.6
	defaultTimeWindowSeconds   = 6 * 60 * 60
	defaultCharsPerSecond      = 12
	defaultLikeWeight          = 1
	defaultRetweetWeight       = 3
	defaultRSSRecencyWeight    = 40
	defaultMailBaseScore       = 50
	defaultMailPriorityBoost   = 100
	defaultCalendarWeight      = 200
)

// Weights tunes the per-source priority scoring formulas.
type Weights struct {
	Like              float64
	Retweet           float64
	RSSRecency        float64
	MailBase          float64
	MailPriorityBoost float64
	CalendarProximity float64
}

// Options is the full configuration surface of one compile call.
// Zero MaxDurationSeconds means unbounded; zero SectionItemCap means no cap.
type Options struct {
	MaxDurationSeconds       int
	DedupSimilarityThreshold float64
	DedupTimeWindowSeconds   int
	SectionItemCap           int
	CharsPerSecond           float64
	PriorityWeights          Weights
	PrioritySenders          []string
}

// DefaultOptions returns the documented defaults (unbounded duration, no cap).
func DefaultOptions() Options {
	return Options{
		DedupSimilarityThreshold: defaultSimilarityThreshold,
		DedupTimeWindowSeconds:   defaultTimeWindowSeconds,
		CharsPerSecond:           defaultCharsPerSecond,
		PriorityWeights: Weights{
			Like:              defaultLikeWeight,
			Retweet:           defaultRetweetWeight,
			RSSRecency:        defaultRSSRecencyWeight,
			MailBase:          defaultMailBaseScore,
			MailPriorityBoost: defaultMailPriorityBoost,
			CalendarProximity: defaultCalendarWeight,
		},
	}
}

// sanitized clamps out-of-range values to the nearest valid default.
// Misconfiguration is a warning, never a failure.
func (o Options) sanitized(logger *slog.Logger) Options {
	warn := func(msg string, args ...any) {
		if logger != nil {
			logger.Warn(msg, args...)
		}
	}

	if o.MaxDurationSeconds < 0 {
		warn("negative duration budget, treating as unbounded", "value", o.MaxDurationSeconds)
		o.MaxDurationSeconds = 0
	}
	if o.DedupSimilarityThreshold < 0 || o.DedupSimilarityThreshold > 1 {
		warn("similarity threshold outside [0,1], using default", "value", o.DedupSimilarityThreshold)
		o.DedupSimilarityThreshold = defaultSimilarityThreshold
	}
	if o.DedupSimilarityThreshold == 0 {
		o.DedupSimilarityThreshold = defaultSimilarityThreshold
	}
	if o.DedupTimeWindowSeconds <= 0 {
		o.DedupTimeWindowSeconds = defaultTimeWindowSeconds
	}
	if o.SectionItemCap < 0 {
		warn("negative section item cap, treating as unbounded", "value", o.SectionItemCap)
		o.SectionItemCap = 0
	}
	if o.CharsPerSecond <= 0 {
		o.CharsPerSecond = defaultCharsPerSecond
	}

	w := &o.PriorityWeights
	if w.Like <= 0 {
		w.Like = defaultLikeWeight
	}
	if w.Retweet <= 0 {
		w.Retweet = defaultRetweetWeight
	}
	if w.RSSRecency <= 0 {
		w.RSSRecency = defaultRSSRecencyWeight
	}
	if w.MailBase <= 0 {
		w.MailBase = defaultMailBaseScore
	}
	if w.MailPriorityBoost <= 0 {
		w.MailPriorityBoost = defaultMailPriorityBoost
	}
	if w.CalendarProximity <= 0 {
		w.CalendarProximity = defaultCalendarWeight
	}

	return o
}
