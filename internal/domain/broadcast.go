package domain

import "time"

// Source identifies which feed produced an item.
type Source string

const (
	SourceRSS      Source = "rss"
	SourceSocial   Source = "social"
	SourceMail     Source = "mail"
	SourceCalendar Source = "calendar"
	SourceWeather  Source = "weather"
	SourceOther    Source = "other"
)

// Order returns the fixed enum position used as the final ranking tie-break.
func (s Source) Order() int {
	switch s {
	case SourceRSS:
		return 0
	case SourceSocial:
		return 1
	case SourceMail:
		return 2
	case SourceCalendar:
		return 3
	case SourceWeather:
		return 4
	default:
		return 5
	}
}

// NormalizedItem is the uniform record every source shape is mapped into.
// Headline and Body are never empty-by-nil; weather items carry a zero
// Timestamp and are timeless.
type NormalizedItem struct {
	Source        Source
	Headline      string
	Body          string
	Identity      string
	Location      string
	Timestamp     time.Time
	Start         time.Time
	End           time.Time
	PriorityScore float64
	RawLength     int
}

// SourceInput is one source block as produced by a fetcher (or a saved
// JSON payload): the source tag plus its raw, source-shaped items.
type SourceInput struct {
	Source string           `json:"source"`
	Items  []map[string]any `json:"items"`
}

// DedupGroup clusters items judged to describe one real-world event.
// Canonical is the rendered member; Suppressed members are kept for audit.
type DedupGroup struct {
	Canonical  NormalizedItem
	Suppressed []NormalizedItem
}

// HasSource reports whether any member of the group came from the source.
func (g DedupGroup) HasSource(s Source) bool {
	if g.Canonical.Source == s {
		return true
	}
	for _, item := range g.Suppressed {
		if item.Source == s {
			return true
		}
	}
	return false
}

// SectionKind enumerates the fixed broadcast categories in rendering order.
type SectionKind int

const (
	SectionTopHeadlines SectionKind = iota
	SectionPersonallyRelevant
	SectionSchedule
	SectionLifeServices
)

// Title returns the spoken section header used by renderers.
func (k SectionKind) Title() string {
	switch k {
	case SectionTopHeadlines:
		return "今日要闻"
	case SectionPersonallyRelevant:
		return "与个人相关的动态"
	case SectionSchedule:
		return "日程速递"
	case SectionLifeServices:
		return "生活服务"
	default:
		return ""
	}
}

func (k SectionKind) String() string {
	switch k {
	case SectionTopHeadlines:
		return "top_headlines"
	case SectionPersonallyRelevant:
		return "personally_relevant"
	case SectionSchedule:
		return "schedule"
	case SectionLifeServices:
		return "life_services"
	default:
		return "unknown"
	}
}

// Section holds the ranked canonical items of one category. Empty sections
// are never part of a Broadcast.
type Section struct {
	Kind  SectionKind
	Items []NormalizedItem
}

// Broadcast is the final structural artifact handed to a renderer. It is
// immutable once compiled; a compile call owns no state beyond it.
type Broadcast struct {
	GeneratedAt           time.Time
	Sections              []Section
	TotalEstimatedSeconds float64
	Truncated             bool
}

// BroadcastRun is the persisted audit snapshot of one pipeline execution.
type BroadcastRun struct {
	ID               string
	GeneratedAt      time.Time
	Script           string
	EstimatedSeconds float64
	Truncated        bool
	Suppressed       []NormalizedItem
}
