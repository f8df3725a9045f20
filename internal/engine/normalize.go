package engine

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"NewsBroadcaster/internal/domain"
)

// rssRecencyHorizon bounds the freshness window for recency scoring.
const rssRecencyHorizon = 24 * time.Hour

// sourceAliases maps incoming source tags onto the canonical enum. The
// original feeds used "x" and "gmail"; anything unrecognized becomes a
// generic pass-through bucket.
var sourceAliases = map[string]domain.Source{
	"rss":      domain.SourceRSS,
	"social":   domain.SourceSocial,
	"x":        domain.SourceSocial,
	"twitter":  domain.SourceSocial,
	"mail":     domain.SourceMail,
	"gmail":    domain.SourceMail,
	"email":    domain.SourceMail,
	"calendar": domain.SourceCalendar,
	"weather":  domain.SourceWeather,
}

// Normalize maps one source block into NormalizedItems. It is total: a
// malformed item degrades to empty strings, a zero timestamp and zero score
// instead of failing its siblings.
func Normalize(source string, rawItems []map[string]any, opts Options, now time.Time) []domain.NormalizedItem {
	kind, known := sourceAliases[strings.ToLower(strings.TrimSpace(source))]
	if !known {
		kind = domain.SourceOther
	}

	items := make([]domain.NormalizedItem, 0, len(rawItems))
	for _, raw := range rawItems {
		if raw == nil {
			raw = map[string]any{}
		}

		var item domain.NormalizedItem
		switch kind {
		case domain.SourceRSS:
			item = normalizeRSS(raw, opts, now)
		case domain.SourceSocial:
			item = normalizeSocial(raw, opts)
		case domain.SourceMail:
			item = normalizeMail(raw, opts)
		case domain.SourceCalendar:
			var keep bool
			item, keep = normalizeCalendar(raw, opts, now)
			if !keep {
				continue
			}
		case domain.SourceWeather:
			var keep bool
			item, keep = normalizeWeather(raw)
			if !keep {
				continue
			}
		default:
			item = normalizeGeneric(raw)
		}

		item.RawLength = utf8.RuneCountInString(item.Headline) + utf8.RuneCountInString(item.Body)
		items = append(items, item)
	}
	return items
}

func normalizeRSS(raw map[string]any, opts Options, now time.Time) domain.NormalizedItem {
	ts := timeField(raw, "published_at", "pubDate", "published")
	item := domain.NormalizedItem{
		Source:    domain.SourceRSS,
		Headline:  cleanText(stringField(raw, "title")),
		Body:      htmlToText(stringField(raw, "summary", "description")),
		Identity:  cleanText(stringField(raw, "source_name", "source")),
		Timestamp: ts,
	}
	// Unparsable publish dates sort last and stay low priority.
	if !ts.IsZero() {
		item.PriorityScore = opts.PriorityWeights.RSSRecency * freshness(now.Sub(ts), rssRecencyHorizon)
	}
	return item
}

func normalizeSocial(raw map[string]any, opts Options) domain.NormalizedItem {
	likes, retweets := engagementField(raw)
	return domain.NormalizedItem{
		Source:        domain.SourceSocial,
		Body:          cleanText(stringField(raw, "text")),
		Identity:      cleanText(stringField(raw, "author")),
		Timestamp:     timeField(raw, "created_at"),
		PriorityScore: opts.PriorityWeights.Like*likes + opts.PriorityWeights.Retweet*retweets,
	}
}

func normalizeMail(raw map[string]any, opts Options) domain.NormalizedItem {
	from := cleanText(stringField(raw, "from", "sender"))
	score := opts.PriorityWeights.MailBase
	for _, sender := range opts.PrioritySenders {
		if sender != "" && strings.EqualFold(strings.TrimSpace(sender), from) {
			score += opts.PriorityWeights.MailPriorityBoost
			break
		}
	}
	return domain.NormalizedItem{
		Source:        domain.SourceMail,
		Headline:      cleanText(stringField(raw, "subject")),
		Body:          cleanText(stringField(raw, "snippet", "body")),
		Identity:      from,
		Timestamp:     timeField(raw, "received_at"),
		PriorityScore: score,
	}
}

// normalizeCalendar keeps future events only; sooner events score higher.
func normalizeCalendar(raw map[string]any, opts Options, now time.Time) (domain.NormalizedItem, bool) {
	start := timeField(raw, "start")
	if start.IsZero() || start.Before(now) {
		return domain.NormalizedItem{}, false
	}
	return domain.NormalizedItem{
		Source:        domain.SourceCalendar,
		Headline:      cleanText(stringField(raw, "title", "summary")),
		Body:          cleanText(stringField(raw, "location")),
		Location:      cleanText(stringField(raw, "location")),
		Timestamp:     start,
		Start:         start,
		End:           timeField(raw, "end"),
		PriorityScore: opts.PriorityWeights.CalendarProximity * freshness(start.Sub(now), rssRecencyHorizon),
	}, true
}

// normalizeWeather items are timeless and dropped only when empty.
func normalizeWeather(raw map[string]any) (domain.NormalizedItem, bool) {
	summary := cleanText(stringField(raw, "summary"))
	if summary == "" {
		return domain.NormalizedItem{}, false
	}
	return domain.NormalizedItem{
		Source: domain.SourceWeather,
		Body:   summary,
	}, true
}

func normalizeGeneric(raw map[string]any) domain.NormalizedItem {
	return domain.NormalizedItem{
		Source:    domain.SourceOther,
		Headline:  cleanText(stringField(raw, "title", "headline", "subject")),
		Body:      cleanText(stringField(raw, "text", "body", "summary", "snippet")),
		Identity:  cleanText(stringField(raw, "author", "from", "source_name")),
		Timestamp: timeField(raw, "timestamp", "published_at", "created_at"),
	}
}

// freshness maps an age (or lead time) onto [0,1]: 1 for now, 0 beyond the
// horizon. Negative ages clamp to 1.
func freshness(age, horizon time.Duration) float64 {
	if age <= 0 {
		return 1
	}
	if age >= horizon {
		return 0
	}
	return 1 - float64(age)/float64(horizon)
}

func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func timeField(raw map[string]any, keys ...string) time.Time {
	value := stringField(raw, keys...)
	if value == "" {
		// Calendar APIs nest the instant one level down.
		for _, key := range keys {
			if nested, ok := raw[key].(map[string]any); ok {
				if s, ok := nested["dateTime"].(string); ok {
					value = s
					break
				}
				if s, ok := nested["date"].(string); ok {
					value = s
					break
				}
			}
		}
	}
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func engagementField(raw map[string]any) (likes, retweets float64) {
	engagement, ok := raw["engagement"].(map[string]any)
	if !ok {
		return 0, 0
	}
	return numberValue(engagement["likes"]), numberValue(engagement["retweets"])
}

func numberValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// cleanText trims and collapses whitespace runs to single spaces.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// htmlToText strips markup from feed bodies, which routinely carry HTML.
func htmlToText(s string) string {
	if !strings.ContainsRune(s, '<') {
		return cleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanText(s)
	}
	doc.Find("script, style, noscript").Remove()
	return cleanText(doc.Text())
}
