package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"NewsBroadcaster/internal/feeds"
)

const defaultCalendarBase = "https://www.googleapis.com/calendar/v3"

// CalendarFetcher lists upcoming events via the Google Calendar REST API.
// Endpoint names are calendar identifiers.
type CalendarFetcher struct {
	client *http.Client
	token  string
	logger *slog.Logger
}

var _ feeds.Fetcher = (*CalendarFetcher)(nil)

// NewCalendarFetcher registers the OAuth bearer token used for all calls.
func NewCalendarFetcher(client *http.Client, token string, logger *slog.Logger) *CalendarFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &CalendarFetcher{client: client, token: token, logger: logger}
}

func (f *CalendarFetcher) Name() string { return "calendar" }

func (f *CalendarFetcher) Fetch(ctx context.Context, req feeds.Request) ([]map[string]any, error) {
	if f.token == "" {
		return nil, nil
	}

	base := req.Options["apiBase"]
	if base == "" {
		base = defaultCalendarBase
	}

	var items []map[string]any
	for _, endpoint := range req.Endpoints {
		calendarID := endpoint.Name
		if calendarID == "" {
			calendarID = "primary"
		}

		events, err := f.events(ctx, base, calendarID, req.Day)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("calendar fetch failed", "calendar", calendarID, "error", err)
			}
			continue
		}
		items = append(items, events...)
	}
	return items, nil
}

func (f *CalendarFetcher) events(ctx context.Context, base, calendarID string, day time.Time) ([]map[string]any, error) {
	var resp struct {
		Items []struct {
			Summary  string `json:"summary"`
			Location string `json:"location"`
			Start    struct {
				DateTime string `json:"dateTime"`
				Date     string `json:"date"`
			} `json:"start"`
			End struct {
				DateTime string `json:"dateTime"`
				Date     string `json:"date"`
			} `json:"end"`
		} `json:"items"`
	}

	target := fmt.Sprintf("%s/calendars/%s/events?singleEvents=true&orderBy=startTime&maxResults=10&timeMin=%s",
		base, url.PathEscape(calendarID), url.QueryEscape(day.UTC().Format(time.RFC3339)))
	if err := getJSON(ctx, f.client, target, f.token, &resp); err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(resp.Items))
	for _, event := range resp.Items {
		start := event.Start.DateTime
		if start == "" {
			start = event.Start.Date
		}
		end := event.End.DateTime
		if end == "" {
			end = event.End.Date
		}
		items = append(items, map[string]any{
			"title":    event.Summary,
			"location": event.Location,
			"start":    start,
			"end":      end,
		})
	}
	return items, nil
}
