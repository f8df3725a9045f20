package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsBroadcaster/internal/feeds"
)

const defaultWeatherBase = "https://wttr.in"

// WeatherFetcher queries wttr.in for the configured cities and builds a
// single spoken summary per city. Endpoint names are city names.
type WeatherFetcher struct {
	client *http.Client
	logger *slog.Logger
}

var _ feeds.Fetcher = (*WeatherFetcher)(nil)

// NewWeatherFetcher builds the fetcher; a nil client falls back to a default.
func NewWeatherFetcher(client *http.Client, logger *slog.Logger) *WeatherFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WeatherFetcher{client: client, logger: logger}
}

func (f *WeatherFetcher) Name() string { return "weather" }

func (f *WeatherFetcher) Fetch(ctx context.Context, req feeds.Request) ([]map[string]any, error) {
	var items []map[string]any
	for _, endpoint := range req.Endpoints {
		base := endpoint.URL
		if base == "" {
			base = defaultWeatherBase
		}

		summary, err := f.citySummary(ctx, base, endpoint.Name)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("weather fetch failed", "city", endpoint.Name, "error", err)
			}
			continue
		}
		if summary == "" {
			continue
		}
		items = append(items, map[string]any{"summary": summary})
	}
	return items, nil
}

type wttrResponse struct {
	CurrentCondition []struct {
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
		TempC      string `json:"temp_C"`
		FeelsLikeC string `json:"FeelsLikeC"`
		WindKmph   string `json:"windspeedKmph"`
	} `json:"current_condition"`
}

func (f *WeatherFetcher) citySummary(ctx context.Context, base, city string) (string, error) {
	target := fmt.Sprintf("%s/%s?format=j1&lang=zh-cn", strings.TrimRight(base, "/"), url.PathEscape(city))

	var resp wttrResponse
	if err := getJSON(ctx, f.client, target, "", &resp); err != nil {
		return "", err
	}
	if len(resp.CurrentCondition) == 0 {
		return "", nil
	}

	current := resp.CurrentCondition[0]
	var parts []string
	if len(current.WeatherDesc) > 0 && current.WeatherDesc[0].Value != "" {
		parts = append(parts, current.WeatherDesc[0].Value)
	}
	if current.TempC != "" {
		parts = append(parts, fmt.Sprintf("当前气温%s度", current.TempC))
	}
	if current.FeelsLikeC != "" {
		parts = append(parts, fmt.Sprintf("体感%s度", current.FeelsLikeC))
	}
	if current.WindKmph != "" {
		parts = append(parts, fmt.Sprintf("风速约%s公里每小时", current.WindKmph))
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, "，") + "。", nil
}
