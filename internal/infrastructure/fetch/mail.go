package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"NewsBroadcaster/internal/feeds"
)

const defaultGmailBase = "https://gmail.googleapis.com/gmail/v1/users/me"

// MailFetcher lists recent priority messages through the Gmail REST API.
type MailFetcher struct {
	client *http.Client
	token  string
	logger *slog.Logger
}

var _ feeds.Fetcher = (*MailFetcher)(nil)

// NewMailFetcher registers the OAuth bearer token used for all calls.
func NewMailFetcher(client *http.Client, token string, logger *slog.Logger) *MailFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &MailFetcher{client: client, token: token, logger: logger}
}

func (f *MailFetcher) Name() string { return "mail" }

func (f *MailFetcher) Fetch(ctx context.Context, req feeds.Request) ([]map[string]any, error) {
	if f.token == "" {
		return nil, nil
	}

	base := req.Options["apiBase"]
	if base == "" {
		base = defaultGmailBase
	}
	query := req.Options["query"]
	if query == "" {
		query = "is:unread newer_than:1d"
	}

	var list struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	target := fmt.Sprintf("%s/messages?maxResults=10&q=%s", base, url.QueryEscape(query))
	if err := getJSON(ctx, f.client, target, f.token, &list); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	items := make([]map[string]any, 0, len(list.Messages))
	for _, ref := range list.Messages {
		item, err := f.message(ctx, base, ref.ID)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("fetch message failed", "id", ref.ID, "error", err)
			}
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *MailFetcher) message(ctx context.Context, base, id string) (map[string]any, error) {
	var msg struct {
		Snippet      string `json:"snippet"`
		InternalDate string `json:"internalDate"`
		Payload      struct {
			Headers []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"headers"`
		} `json:"payload"`
	}

	target := fmt.Sprintf("%s/messages/%s?format=metadata&metadataHeaders=From&metadataHeaders=Subject", base, id)
	if err := getJSON(ctx, f.client, target, f.token, &msg); err != nil {
		return nil, err
	}

	item := map[string]any{
		"snippet": msg.Snippet,
	}
	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			item["from"] = header.Value
		case "Subject":
			item["subject"] = header.Value
		}
	}
	if ms, err := strconv.ParseInt(msg.InternalDate, 10, 64); err == nil {
		item["received_at"] = time.UnixMilli(ms).UTC().Format(time.RFC3339)
	}
	return item, nil
}
