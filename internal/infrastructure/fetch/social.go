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

const defaultXAPIBase = "https://api.x.com/2"

// SocialFetcher pulls recent posts of the configured accounts from the
// X API v2. Endpoint names are account handles.
type SocialFetcher struct {
	client      *http.Client
	bearerToken string
	logger      *slog.Logger
}

var _ feeds.Fetcher = (*SocialFetcher)(nil)

// NewSocialFetcher registers the bearer token used for all calls.
func NewSocialFetcher(client *http.Client, bearerToken string, logger *slog.Logger) *SocialFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SocialFetcher{client: client, bearerToken: bearerToken, logger: logger}
}

func (f *SocialFetcher) Name() string { return "social" }

// Fetch resolves each account and collects its latest posts; unresolvable
// accounts are skipped.
func (f *SocialFetcher) Fetch(ctx context.Context, req feeds.Request) ([]map[string]any, error) {
	if f.bearerToken == "" {
		return nil, nil
	}

	base := req.Options["apiBase"]
	if base == "" {
		base = defaultXAPIBase
	}

	var items []map[string]any
	for _, endpoint := range req.Endpoints {
		account := endpoint.Name
		userID, author, err := f.resolveUser(ctx, base, account)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("resolve account failed", "account", account, "error", err)
			}
			continue
		}

		posts, err := f.userPosts(ctx, base, userID, author)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("fetch posts failed", "account", account, "error", err)
			}
			continue
		}
		items = append(items, posts...)
	}
	return items, nil
}

func (f *SocialFetcher) resolveUser(ctx context.Context, base, account string) (id, author string, err error) {
	var resp struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}

	target := fmt.Sprintf("%s/users/by/username/%s", base, url.PathEscape(account))
	if err := getJSON(ctx, f.client, target, f.bearerToken, &resp); err != nil {
		return "", "", err
	}
	if resp.Data.ID == "" {
		return "", "", fmt.Errorf("account %s not found", account)
	}

	author = resp.Data.Username
	if author == "" {
		author = account
	}
	return resp.Data.ID, author, nil
}

func (f *SocialFetcher) userPosts(ctx context.Context, base, userID, author string) ([]map[string]any, error) {
	var resp struct {
		Data []struct {
			Text          string `json:"text"`
			CreatedAt     string `json:"created_at"`
			PublicMetrics struct {
				LikeCount    int `json:"like_count"`
				RetweetCount int `json:"retweet_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}

	target := fmt.Sprintf("%s/users/%s/tweets?max_results=10&tweet.fields=created_at,public_metrics", base, userID)
	if err := getJSON(ctx, f.client, target, f.bearerToken, &resp); err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(resp.Data))
	for _, post := range resp.Data {
		items = append(items, map[string]any{
			"author":     author,
			"text":       post.Text,
			"created_at": post.CreatedAt,
			"engagement": map[string]any{
				"likes":    float64(post.PublicMetrics.LikeCount),
				"retweets": float64(post.PublicMetrics.RetweetCount),
			},
		})
	}
	return items, nil
}
