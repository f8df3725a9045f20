package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsBroadcaster/internal/config"
	"NewsBroadcaster/internal/domain"
	"NewsBroadcaster/internal/ports"
)

const (
	rendererMaxRetries = 3
	rendererBaseDelay  = 2 * time.Second
)

// ChatGPTRenderer rewrites the structured broadcast as flowing prose via an
// OpenAI-compatible chat completions API. The broadcast it receives is
// already deduplicated, masked and ordered; the model only reformulates.
type ChatGPTRenderer struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

var _ ports.Renderer = (*ChatGPTRenderer)(nil)

// NewChatGPTRenderer builds a client from configuration. The limiter keeps
// scheduled runs inside the configured requests-per-minute budget.
func NewChatGPTRenderer(cfg config.ChatGPTConfig) *ChatGPTRenderer {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	return &ChatGPTRenderer{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

// Render posts the broadcast JSON as the user message and returns the
// model's script. Throttled responses retry with exponential backoff.
func (c *ChatGPTRenderer) Render(ctx context.Context, broadcast domain.Broadcast) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt renderer is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt renderer misconfigured")
	}

	payload, err := broadcastJSON(broadcast)
	if err != nil {
		return "", fmt.Errorf("marshal broadcast: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= rendererMaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("limiter wait: %w", err)
		}

		script, err := c.complete(ctx, payload)
		if err == nil {
			return script, nil
		}
		lastErr = err

		if !isThrottled(err) || attempt == rendererMaxRetries {
			return "", err
		}
		delay := rendererBaseDelay * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}

func (c *ChatGPTRenderer) complete(ctx context.Context, payload []byte) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": string(payload)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render broadcast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chatgpt returned no choices")
	}
	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

// broadcastJSON serializes the structured sections the model must preserve.
func broadcastJSON(broadcast domain.Broadcast) ([]byte, error) {
	type item struct {
		Headline string `json:"headline,omitempty"`
		Body     string `json:"body,omitempty"`
		Identity string `json:"identity,omitempty"`
		Location string `json:"location,omitempty"`
		Time     string `json:"time,omitempty"`
	}
	type section struct {
		Title string `json:"title"`
		Items []item `json:"items"`
	}

	sections := make([]section, 0, len(broadcast.Sections))
	for _, s := range broadcast.Sections {
		out := section{Title: s.Kind.Title()}
		for _, i := range s.Items {
			entry := item{
				Headline: i.Headline,
				Body:     i.Body,
				Identity: i.Identity,
				Location: i.Location,
			}
			if !i.Start.IsZero() {
				entry.Time = i.Start.Format("15:04")
			}
			out.Items = append(out.Items, entry)
		}
		sections = append(sections, out)
	}

	return json.Marshal(map[string]any{
		"date":     broadcast.GeneratedAt.Format("2006-01-02"),
		"sections": sections,
	})
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "你是一位新闻播音稿编辑，请把结构化的播报内容改写为流畅的口语稿，保持段落顺序与内容不变。"
	}
	return prompt
}

func isThrottled(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
