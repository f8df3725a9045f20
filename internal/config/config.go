package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "NEWS_BROADCASTER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	chatGPTAPIKeyEnv  = "CHATGPT_API_KEY"
	chatGPTModelEnv   = "CHATGPT_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	xBearerTokenEnv   = "X_BEARER_TOKEN"
	googleTokenEnv    = "GOOGLE_API_TOKEN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Broadcast     BroadcastConfig    `yaml:"broadcast"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Notifications NotificationConfig `yaml:"notifications"`
	Social        SocialConfig       `yaml:"social"`
	Google        GoogleConfig       `yaml:"google"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details for the audit store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the broadcast should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// BroadcastConfig carries the assembly-engine tunables. Out-of-range values
// are clamped by the engine, not rejected here.
type BroadcastConfig struct {
	MaxDurationSeconds       int           `yaml:"maxDurationSeconds"`
	DedupSimilarityThreshold float64       `yaml:"dedupSimilarityThreshold"`
	DedupTimeWindowSeconds   int           `yaml:"dedupTimeWindowSeconds"`
	SectionItemCap           int           `yaml:"sectionItemCap"`
	CharsPerSecond           float64       `yaml:"charsPerSecond"`
	PriorityWeights          WeightsConfig `yaml:"priorityWeights"`
	PrioritySenders          []string      `yaml:"prioritySenders"`
}

// WeightsConfig tunes per-source priority scoring.
type WeightsConfig struct {
	Like              float64 `yaml:"like"`
	Retweet           float64 `yaml:"retweet"`
	RSSRecency        float64 `yaml:"rssRecency"`
	MailBase          float64 `yaml:"mailBase"`
	MailPriorityBoost float64 `yaml:"mailPriorityBoost"`
	CalendarProximity float64 `yaml:"calendarProximity"`
}

// ChatGPTConfig defines how to contact the script renderer API.
type ChatGPTConfig struct {
	Endpoint          string `yaml:"endpoint"`
	Model             string `yaml:"model"`
	APIKey            string `yaml:"apiKey"`
	SystemPrompt      string `yaml:"systemPrompt"`
	RequestsPerMinute int    `yaml:"requestsPerMinute"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SocialConfig holds the X API credentials.
type SocialConfig struct {
	BearerToken string `yaml:"bearerToken"`
}

// GoogleConfig holds the token shared by the mail and calendar fetchers.
type GoogleConfig struct {
	APIToken string `yaml:"apiToken"`
}

// SourceConfig describes a single source block with its fetcher strategy.
type SourceConfig struct {
	Name      string            `yaml:"name"`
	Fetcher   string            `yaml:"fetcher"`
	Endpoints []EndpointConfig  `yaml:"endpoints"`
	Options   map[string]string `yaml:"options"`
}

// EndpointConfig holds one concrete fetch target (feed URL, account, city).
type EndpointConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.ChatGPT.Model = v
	}

	if v := os.Getenv(xBearerTokenEnv); v != "" {
		c.Social.BearerToken = v
	}

	if v := os.Getenv(googleTokenEnv); v != "" {
		c.Google.APIToken = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	base.Broadcast = mergeBroadcast(base.Broadcast, override.Broadcast)

	if override.ChatGPT.Endpoint != "" {
		base.ChatGPT.Endpoint = override.ChatGPT.Endpoint
	}
	if override.ChatGPT.Model != "" {
		base.ChatGPT.Model = override.ChatGPT.Model
	}
	if override.ChatGPT.APIKey != "" {
		base.ChatGPT.APIKey = override.ChatGPT.APIKey
	}
	if override.ChatGPT.SystemPrompt != "" {
		base.ChatGPT.SystemPrompt = override.ChatGPT.SystemPrompt
	}
	if override.ChatGPT.RequestsPerMinute != 0 {
		base.ChatGPT.RequestsPerMinute = override.ChatGPT.RequestsPerMinute
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Social.BearerToken != "" {
		base.Social = override.Social
	}
	if override.Google.APIToken != "" {
		base.Google = override.Google
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func mergeBroadcast(base, override BroadcastConfig) BroadcastConfig {
	if override.MaxDurationSeconds != 0 {
		base.MaxDurationSeconds = override.MaxDurationSeconds
	}
	if override.DedupSimilarityThreshold != 0 {
		base.DedupSimilarityThreshold = override.DedupSimilarityThreshold
	}
	if override.DedupTimeWindowSeconds != 0 {
		base.DedupTimeWindowSeconds = override.DedupTimeWindowSeconds
	}
	if override.SectionItemCap != 0 {
		base.SectionItemCap = override.SectionItemCap
	}
	if override.CharsPerSecond != 0 {
		base.CharsPerSecond = override.CharsPerSecond
	}
	if override.PriorityWeights != (WeightsConfig{}) {
		base.PriorityWeights = override.PriorityWeights
	}
	if len(override.PrioritySenders) > 0 {
		base.PrioritySenders = override.PrioritySenders
	}
	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "0 7 * * *", Timezone: defaultTimezone, location: tz},
		Broadcast: BroadcastConfig{
			MaxDurationSeconds: 240,
		},
		ChatGPT: ChatGPTConfig{
			Endpoint:          "https://api.openai.com/v1/chat/completions",
			Model:             "gpt-4o-mini",
			RequestsPerMinute: 30,
			SystemPrompt:      "你是一位新闻播音稿编辑，请把结构化的播报内容改写为流畅的口语稿，保持段落顺序与内容不变。",
		},
		Sources: []SourceConfig{
			{
				Name:    "rss",
				Fetcher: "rss",
				Endpoints: []EndpointConfig{
					{Name: "techdaily", URL: "https://example.org/feed.xml"},
				},
			},
			{
				Name:    "weather",
				Fetcher: "weather",
				Endpoints: []EndpointConfig{
					{Name: "Shanghai", URL: "https://wttr.in"},
				},
			},
		},
	}
}
