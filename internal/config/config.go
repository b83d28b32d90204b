package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"SecurityNewsScanner/internal/classifier"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "SECNEWS_CONFIG"
	storeURLEnv       = "SECNEWS_STORE_URL"
	logLevelEnv       = "SECNEWS_LOG_LEVEL"
	databaseDSNEnv    = "DATABASE_DSN"
	chatGPTAPIKeyEnv  = "CHATGPT_API_KEY"
	chatGPTModelEnv   = "CHATGPT_MODEL"
	mlInferenceURLEnv = "ML_INFERENCE_URL"
	mlAPIKeyEnv       = "ML_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Run           RunConfig           `yaml:"run"`
	Store         StoreConfig         `yaml:"store"`
	Database      DatabaseConfig      `yaml:"database"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Notifications NotificationConfig  `yaml:"notifications"`
	ML            MLConfig            `yaml:"ml"`
	ChatGPT       ChatGPTConfig       `yaml:"chatgpt"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Site          SiteConfig          `yaml:"site"`
	Taxonomy      classifier.Taxonomy `yaml:"taxonomy"`
}

// LoggingConfig selects verbosity and the append-only log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// RunConfig bounds one crawl. It is read once and never mutated during a run.
type RunConfig struct {
	StartURL         string   `yaml:"startUrl"`
	MaxPages         int      `yaml:"maxPages"`
	BatchSize        int      `yaml:"batchSize"`
	RequestTimeout   Duration `yaml:"requestTimeout"`
	MaxRetries       int      `yaml:"maxRetries"`
	RetryDelay       Duration `yaml:"retryDelay"`
	InterBatchDelay  Duration `yaml:"interBatchDelay"`
	InterPageDelay   Duration `yaml:"interPageDelay"`
	UserAgent        string   `yaml:"userAgent"`
	MaxSummaryInput  int      `yaml:"maxSummaryInput"`
	MinSummaryLength int      `yaml:"minSummaryLength"`
	MaxSummaryLength int      `yaml:"maxSummaryLength"`
}

// StoreConfig points at the HTTP article store shared with the dashboard.
type StoreConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// DatabaseConfig describes an optional Postgres store; when DSN is set it replaces the HTTP store.
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// SchedulerConfig defines when the scanner should run in schedule mode.
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

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// MLConfig describes the summarization inference endpoint.
type MLConfig struct {
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// MetricsConfig enables the node-exporter textfile written after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// SiteConfig describes the crawled site and its layout.
type SiteConfig struct {
	Name      string         `yaml:"name"`
	Layout    string         `yaml:"layout"`
	Source    string         `yaml:"source"`
	Selectors SelectorConfig `yaml:"selectors"`
}

// SelectorConfig overrides individual layout selectors.
type SelectorConfig struct {
	Links string `yaml:"links"`
	Next  string `yaml:"next"`
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
	Body  string `yaml:"body"`
}

// SourceID returns the identifier stored with each article.
func (c Config) SourceID() string {
	if c.Site.Source != "" {
		return c.Site.Source
	}
	return c.Run.StartURL
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Taxonomy) == 0 {
		cfg.Taxonomy = classifier.DefaultTaxonomy()
	}

	return cfg
}

// parse decodes raw YAML over a fresh copy of the defaults, so omitted keys keep default values.
func parse(raw []byte) (Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that would make a run meaningless.
func (c Config) Validate() error {
	var errs []error
	if c.Run.StartURL == "" {
		errs = append(errs, errors.New("run.startUrl is required"))
	}
	if c.Run.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("run.maxPages must be positive, got %d", c.Run.MaxPages))
	}
	if c.Run.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("run.batchSize must be positive, got %d", c.Run.BatchSize))
	}
	if c.Run.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("run.maxRetries must be positive, got %d", c.Run.MaxRetries))
	}
	if c.Run.MinSummaryLength > c.Run.MaxSummaryLength {
		errs = append(errs, fmt.Errorf("run.minSummaryLength %d exceeds maxSummaryLength %d",
			c.Run.MinSummaryLength, c.Run.MaxSummaryLength))
	}
	if c.Store.URL == "" && c.Database.DSN == "" {
		errs = append(errs, errors.New("either store.url or database.dsn is required"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storeURLEnv); v != "" {
		c.Store.URL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

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

	if v := os.Getenv(mlInferenceURLEnv); v != "" {
		c.ML.InferenceURL = v
	}

	if v := os.Getenv(mlAPIKeyEnv); v != "" {
		c.ML.APIKey = v
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

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", File: "scraper.log"},
		Run: RunConfig{
			StartURL:         "https://www.bleepingcomputer.com/news/security/",
			MaxPages:         2,
			BatchSize:        5,
			RequestTimeout:   DurationFrom(30 * time.Second),
			MaxRetries:       3,
			RetryDelay:       DurationFrom(time.Second),
			InterBatchDelay:  DurationFrom(time.Second),
			InterPageDelay:   DurationFrom(2 * time.Second),
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			MaxSummaryInput:  1024,
			MinSummaryLength: 50,
			MaxSummaryLength: 130,
		},
		Store:     StoreConfig{URL: "http://localhost:5000/data", Timeout: DurationFrom(15 * time.Second)},
		Database:  DatabaseConfig{Table: "security_articles"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You summarize cyber security news articles for an analyst dashboard.",
		},
		Site: SiteConfig{Name: "bleepingcomputer", Layout: "bleepingcomputer"},
	}
}
