// Package config loads the yaml configuration shared by all worker roles
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server" jsonschema:"description=Operator API server configuration"`
	Database   DatabaseConfig   `yaml:"database" json:"database" jsonschema:"description=Task store and dedup ledger database"`
	Broker     BrokerConfig     `yaml:"broker" json:"broker" jsonschema:"description=NATS JetStream broker"`
	Scheduler  SchedulerConfig  `yaml:"scheduler" json:"scheduler" jsonschema:"description=Scrape scheduler configuration"`
	Sources    SourcesConfig    `yaml:"sources" json:"sources" jsonschema:"description=Source fetch configuration"`
	LLM        LLMConfig        `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for relevance judgment and criterion refinement"`
	Filter     FilterConfig     `yaml:"filter" json:"filter" jsonschema:"description=Relevance filter configuration"`
	Refiner    RefinerConfig    `yaml:"refiner" json:"refiner" jsonschema:"description=Feedback refiner configuration"`
	Dispatcher DispatcherConfig `yaml:"dispatcher" json:"dispatcher" jsonschema:"description=Notification dispatcher configuration"`
}

// ServerConfig holds operator API settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:newswatch.db?cache=shared&mode=rwc&_txlock=immediate,description=Database connection string"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
}

// BrokerConfig holds message broker settings
type BrokerConfig struct {
	URL             string        `yaml:"url" json:"url" jsonschema:"default=nats://127.0.0.1:4222,description=NATS server URL"`
	Prefix          string        `yaml:"prefix" json:"prefix" jsonschema:"default=newswatch,description=Subject and stream name prefix"`
	AckWait         time.Duration `yaml:"ack_wait" json:"ack_wait" jsonschema:"default=5m,description=Redelivery timeout of an unacknowledged message"`
	MaxDeliver      int           `yaml:"max_deliver" json:"max_deliver" jsonschema:"default=5,minimum=1,description=Delivery attempts before a failing message is given up; store outages retry without limit"`
	NakDelay        time.Duration `yaml:"nak_delay" json:"nak_delay" jsonschema:"default=10s,description=Redelivery delay after a failed handler"`
	DuplicateWindow time.Duration `yaml:"duplicate_window" json:"duplicate_window" jsonschema:"default=10m,description=Publish dedup window keyed by message id"`
}

// SchedulerConfig holds scrape scheduler settings
type SchedulerConfig struct {
	Interval     time.Duration `yaml:"interval" json:"interval" jsonschema:"default=5m,description=Interval between scrape ticks"`
	MaxWorkers   int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,minimum=1,description=Maximum concurrent fetches"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" jsonschema:"default=30s,description=Timeout of one source fetch"`
	FetchLimit   int           `yaml:"fetch_limit" json:"fetch_limit" jsonschema:"default=25,minimum=1,maximum=100,description=Maximum items per fetch"`
}

// SourcesConfig holds source fetch settings
type SourcesConfig struct {
	UserAgent  string           `yaml:"user_agent" json:"user_agent" jsonschema:"default=Newswatch/1.0,description=User agent for HTTP requests"`
	MaxExcerpt int              `yaml:"max_excerpt" json:"max_excerpt" jsonschema:"default=1000,description=Maximum excerpt length in characters"`
	Reddit     RedditConfig     `yaml:"reddit" json:"reddit" jsonschema:"description=Reddit source settings"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Article text extraction for items without excerpt"`
}

// RedditConfig holds reddit source settings
type RedditConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://www.reddit.com,description=Reddit API base URL"`
	RateLimit time.Duration `yaml:"rate_limit" json:"rate_limit" jsonschema:"default=2s,description=Minimal interval between reddit requests"`
}

// ExtractionConfig holds content extraction settings
type ExtractionConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable excerpt extraction from article pages"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Extraction timeout per article"`
}

// LLMConfig holds LLM configuration
type LLMConfig struct {
	Endpoint string        `yaml:"endpoint" json:"endpoint" jsonschema:"required,description=OpenAI-compatible API endpoint"`
	APIKey   string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model    string        `yaml:"model" json:"model" jsonschema:"required,description=Model name (e.g. gpt-4o-mini or llama3)"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
	Judge    PromptConfig  `yaml:"judge" json:"judge" jsonschema:"description=Relevance judgment request settings"`
	Refine   PromptConfig  `yaml:"refine" json:"refine" jsonschema:"description=Criterion refinement request settings"`
}

// PromptConfig holds settings of one kind of LLM request
type PromptConfig struct {
	Temperature  float64 `yaml:"temperature" json:"temperature" jsonschema:"description=Temperature for response generation"`
	MaxTokens    int     `yaml:"max_tokens" json:"max_tokens" jsonschema:"description=Maximum tokens in response"`
	SystemPrompt string  `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt override (optional)"`
}

// RetryConfig holds bounded retry settings of capability calls
type RetryConfig struct {
	Attempts int           `yaml:"attempts" json:"attempts" jsonschema:"default=3,minimum=1,maximum=10,description=Attempts per capability call"`
	Delay    time.Duration `yaml:"delay" json:"delay" jsonschema:"default=1s,description=Initial backoff delay"`
	MaxDelay time.Duration `yaml:"max_delay" json:"max_delay" jsonschema:"default=10s,description=Maximum backoff delay"`
}

// FilterConfig holds relevance filter settings
type FilterConfig struct {
	Workers       int         `yaml:"workers" json:"workers" jsonschema:"default=2,minimum=1,description=Concurrent raw_content consumers"`
	Retry         RetryConfig `yaml:"retry" json:"retry" jsonschema:"description=Judgment retry policy"`
	SubjectLength int         `yaml:"subject_length" json:"subject_length" jsonschema:"default=50,description=Maximum title length in notification subject"`
}

// RefinerConfig holds feedback refiner settings
type RefinerConfig struct {
	Workers            int         `yaml:"workers" json:"workers" jsonschema:"default=1,minimum=1,description=Concurrent feedback consumers"`
	Retry              RetryConfig `yaml:"retry" json:"retry" jsonschema:"description=Refinement retry policy"`
	MaxCriterionLength int         `yaml:"max_criterion_length" json:"max_criterion_length" jsonschema:"default=2000,description=Maximum length of a refined criterion"`
	SkipConfirmation   bool        `yaml:"skip_confirmation" json:"skip_confirmation" jsonschema:"default=false,description=Don't notify the owner after a criterion update"`
}

// DispatcherConfig holds notification dispatcher settings
type DispatcherConfig struct {
	Workers int           `yaml:"workers" json:"workers" jsonschema:"default=1,minimum=1,description=Concurrent filtered_content consumers"`
	Channel string        `yaml:"channel" json:"channel" jsonschema:"default=log,enum=log,enum=webhook,description=Delivery channel"`
	Webhook WebhookConfig `yaml:"webhook" json:"webhook" jsonschema:"description=Webhook channel settings"`
}

// WebhookConfig holds webhook delivery settings
type WebhookConfig struct {
	URL     string            `yaml:"url" json:"url" jsonschema:"description=Webhook URL receiving notifications as JSON"`
	Timeout time.Duration     `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Webhook request timeout"`
	Headers map[string]string `yaml:"headers" json:"headers,omitempty" jsonschema:"description=Extra request headers"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}

	return &cfg, nil
}

// GetServerConfig returns operator API listen address and timeout
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

func (c *Config) setDefaults() {
	// server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	// database
	if c.Database.DSN == "" {
		c.Database.DSN = "file:newswatch.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	// broker
	if c.Broker.URL == "" {
		c.Broker.URL = "nats://127.0.0.1:4222"
	}
	if c.Broker.Prefix == "" {
		c.Broker.Prefix = "newswatch"
	}
	if c.Broker.AckWait == 0 {
		c.Broker.AckWait = 5 * time.Minute
	}
	if c.Broker.MaxDeliver == 0 {
		c.Broker.MaxDeliver = 5
	}
	if c.Broker.NakDelay == 0 {
		c.Broker.NakDelay = 10 * time.Second
	}
	if c.Broker.DuplicateWindow == 0 {
		c.Broker.DuplicateWindow = 10 * time.Minute
	}

	// scheduler
	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = 5 * time.Minute
	}
	if c.Scheduler.MaxWorkers == 0 {
		c.Scheduler.MaxWorkers = 5
	}
	if c.Scheduler.FetchTimeout == 0 {
		c.Scheduler.FetchTimeout = 30 * time.Second
	}
	if c.Scheduler.FetchLimit == 0 {
		c.Scheduler.FetchLimit = 25
	}

	// sources
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = "Newswatch/1.0"
	}
	if c.Sources.MaxExcerpt == 0 {
		c.Sources.MaxExcerpt = 1000
	}
	if c.Sources.Reddit.BaseURL == "" {
		c.Sources.Reddit.BaseURL = "https://www.reddit.com"
	}
	if c.Sources.Reddit.RateLimit == 0 {
		c.Sources.Reddit.RateLimit = 2 * time.Second
	}
	if c.Sources.Extraction.Timeout == 0 {
		c.Sources.Extraction.Timeout = 15 * time.Second
	}

	// llm, judgment answers with one word
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}
	if c.LLM.Judge.Temperature == 0 {
		c.LLM.Judge.Temperature = 0.1
	}
	if c.LLM.Judge.MaxTokens == 0 {
		c.LLM.Judge.MaxTokens = 10
	}
	if c.LLM.Refine.Temperature == 0 {
		c.LLM.Refine.Temperature = 0.3
	}
	if c.LLM.Refine.MaxTokens == 0 {
		c.LLM.Refine.MaxTokens = 500
	}

	// filter
	if c.Filter.Workers == 0 {
		c.Filter.Workers = 2
	}
	c.Filter.Retry.setDefaults(time.Second)
	if c.Filter.SubjectLength == 0 {
		c.Filter.SubjectLength = 50
	}

	// refiner
	if c.Refiner.Workers == 0 {
		c.Refiner.Workers = 1
	}
	c.Refiner.Retry.setDefaults(2 * time.Second)
	if c.Refiner.MaxCriterionLength == 0 {
		c.Refiner.MaxCriterionLength = 2000
	}

	// dispatcher
	if c.Dispatcher.Workers == 0 {
		c.Dispatcher.Workers = 1
	}
	if c.Dispatcher.Channel == "" {
		c.Dispatcher.Channel = "log"
	}
	if c.Dispatcher.Webhook.Timeout == 0 {
		c.Dispatcher.Webhook.Timeout = 10 * time.Second
	}
}

func (r *RetryConfig) setDefaults(delay time.Duration) {
	if r.Attempts == 0 {
		r.Attempts = 3
	}
	if r.Delay == 0 {
		r.Delay = delay
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = 10 * time.Second
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate LLM config
	if cfg.LLM.Endpoint == "" {
		return fmt.Errorf("llm.endpoint is required")
	}
	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	for name, p := range map[string]PromptConfig{"judge": cfg.LLM.Judge, "refine": cfg.LLM.Refine} {
		if p.Temperature < 0 || p.Temperature > 2 {
			return fmt.Errorf("llm.%s.temperature must be between 0 and 2", name)
		}
	}
	if cfg.LLM.Timeout < time.Second {
		return fmt.Errorf("llm.timeout must be at least 1 second")
	}

	// retries are bounded, unbounded retry starves the queue
	for name, r := range map[string]RetryConfig{"filter": cfg.Filter.Retry, "refiner": cfg.Refiner.Retry} {
		if r.Attempts < 1 || r.Attempts > 10 {
			return fmt.Errorf("%s.retry.attempts must be between 1 and 10", name)
		}
	}

	if cfg.Scheduler.Interval < time.Second {
		return fmt.Errorf("scheduler.interval must be at least 1 second")
	}
	if cfg.Scheduler.FetchTimeout <= 0 {
		return fmt.Errorf("scheduler.fetch_timeout must be positive")
	}
	if cfg.Scheduler.FetchLimit < 1 || cfg.Scheduler.FetchLimit > 100 {
		return fmt.Errorf("scheduler.fetch_limit must be between 1 and 100")
	}

	if cfg.Broker.MaxDeliver < 1 {
		return fmt.Errorf("broker.max_deliver must be at least 1")
	}

	switch cfg.Dispatcher.Channel {
	case "log":
	case "webhook":
		u, err := url.Parse(cfg.Dispatcher.Webhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("dispatcher.webhook.url must be a valid http(s) URL")
		}
	default:
		return fmt.Errorf("unknown dispatcher.channel %q", cfg.Dispatcher.Channel)
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	return nil
}
