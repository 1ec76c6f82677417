package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TrendsLibrary/internal/domain"
)

const (
	defaultTimezone  = "UTC"
	defaultRedisURL  = "redis://localhost:6379/0"
	configPathEnv    = "TRENDS_CONFIG"
	openAIKeyEnv     = "OPENAI_API_KEY"
	brokerURLEnv     = "CELERY_BROKER_URL"
	resultBackendEnv = "CELERY_RESULT_BACKEND"
	cmsBaseURLEnv    = "CMS_BASE_URL"
	cmsTokenEnv      = "CMS_TOKEN"
	databaseDSNEnv   = "DATABASE_DSN"
	logLevelEnv      = "LOG_LEVEL"
	logFormatEnv     = "LOG_FORMAT"
	httpAddrEnv      = "HTTP_ADDR"
	concurrencyEnv   = "WORKER_CONCURRENCY"
	metricsAddrEnv   = "WORKER_METRICS_ADDR"
	siteOutputEnv    = "SITE_OUTPUT_DIR"
	siteScheduleEnv  = "SITE_SCHEDULE"
)

// Config holds settings shared by the gateway, the workers and the site generator.
// It is loaded once at process start and passed down explicitly.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
	Queue    QueueConfig    `yaml:"queue"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Trends   TrendsConfig   `yaml:"trends"`
	CMS      CMSConfig      `yaml:"cms"`
	Database DatabaseConfig `yaml:"database"`
	Site     SiteConfig     `yaml:"site"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig describes the gateway listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// QueueConfig wires the Redis broker, result backend and worker pool.
type QueueConfig struct {
	BrokerURL   string        `yaml:"brokerUrl"`
	BackendURL  string        `yaml:"backendUrl"`
	Name        string        `yaml:"name"`
	ResultTTL   time.Duration `yaml:"resultTtl"`
	Concurrency int           `yaml:"concurrency"`
	PollTimeout time.Duration `yaml:"pollTimeout"`
	MetricsAddr string        `yaml:"metricsAddr"`
}

// OpenAIConfig defines how to contact the text and image generation APIs.
type OpenAIConfig struct {
	APIKey       string        `yaml:"apiKey"`
	BaseURL      string        `yaml:"baseUrl"`
	ArticleModel string        `yaml:"articleModel"`
	NewsModel    string        `yaml:"newsModel"`
	ImageModel   string        `yaml:"imageModel"`
	ImageSize    string        `yaml:"imageSize"`
	Timeout      time.Duration `yaml:"timeout"`
}

// TrendsConfig points at the trend-discovery feed.
type TrendsConfig struct {
	FeedURL string        `yaml:"feedUrl"`
	TopN    int           `yaml:"topN"`
	Timeout time.Duration `yaml:"timeout"`
}

// CMSConfig is the publishing sink.
type CMSConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// DatabaseConfig enables the optional publication log when DSN is set.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SiteConfig drives the static-site fallback pipeline.
type SiteConfig struct {
	OutputDir string         `yaml:"outputDir"`
	Country   string         `yaml:"country"`
	Schedule  string         `yaml:"schedule"`
	Timezone  string         `yaml:"timezone"`
	location  *time.Location `yaml:"-"`
}

// Location resolves the schedule timezone string to a time.Location.
func (s SiteConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, err
	}
	return fileCfg, nil
}

// GenerationEnabled reports whether a language-model credential is configured.
func (c Config) GenerationEnabled() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

// ValidateWorker checks settings the queue workers strictly require.
func (c Config) ValidateWorker() error {
	if !c.GenerationEnabled() {
		return &domain.ConfigError{Field: openAIKeyEnv, Message: "required for content generation jobs"}
	}
	if c.Queue.BrokerURL == "" {
		return &domain.ConfigError{Field: brokerURLEnv, Message: "broker url is empty"}
	}
	if c.Queue.BackendURL == "" {
		return &domain.ConfigError{Field: resultBackendEnv, Message: "result backend url is empty"}
	}
	return nil
}

// ValidateGateway checks settings the HTTP gateway strictly requires.
func (c Config) ValidateGateway() error {
	if c.Queue.BrokerURL == "" {
		return &domain.ConfigError{Field: brokerURLEnv, Message: "broker url is empty"}
	}
	if c.Queue.BackendURL == "" {
		return &domain.ConfigError{Field: resultBackendEnv, Message: "result backend url is empty"}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(brokerURLEnv); v != "" {
		c.Queue.BrokerURL = v
	}
	if v := os.Getenv(resultBackendEnv); v != "" {
		c.Queue.BackendURL = v
	}
	if v := os.Getenv(cmsBaseURLEnv); v != "" {
		c.CMS.BaseURL = v
	}
	if v := os.Getenv(cmsTokenEnv); v != "" {
		c.CMS.Token = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(concurrencyEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Queue.Concurrency = n
		} else {
			log.Printf("config: ignoring invalid %s=%q", concurrencyEnv, v)
		}
	}
	if v := os.Getenv(metricsAddrEnv); v != "" {
		c.Queue.MetricsAddr = v
	}
	if v := os.Getenv(siteOutputEnv); v != "" {
		c.Site.OutputDir = v
	}
	if v := os.Getenv(siteScheduleEnv); v != "" {
		c.Site.Schedule = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Site.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Site.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}

	if override.Queue.BrokerURL != "" {
		base.Queue.BrokerURL = override.Queue.BrokerURL
	}
	if override.Queue.BackendURL != "" {
		base.Queue.BackendURL = override.Queue.BackendURL
	}
	if override.Queue.Name != "" {
		base.Queue.Name = override.Queue.Name
	}
	if override.Queue.ResultTTL > 0 {
		base.Queue.ResultTTL = override.Queue.ResultTTL
	}
	if override.Queue.Concurrency > 0 {
		base.Queue.Concurrency = override.Queue.Concurrency
	}
	if override.Queue.PollTimeout > 0 {
		base.Queue.PollTimeout = override.Queue.PollTimeout
	}
	if override.Queue.MetricsAddr != "" {
		base.Queue.MetricsAddr = override.Queue.MetricsAddr
	}

	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}
	if override.OpenAI.ArticleModel != "" {
		base.OpenAI.ArticleModel = override.OpenAI.ArticleModel
	}
	if override.OpenAI.NewsModel != "" {
		base.OpenAI.NewsModel = override.OpenAI.NewsModel
	}
	if override.OpenAI.ImageModel != "" {
		base.OpenAI.ImageModel = override.OpenAI.ImageModel
	}
	if override.OpenAI.ImageSize != "" {
		base.OpenAI.ImageSize = override.OpenAI.ImageSize
	}
	if override.OpenAI.Timeout > 0 {
		base.OpenAI.Timeout = override.OpenAI.Timeout
	}

	if override.Trends.FeedURL != "" {
		base.Trends.FeedURL = override.Trends.FeedURL
	}
	if override.Trends.TopN > 0 {
		base.Trends.TopN = override.Trends.TopN
	}
	if override.Trends.Timeout > 0 {
		base.Trends.Timeout = override.Trends.Timeout
	}

	if override.CMS.BaseURL != "" {
		base.CMS.BaseURL = override.CMS.BaseURL
	}
	if override.CMS.Token != "" {
		base.CMS.Token = override.CMS.Token
	}
	if override.CMS.Timeout > 0 {
		base.CMS.Timeout = override.CMS.Timeout
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Site.OutputDir != "" {
		base.Site.OutputDir = override.Site.OutputDir
	}
	if override.Site.Country != "" {
		base.Site.Country = override.Site.Country
	}
	if override.Site.Schedule != "" {
		base.Site.Schedule = override.Site.Schedule
	}
	if override.Site.Timezone != "" {
		base.Site.Timezone = override.Site.Timezone
	}

	return base
}

// Default returns the built-in configuration.
func Default() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		HTTP:    HTTPConfig{Addr: ":8000"},
		Queue: QueueConfig{
			BrokerURL:   defaultRedisURL,
			BackendURL:  defaultRedisURL,
			Name:        "celery",
			ResultTTL:   24 * time.Hour,
			Concurrency: 4,
			PollTimeout: 5 * time.Second,
			MetricsAddr: ":9100",
		},
		OpenAI: OpenAIConfig{
			BaseURL:      "https://api.openai.com/v1",
			ArticleModel: "gpt-4o",
			NewsModel:    "gpt-3.5-turbo",
			ImageModel:   "dall-e-3",
			ImageSize:    "1024x1024",
			Timeout:      120 * time.Second,
		},
		Trends: TrendsConfig{
			FeedURL: "https://trends.google.com/trending/rss",
			TopN:    20,
			Timeout: 20 * time.Second,
		},
		CMS: CMSConfig{
			BaseURL: "http://localhost:1337",
			Timeout: 30 * time.Second,
		},
		Site: SiteConfig{
			OutputDir: "docs",
			Country:   "US",
			Timezone:  defaultTimezone,
			location:  tz,
		},
	}
}
