package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	// PlaceholderAPIKey is the reserved credential value meaning "not configured".
	PlaceholderAPIKey = "your_api_key_here"

	configPathEnv     = "NEWS_VERIFIER_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	databaseDriverEnv = "DATABASE_DRIVER"
	databaseDSNEnv    = "DATABASE_DSN"
	searxngEnv        = "SEARXNG_ENDPOINTS"
	primaryAPIKeyEnv  = "PRIMARY_API_KEY"
	primaryModelEnv   = "PRIMARY_MODEL"
	primaryBaseURLEnv = "PRIMARY_BASE_URL"
	cohereAPIKeyEnv   = "COHERE_API_KEY"
	newsAPIKeyEnv     = "NEWSAPI_KEY"
	redisAddrEnv      = "REDIS_ADDR"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	randomSeedEnv     = "RANDOM_SEED"
	apiAddrEnv        = "API_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Search        SearchConfig       `yaml:"search"`
	Encyclopedia  EncyclopediaConfig `yaml:"encyclopedia"`
	Cache         CacheConfig        `yaml:"cache"`
	Primary       PrimaryConfig      `yaml:"primary"`
	Secondary     SecondaryConfig    `yaml:"secondary"`
	NewsAPI       NewsAPIConfig      `yaml:"newsapi"`
	Ingestion     IngestionConfig    `yaml:"ingestion"`
	Imaging       ImagingConfig      `yaml:"imaging"`
	Notifications NotificationConfig `yaml:"notifications"`
	API           APIConfig          `yaml:"api"`
	Random        RandomConfig       `yaml:"random"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the SQL store. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines when ingestion runs and for which sectors.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	Sectors        []string       `yaml:"sectors"`
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

// SearchConfig lists the interchangeable SearXNG endpoints.
type SearchConfig struct {
	Endpoints         []string      `yaml:"endpoints"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
}

// EncyclopediaConfig points at a Wikipedia-compatible REST summary API.
type EncyclopediaConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig enables the Redis cache for context lookups when RedisAddr is set.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDb"`
	TTL           time.Duration `yaml:"ttl"`
}

// PrimaryConfig describes the OpenAI-compatible generative backend.
type PrimaryConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SecondaryConfig describes the Cohere generative backend.
type SecondaryConfig struct {
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// NewsAPIConfig configures the secondary article provider.
type NewsAPIConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// IngestionConfig tunes the orchestrator and its background executor.
type IngestionConfig struct {
	ArticlesPerSector int `yaml:"articlesPerSector"`
	Workers           int `yaml:"workers"`
	QueueSize         int `yaml:"queueSize"`
}

// ImagingConfig bounds image downloads.
type ImagingConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"maxBytes"`
	MaxPixels int64         `yaml:"maxPixels"`
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

// APIConfig configures the HTTP surface.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// RandomConfig seeds synthetic fallbacks. Zero means time-based.
type RandomConfig struct {
	Seed uint64 `yaml:"seed"`
}

// SourceConfig describes a single scraped source with its scanner strategy.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	Sector  string            `yaml:"sector"`
	URL     string            `yaml:"url"`
	Options map[string]string `yaml:"options"`
}

// UsableKey reports whether a credential is present and not the placeholder.
func UsableKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderAPIKey
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		cfg = loadFile(cfg, path)
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// LoadFile is Load with an explicit path that takes precedence over the environment.
func LoadFile(path string) Config {
	if path == "" {
		return Load()
	}
	cfg := loadFile(defaultConfig(), path)
	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}
	return cfg
}

func loadFile(cfg Config, path string) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		return cfg
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		return cfg
	}
	return mergeConfig(cfg, fileCfg)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(searxngEnv); v != "" {
		c.Search.Endpoints = splitList(v)
	}

	if v := os.Getenv(primaryAPIKeyEnv); v != "" {
		c.Primary.APIKey = v
	}
	if v := os.Getenv(primaryModelEnv); v != "" {
		c.Primary.Model = v
	}
	if v := os.Getenv(primaryBaseURLEnv); v != "" {
		c.Primary.BaseURL = v
	}
	if v := os.Getenv(cohereAPIKeyEnv); v != "" {
		c.Secondary.APIKey = v
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.NewsAPI.APIKey = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Cache.RedisAddr = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(randomSeedEnv); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Random.Seed = seed
		} else {
			log.Printf("config: invalid %s %q: %v", randomSeedEnv, v, err)
		}
	}

	if v := os.Getenv(apiAddrEnv); v != "" {
		c.API.Addr = v
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
		base.Logging.Level = override.Logging.Level
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if len(override.Scheduler.Sectors) > 0 {
		base.Scheduler.Sectors = override.Scheduler.Sectors
	}

	if len(override.Search.Endpoints) > 0 {
		base.Search.Endpoints = override.Search.Endpoints
	}
	if override.Search.Timeout > 0 {
		base.Search.Timeout = override.Search.Timeout
	}
	if override.Search.RequestsPerSecond > 0 {
		base.Search.RequestsPerSecond = override.Search.RequestsPerSecond
	}
	if override.Search.Burst > 0 {
		base.Search.Burst = override.Search.Burst
	}

	if override.Encyclopedia.Endpoint != "" {
		base.Encyclopedia.Endpoint = override.Encyclopedia.Endpoint
	}
	if override.Encyclopedia.Timeout > 0 {
		base.Encyclopedia.Timeout = override.Encyclopedia.Timeout
	}

	if override.Cache.RedisAddr != "" {
		base.Cache = override.Cache
		if base.Cache.TTL <= 0 {
			base.Cache.TTL = defaultConfig().Cache.TTL
		}
	}

	if override.Primary.BaseURL != "" {
		base.Primary.BaseURL = override.Primary.BaseURL
	}
	if override.Primary.Model != "" {
		base.Primary.Model = override.Primary.Model
	}
	if override.Primary.APIKey != "" {
		base.Primary.APIKey = override.Primary.APIKey
	}
	if override.Primary.Temperature > 0 {
		base.Primary.Temperature = override.Primary.Temperature
	}
	if override.Primary.Timeout > 0 {
		base.Primary.Timeout = override.Primary.Timeout
	}

	if override.Secondary.Model != "" {
		base.Secondary.Model = override.Secondary.Model
	}
	if override.Secondary.APIKey != "" {
		base.Secondary.APIKey = override.Secondary.APIKey
	}
	if override.Secondary.Temperature > 0 {
		base.Secondary.Temperature = override.Secondary.Temperature
	}
	if override.Secondary.Timeout > 0 {
		base.Secondary.Timeout = override.Secondary.Timeout
	}

	if override.NewsAPI.Endpoint != "" {
		base.NewsAPI.Endpoint = override.NewsAPI.Endpoint
	}
	if override.NewsAPI.APIKey != "" {
		base.NewsAPI.APIKey = override.NewsAPI.APIKey
	}
	if override.NewsAPI.Timeout > 0 {
		base.NewsAPI.Timeout = override.NewsAPI.Timeout
	}

	if override.Ingestion.ArticlesPerSector > 0 {
		base.Ingestion.ArticlesPerSector = override.Ingestion.ArticlesPerSector
	}
	if override.Ingestion.Workers > 0 {
		base.Ingestion.Workers = override.Ingestion.Workers
	}
	if override.Ingestion.QueueSize > 0 {
		base.Ingestion.QueueSize = override.Ingestion.QueueSize
	}

	if override.Imaging.Timeout > 0 {
		base.Imaging.Timeout = override.Imaging.Timeout
	}
	if override.Imaging.MaxBytes > 0 {
		base.Imaging.MaxBytes = override.Imaging.MaxBytes
	}
	if override.Imaging.MaxPixels > 0 {
		base.Imaging.MaxPixels = override.Imaging.MaxPixels
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.API.Addr != "" {
		base.API.Addr = override.API.Addr
	}

	if override.Random.Seed != 0 {
		base.Random.Seed = override.Random.Seed
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "newsverifier.db"},
		Scheduler: SchedulerConfig{
			CronExpression: "*/30 * * * *",
			Timezone:       defaultTimezone,
			Sectors:        []string{"technology", "politics", "health"},
			location:       tz,
		},
		Search: SearchConfig{
			Endpoints: []string{
				"https://searx.be",
				"https://search.sapti.me",
				"https://searx.tiekoetter.com",
				"https://search.bus-hit.me",
				"https://searx.work",
			},
			Timeout:           10 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Encyclopedia: EncyclopediaConfig{
			Endpoint: "https://en.wikipedia.org/api/rest_v1/page/summary",
			Timeout:  8 * time.Second,
		},
		Cache: CacheConfig{TTL: 6 * time.Hour},
		Primary: PrimaryConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			APIKey:      PlaceholderAPIKey,
			Temperature: 0.2,
			Timeout:     30 * time.Second,
		},
		Secondary: SecondaryConfig{
			Model:       "command-r",
			APIKey:      PlaceholderAPIKey,
			Temperature: 0.2,
			Timeout:     30 * time.Second,
		},
		NewsAPI: NewsAPIConfig{
			Endpoint: "https://newsapi.org/v2",
			APIKey:   PlaceholderAPIKey,
			Timeout:  15 * time.Second,
		},
		Ingestion: IngestionConfig{ArticlesPerSector: 10, Workers: 4, QueueSize: 64},
		Imaging:   ImagingConfig{Timeout: 15 * time.Second, MaxBytes: 10 << 20, MaxPixels: 40_000_000},
		API:       APIConfig{Addr: ":8080"},
		Sources: []SourceConfig{
			{Name: "bbc-technology", Scanner: "rss", Sector: "technology", URL: "https://feeds.bbci.co.uk/news/technology/rss.xml"},
			{Name: "bbc-politics", Scanner: "rss", Sector: "politics", URL: "https://feeds.bbci.co.uk/news/politics/rss.xml"},
			{Name: "bbc-health", Scanner: "rss", Sector: "health", URL: "https://feeds.bbci.co.uk/news/health/rss.xml"},
			{
				Name:    "apnews-technology",
				Scanner: "html",
				Sector:  "technology",
				URL:     "https://apnews.com/hub/technology",
				Options: map[string]string{
					"link_selector": ".PagePromo-title a[href]",
				},
			},
		},
	}
}
