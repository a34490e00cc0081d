package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"40s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"2s"`
	} `yaml:"server"`
	Logging struct {
		Level     string `yaml:"level" default:"info"`
		Format    string `yaml:"format" default:"console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled   bool          `yaml:"enabled"`
			Interval  time.Duration `yaml:"interval" default:"30s"`
			Threshold int           `yaml:"threshold" default:"100"`
			Topic     string        `yaml:"topic" default:"crediscan.logs"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Backend struct {
		// Type selects where analysis history goes: kafka (events, persisted by the consumer),
		// clickhouse (direct writes) or none.
		Type string `yaml:"type" default:"none"`
	} `yaml:"backend"`
	Analysis struct {
		Timeout        time.Duration `yaml:"timeout" default:"30s"`
		LexiconPath    string        `yaml:"lexicon_path"`
		ResultCacheTTL time.Duration `yaml:"result_cache_ttl" default:"10m"`
		Weights        Weights       `yaml:"weights"`
	} `yaml:"analysis"`
	News  News  `yaml:"news"`
	Model Model `yaml:"model"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"crediscan"`

		PoolSize    int           `yaml:"pool_size" default:"10"`
		MinIdle     int           `yaml:"min_idle" default:"2"`
		PoolTimeout time.Duration `yaml:"pool_timeout" default:"4s"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"3s"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"analysis.completed"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"200ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"crediscan-history"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"100"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10000000"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"crediscan"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
		ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime" default:"5m"`
	} `yaml:"clickhouse"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled" default:"true"`
		Capacity     float64 `yaml:"capacity" default:"10"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"2"`
	} `yaml:"ratelimit"`
}

// Weights are the fusion coefficients of the risk scorer.
type Weights struct {
	Sensationalism float64 `yaml:"sensationalism" default:"0.20"`
	Sources        float64 `yaml:"sources" default:"0.25"`
	Emotional      float64 `yaml:"emotional" default:"0.20"`
	Clickbait      float64 `yaml:"clickbait" default:"0.15"`
	NewsRelevance  float64 `yaml:"news_relevance" default:"0.20"`
	ModelBlend     float64 `yaml:"model_blend" default:"0.5"`
}

type News struct {
	Enabled        bool          `yaml:"enabled" default:"true"`
	TTL            time.Duration `yaml:"ttl" default:"1h"`
	Throttle       time.Duration `yaml:"throttle" default:"100ms"`
	SourceTimeout  time.Duration `yaml:"source_timeout" default:"10s"`
	PerSourceLimit int           `yaml:"per_source_limit" default:"10"`
	FailureBackoff time.Duration `yaml:"failure_backoff" default:"1m"`
	WarmSchedule   string        `yaml:"warm_schedule" default:"@every 55m"`
	UserAgent      string        `yaml:"user_agent" default:"CrediScan/1.0 (+news relevance)"`
	Sources        []FeedSource  `yaml:"sources"`
}

type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Model selects the classifier. An unset backend resolves to http when a url is
// configured and to none otherwise; lexical is only used when asked for.
type Model struct {
	Backend   string        `yaml:"backend"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout" default:"5s"`
	MaxLength int           `yaml:"max_length" default:"512"`
	Retries   int           `yaml:"retries" default:"2"`
	Breaker   struct {
		FailureThreshold int           `yaml:"failure_threshold" default:"5"`
		Cooldown         time.Duration `yaml:"cooldown" default:"30s"`
	} `yaml:"breaker"`
}

// DefaultFeedSources are used when the config lists none.
func DefaultFeedSources() []FeedSource {
	return []FeedSource{
		{Name: "reuters", URL: "http://feeds.reuters.com/reuters/topNews"},
		{Name: "bbc", URL: "http://feeds.bbci.co.uk/news/rss.xml"},
		{Name: "ap", URL: "https://feeds.apnews.com/rss/apf-topnews"},
		{Name: "npr", URL: "https://feeds.npr.org/1001/rss.xml"},
		{Name: "cnn", URL: "http://rss.cnn.com/rss/edition.rss"},
	}
}

// Default returns a config populated only from struct defaults.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	c.News.Sources = DefaultFeedSources()
	c.resolveModelBackend()
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}
	c.resolveModelBackend()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(c.News.Sources) == 0 {
		c.News.Sources = DefaultFeedSources()
	}
	return &c, nil
}

// LoadWithEnv loads .env files (if present), the YAML config, then applies environment overrides.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// missing .env files are fine
		_ = godotenv.Load(f)
	}

	c, err := load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	c.resolveModelBackend()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("MODEL_BACKEND"); v != "" {
		c.Model.Backend = v
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		c.Model.URL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
}

func (c *Config) resolveModelBackend() {
	if c.Model.Backend != "" {
		return
	}
	if c.Model.URL != "" {
		c.Model.Backend = "http"
	} else {
		c.Model.Backend = "none"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Backend.Type {
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when backend.type is 'kafka'")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when backend.type is 'kafka'")
		}
	case "clickhouse", "none":
	default:
		return fmt.Errorf("backend.type must be 'kafka', 'clickhouse' or 'none', got '%s'", c.Backend.Type)
	}
	switch c.Model.Backend {
	case "http":
		if c.Model.URL == "" {
			return fmt.Errorf("model.url is required when model.backend is 'http'")
		}
	case "lexical", "none":
	default:
		return fmt.Errorf("model.backend must be 'http', 'lexical' or 'none', got '%s'", c.Model.Backend)
	}
	if c.News.TTL <= 0 {
		return fmt.Errorf("news.ttl must be positive")
	}
	if c.News.PerSourceLimit <= 0 {
		return fmt.Errorf("news.per_source_limit must be positive")
	}
	for i, s := range c.News.Sources {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("news.sources[%d] needs both name and url", i)
		}
	}
	w := c.Analysis.Weights
	for name, v := range map[string]float64{
		"sensationalism": w.Sensationalism, "sources": w.Sources, "emotional": w.Emotional,
		"clickbait": w.Clickbait, "news_relevance": w.NewsRelevance, "model_blend": w.ModelBlend,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("analysis.weights.%s must be within [0,1], got %v", name, v)
		}
	}
	return nil
}
