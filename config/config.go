package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Itchflow ItchflowConfig `yaml:"itchflow"`
	Feed     FeedConfig     `yaml:"feed"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	VWAP     VWAPConfig     `yaml:"vwap"`
	Output   OutputConfig   `yaml:"output"`
	Storage  StorageConfig  `yaml:"storage"`
	Stream   StreamConfig   `yaml:"stream"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ItchflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type FeedConfig struct {
	Path string `yaml:"path"`
	// SessionDate, when set (YYYY-MM-DD), switches execution and snapshot
	// timestamps from the legacy epoch-anchored formatting to wall-clock
	// times on that trading date.
	SessionDate string `yaml:"session_date"`
}

type ScannerConfig struct {
	// StrictUnknown aborts the run on an unrecognized type code instead
	// of resyncing one byte at a time.
	StrictUnknown bool `yaml:"strict_unknown"`
	ProgressLog   bool `yaml:"progress_log"`
}

type SnapshotConfig struct {
	Recorder bool    `yaml:"recorder"`
	StoreDir string  `yaml:"store_dir"`
	Throttle float64 `yaml:"throttle_per_second"`
}

type VWAPConfig struct {
	Enabled     bool          `yaml:"enabled"`
	From        string        `yaml:"from"` // HH:MM offset from session midnight
	To          string        `yaml:"to"`
	Granularity time.Duration `yaml:"granularity"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	CSV     bool   `yaml:"csv"`
	Parquet bool   `yaml:"parquet"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type StreamConfig struct {
	Websocket WebsocketConfig `yaml:"websocket"`
	Kafka     KafkaConfig     `yaml:"kafka"`
}

type WebsocketConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type MetricsConfig struct {
	Prometheus PrometheusConfig `yaml:"prometheus"`
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// Load reads, expands, parses, defaults and validates the configuration
// file. ${VAR} references are expanded from the environment before
// parsing so credentials never need to live in the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Itchflow.Name == "" {
		c.Itchflow.Name = "itchflow"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
	if !c.Output.CSV && !c.Output.Parquet {
		c.Output.CSV = true
	}
	if c.VWAP.From == "" {
		c.VWAP.From = "09:30"
	}
	if c.VWAP.To == "" {
		c.VWAP.To = "16:00"
	}
	if c.VWAP.Granularity == 0 {
		c.VWAP.Granularity = time.Hour
	}
	if c.Stream.Websocket.Address == "" {
		c.Stream.Websocket.Address = ":8080"
	}
	if c.Stream.Kafka.Topic == "" {
		c.Stream.Kafka.Topic = "itchflow.executions"
	}
	if c.Metrics.Prometheus.Address == "" {
		c.Metrics.Prometheus.Address = ":2112"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func (c *Config) Validate() error {
	if c.Feed.Path == "" {
		return fmt.Errorf("feed.path is required")
	}
	if c.Feed.SessionDate != "" {
		if _, err := time.Parse("2006-01-02", c.Feed.SessionDate); err != nil {
			return fmt.Errorf("feed.session_date must be YYYY-MM-DD: %w", err)
		}
	}
	if c.VWAP.Enabled {
		from, err := ParseClock(c.VWAP.From)
		if err != nil {
			return fmt.Errorf("vwap.from: %w", err)
		}
		to, err := ParseClock(c.VWAP.To)
		if err != nil {
			return fmt.Errorf("vwap.to: %w", err)
		}
		if to <= from {
			return fmt.Errorf("vwap window is empty: %s..%s", c.VWAP.From, c.VWAP.To)
		}
		if c.VWAP.Granularity <= 0 {
			return fmt.Errorf("vwap.granularity must be positive")
		}
	}
	if c.Storage.S3.Enabled {
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when s3 is enabled")
		}
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when s3 is enabled")
		}
	}
	if c.Stream.Kafka.Enabled && len(c.Stream.Kafka.Brokers) == 0 {
		return fmt.Errorf("stream.kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// SessionDate parses feed.session_date; ok is false when unset.
func (c *Config) SessionDate() (time.Time, bool) {
	if c.Feed.SessionDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", c.Feed.SessionDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ParseClock converts an HH:MM string into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
