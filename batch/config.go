package batch

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Queue backends
const (
	MemoryBackend = "memory"
	RedisBackend  = "redis"
)

// Config holds the settings of a batch run
type Config struct {
	Workers     int
	Folds       int
	Repetitions int
	Seed        int64
	Metadata    string
	Label       string
	OutputDir   string `mapstructure:"output_dir"`
	Datasets    []string
	Queue       QueueConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// QueueConfig selects the queue jobs are distributed through
type QueueConfig struct {
	Backend string
	Redis   RedisConfig
}

// RedisConfig holds the address of the redis server and the
// prefix for the keys of the queue
type RedisConfig struct {
	Addr string
	ID   string
}

// LogConfig holds the name of the level to log at
type LogConfig struct {
	Level string
}

// MetricsConfig holds the address to serve metrics on, no
// metrics are served if empty
type MetricsConfig struct {
	Listen string
}

/*
LoadConfig reads the config file at the given path and returns the Config
it describes, with defaults for the settings it does not define: 10 folds,
10 repetitions, a worker per CPU and the memory queue.

It returns an error if the file cannot be read or the config is invalid.
*/
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("folds", 10)
	v.SetDefault("repetitions", 10)
	v.SetDefault("seed", 1)
	v.SetDefault("label", "label")
	v.SetDefault("output_dir", ".")
	v.SetDefault("queue.backend", MemoryBackend)
	v.SetDefault("queue.redis.addr", "localhost:6379")
	v.SetDefault("queue.redis.id", "mlcore")
	v.SetDefault("log.level", "info")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate returns an error if the config cannot be used for a run
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Folds < 2 {
		return fmt.Errorf("folds must be at least 2, got %d", c.Folds)
	}
	if c.Repetitions < 1 {
		return fmt.Errorf("repetitions must be at least 1, got %d", c.Repetitions)
	}
	if c.Metadata == "" {
		return errors.New("metadata file required")
	}
	if c.Label == "" {
		return errors.New("label required")
	}
	if len(c.Datasets) == 0 {
		return errors.New("no datasets to process")
	}
	switch c.Queue.Backend {
	case MemoryBackend:
	case RedisBackend:
		if c.Queue.Redis.Addr == "" || c.Queue.Redis.ID == "" {
			return errors.New("redis queue requires an address and an id")
		}
	default:
		return fmt.Errorf("unknown queue backend %q", c.Queue.Backend)
	}
	return nil
}
