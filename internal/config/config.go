package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/itemflow/internal/processor"
)

type Config struct {
	Processing ProcessingConfig `yaml:"processing"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Paths      PathsConfig      `yaml:"paths"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

type ProcessingConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryCount    *int          `yaml:"retry_count"`
}

type PipelineConfig struct {
	Strategy StageConfig `yaml:"strategy"`
}

// StageConfig describes one node of the strategy tree. Which fields apply
// depends on Type.
type StageConfig struct {
	Type string `yaml:"type"`

	// validators for the leaf types
	MinLength int    `yaml:"min_length"`
	MaxLength int    `yaml:"max_length"`
	Pattern   string `yaml:"pattern"`
	Schema    string `yaml:"schema"`

	// jsonpath
	Path string `yaml:"path"`

	// script
	Script string `yaml:"script"`

	// command
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`

	// chain
	Stages []StageConfig `yaml:"stages"`

	// conditional
	Routes  []RouteConfig `yaml:"routes"`
	Default *StageConfig  `yaml:"default"`

	// retry
	Stage      *StageConfig  `yaml:"stage"`
	MaxRetries *int          `yaml:"max_retries"`
	Delay      time.Duration `yaml:"delay"`
	Backoff    string        `yaml:"backoff"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

type RouteConfig struct {
	Match  string      `yaml:"match"`
	Prefix string      `yaml:"prefix"`
	Stage  StageConfig `yaml:"stage"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
}

type WatcherConfig struct {
	Extensions         []string      `yaml:"extensions"`
	MaxConcurrentFiles int           `yaml:"max_concurrent_files"`
	SettleDelay        time.Duration `yaml:"settle_delay"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Load reads a YAML file, applies defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Pipeline.Strategy.Type == "" {
		return fmt.Errorf("pipeline.strategy.type is required")
	}
	if c.Processing.BatchSize < 0 {
		return fmt.Errorf("processing.batch_size must not be negative")
	}
	if c.Processing.MaxConcurrent < 0 {
		return fmt.Errorf("processing.max_concurrent must not be negative")
	}
	if c.Processing.RetryCount != nil && *c.Processing.RetryCount < 0 {
		return fmt.Errorf("processing.retry_count must not be negative")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be between 0 and 1")
	}

	defaults := processor.DefaultConfiguration()
	if c.Processing.BatchSize == 0 {
		c.Processing.BatchSize = defaults.BatchSize
	}
	if c.Processing.MaxConcurrent == 0 {
		c.Processing.MaxConcurrent = defaults.MaxConcurrentOperations
	}
	if c.Processing.Timeout == 0 {
		c.Processing.Timeout = defaults.Timeout
	}
	if c.Processing.RetryCount == nil {
		retries := defaults.RetryCount
		c.Processing.RetryCount = &retries
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if len(c.Watcher.Extensions) == 0 {
		c.Watcher.Extensions = []string{".txt"}
	}
	if c.Watcher.MaxConcurrentFiles == 0 {
		c.Watcher.MaxConcurrentFiles = 2
	}
	if c.Watcher.SettleDelay == 0 {
		c.Watcher.SettleDelay = 500 * time.Millisecond
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "itemflow"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "itemflow"
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = "development"
	}
	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1.0
	}

	return nil
}

// Configuration converts the processing section for processor.New
func (p ProcessingConfig) Configuration() processor.Configuration {
	cfg := processor.Configuration{
		BatchSize:               p.BatchSize,
		MaxConcurrentOperations: p.MaxConcurrent,
		Timeout:                 p.Timeout,
	}
	if p.RetryCount != nil {
		cfg.RetryCount = *p.RetryCount
	}
	return cfg
}
