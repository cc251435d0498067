package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Pipeline: PipelineConfig{Strategy: StageConfig{Type: "uppercase"}},
		Paths: PathsConfig{
			Input:  "data/input",
			Output: "data/output",
		},
	}
}

func TestValidate(t *testing.T) {
	negative := -1

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing input path", func(c *Config) { c.Paths.Input = "" }, true},
		{"missing output path", func(c *Config) { c.Paths.Output = "" }, true},
		{"missing strategy", func(c *Config) { c.Pipeline.Strategy = StageConfig{} }, true},
		{"negative batch size", func(c *Config) { c.Processing.BatchSize = -2 }, true},
		{"negative concurrency", func(c *Config) { c.Processing.MaxConcurrent = -1 }, true},
		{"negative retry count", func(c *Config) { c.Processing.RetryCount = &negative }, true},
		{"sample ratio above one", func(c *Config) { c.Tracing.SampleRatio = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.Processing.BatchSize)
	assert.Equal(t, 2, cfg.Processing.MaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.Processing.Timeout)
	require.NotNil(t, cfg.Processing.RetryCount)
	assert.Equal(t, 3, *cfg.Processing.RetryCount)
	assert.Equal(t, "data/archived", cfg.Paths.Archived)
	assert.Equal(t, []string{".txt"}, cfg.Watcher.Extensions)
	assert.Equal(t, 2, cfg.Watcher.MaxConcurrentFiles)
	assert.Equal(t, 500*time.Millisecond, cfg.Watcher.SettleDelay)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "itemflow", cfg.Metrics.Namespace)
	assert.Equal(t, "itemflow", cfg.Tracing.ServiceName)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestValidateKeepsExplicitZeroRetries(t *testing.T) {
	zero := 0
	cfg := validConfig()
	cfg.Processing.RetryCount = &zero
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0, cfg.Processing.Configuration().RetryCount)
}

func TestLoad(t *testing.T) {
	content := `
processing:
  batch_size: 2
  max_concurrent: 2
  timeout: 5s
  retry_count: 1

pipeline:
  strategy:
    type: chain
    stages:
      - type: trim
      - type: uppercase
        min_length: 2
      - type: retry
        max_retries: 4
        delay: 100ms
        backoff: exponential
        stage:
          type: command
          command: rev
      - type: conditional
        routes:
          - prefix: "A"
            stage:
              type: script
              script: |
                function transform(item) { return item + "!"; }
        default:
          type: identity

paths:
  input: "data/input"
  output: "data/output"

logging:
  level: "debug"
  format: "json"

metrics:
  addr: ":9090"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/input", cfg.Paths.Input)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	pc := cfg.Processing.Configuration()
	assert.Equal(t, 2, pc.BatchSize)
	assert.Equal(t, 2, pc.MaxConcurrentOperations)
	assert.Equal(t, 5*time.Second, pc.Timeout)
	assert.Equal(t, 1, pc.RetryCount)
	require.NoError(t, pc.Validate())

	root := cfg.Pipeline.Strategy
	assert.Equal(t, "chain", root.Type)
	require.Len(t, root.Stages, 4)
	assert.Equal(t, 2, root.Stages[1].MinLength)

	retry := root.Stages[2]
	require.NotNil(t, retry.MaxRetries)
	assert.Equal(t, 4, *retry.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, retry.Delay)
	assert.Equal(t, "exponential", retry.Backoff)
	require.NotNil(t, retry.Stage)
	assert.Equal(t, "rev", retry.Stage.Command)

	cond := root.Stages[3]
	require.Len(t, cond.Routes, 1)
	assert.Equal(t, "A", cond.Routes[0].Prefix)
	assert.Contains(t, cond.Routes[0].Stage.Script, "function transform")
	require.NotNil(t, cond.Default)
	assert.Equal(t, "identity", cond.Default.Type)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
