package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/itemflow/internal/config"
	"github.com/nguyentantai21042004/itemflow/internal/processor"
	"github.com/nguyentantai21042004/itemflow/internal/strategy"
)

type fakeExecutor struct {
	calls  atomic.Int64
	failN  int64
	output string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteWithInput(ctx, "", name, args...)
}

func (f *fakeExecutor) ExecuteWithInput(_ context.Context, input string, _ string, _ ...string) (string, error) {
	if f.calls.Add(1) <= f.failN {
		return "", errors.New("exit status 1")
	}
	if f.output != "" {
		return f.output, nil
	}
	return input + "\n", nil
}

func stageFromYAML(t *testing.T, src string) config.StageConfig {
	t.Helper()
	var stage config.StageConfig
	require.NoError(t, yaml.Unmarshal([]byte(src), &stage))
	return stage
}

func TestBuild_Leaves(t *testing.T) {
	tests := []struct {
		name    string
		stage   string
		item    string
		want    string
		wantErr bool
	}{
		{"identity", "type: identity", "Ab", "Ab", false},
		{"uppercase", "type: uppercase", "ab", "AB", false},
		{"lowercase", "type: LOWERCASE", "AB", "ab", false},
		{"trim", "type: trim", "  ab ", "ab", false},
		{"min length rejects", "{type: uppercase, min_length: 2}", "a", "", true},
		{"max length rejects", "{type: uppercase, max_length: 2}", "abc", "", true},
		{"pattern accepts", "{type: identity, pattern: '^[0-9]+$'}", "42", "42", false},
		{"pattern rejects", "{type: identity, pattern: '^[0-9]+$'}", "4x", "", true},
		{"title", "type: title", "hello world", "Hello World", false},
		{"fold", "type: fold", "HeLLo", "hello", false},
		{"nfc", "type: nfc", "e\u0301", "\u00e9", false},
		{"jsonpath", "{type: jsonpath, path: $.name}", `{"name":"ada"}`, "ada", false},
		{"jsonpath rejects non json", "{type: jsonpath, path: $.name}", "ada", "", true},
		{"schema accepts", `{type: identity, schema: '{"type":"object","required":["id"]}'}`, `{"id":1}`, `{"id":1}`, false},
		{"schema rejects", `{type: identity, schema: '{"type":"object","required":["id"]}'}`, `{}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Build(stageFromYAML(t, tt.stage), processor.DefaultConfiguration(), nil)
			require.NoError(t, err)

			if tt.wantErr {
				assert.False(t, s.CanProcess(tt.item))
				return
			}
			assert.True(t, s.CanProcess(tt.item))
			got, err := s.Process(context.Background(), tt.item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		stage string
	}{
		{"unknown type", "type: shout"},
		{"empty type", "min_length: 2"},
		{"bad pattern", "{type: identity, pattern: '('}"},
		{"bad schema", `{type: identity, schema: '{"type": 12}'}`},
		{"jsonpath without path", "type: jsonpath"},
		{"bad jsonpath", "{type: jsonpath, path: '$.['}"},
		{"empty chain", "type: chain"},
		{"bad chain stage", "{type: chain, stages: [{type: nope}]}"},
		{"command without command", "type: command"},
		{"bad script", "{type: script, script: 'function nope() {}'}"},
		{"conditional without routes", "type: conditional"},
		{"route without predicate", "{type: conditional, routes: [{stage: {type: identity}}]}"},
		{"route with bad regexp", "{type: conditional, routes: [{match: '(', stage: {type: identity}}]}"},
		{"retry without stage", "type: retry"},
		{"retry negative", "{type: retry, max_retries: -1, stage: {type: identity}}"},
		{"retry bad backoff", "{type: retry, backoff: fibonacci, stage: {type: identity}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(stageFromYAML(t, tt.stage), processor.DefaultConfiguration(), nil)
			assert.ErrorIs(t, err, ErrInvalidStage)
		})
	}
}

func TestBuild_Chain(t *testing.T) {
	stage := stageFromYAML(t, `
type: chain
stages:
  - type: trim
  - type: uppercase
  - type: script
    script: |
      function transform(item) { return "<" + item + ">"; }
`)
	s, err := Build(stage, processor.DefaultConfiguration(), nil)
	require.NoError(t, err)

	got, err := s.Process(context.Background(), " ab ")
	require.NoError(t, err)
	assert.Equal(t, "<AB>", got)
}

func TestBuild_Conditional(t *testing.T) {
	stage := stageFromYAML(t, `
type: conditional
routes:
  - match: '^[0-9]+$'
    stage: {type: script, script: 'function transform(item) { return String(Number(item) * 2); }'}
  - prefix: "x-"
    stage: {type: uppercase}
default:
  type: identity
`)
	s, err := Build(stage, processor.DefaultConfiguration(), nil)
	require.NoError(t, err)

	want := map[string]string{"21": "42", "x-ab": "X-AB", "other": "other"}
	for item, expected := range want {
		got, err := s.Process(context.Background(), item)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestBuild_ConditionalWithoutDefault(t *testing.T) {
	stage := stageFromYAML(t, `{type: conditional, routes: [{prefix: a, stage: {type: uppercase}}]}`)
	s, err := Build(stage, processor.DefaultConfiguration(), nil)
	require.NoError(t, err)

	_, err = s.Process(context.Background(), "zzz")
	require.Error(t, err)

	var pe *strategy.ProcessingError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, strategy.ReasonNoStrategy, pe.Reason)
}

func TestBuild_RetryUsesDefaultRetryCount(t *testing.T) {
	exec := &fakeExecutor{failN: 2}
	defaults := processor.DefaultConfiguration()
	defaults.RetryCount = 2

	s, err := Build(stageFromYAML(t, "{type: retry, stage: {type: command, command: cat}}"), defaults, exec)
	require.NoError(t, err)

	got, err := s.Process(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, int64(3), exec.calls.Load())
}

func TestBuild_RetryExplicitMaxRetries(t *testing.T) {
	exec := &fakeExecutor{failN: 5}

	s, err := Build(stageFromYAML(t, `
type: retry
max_retries: 1
delay: 1ms
backoff: exponential
max_delay: 2ms
stage: {type: command, command: cat}
`), processor.DefaultConfiguration(), exec)
	require.NoError(t, err)

	_, err = s.Process(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, int64(2), exec.calls.Load())
}
