package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPath(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		item    string
		want    string
		wantErr bool
	}{
		{"string field", "$.user.name", `{"user":{"name":"ada"}}`, "ada", false},
		{"number field", "$.count", `{"count":3}`, "3", false},
		{"array element", "$.tags[1]", `{"tags":["a","b"]}`, "b", false},
		{"object result", "$.user", `{"user":{"id":1}}`, `{"id":1}`, false},
		{"missing key", "$.nope", `{"a":1}`, "", true},
		{"not json", "$.a", `a=1`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transform, err := JSONPath(tt.expr)
			require.NoError(t, err)

			got, err := transform(context.Background(), tt.item)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONPath_InvalidExpression(t *testing.T) {
	_, err := JSONPath("$.[")
	assert.Error(t, err)
}

func TestValidJSON(t *testing.T) {
	v := ValidJSON()
	assert.NoError(t, v(`{"a":1}`))
	assert.ErrorIs(t, v(`{"a":`), ErrValidation)
}

func TestMatchesSchema(t *testing.T) {
	schema, err := CompileSchema(`{
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "integer"}}
	}`)
	require.NoError(t, err)

	s := New(nil, MatchesSchema(schema))

	assert.True(t, s.CanProcess(`{"id": 7}`))
	assert.False(t, s.CanProcess(`{"id": "7"}`))
	assert.False(t, s.CanProcess(`{}`))
	assert.False(t, s.CanProcess(`not json`))

	_, err = s.Process(context.Background(), `{}`)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(`{"type": 12}`)
	assert.Error(t, err)
}

func TestUnicodeTransforms(t *testing.T) {
	ctx := context.Background()

	got, err := Title(ctx, "hello wide world")
	require.NoError(t, err)
	assert.Equal(t, "Hello Wide World", got)

	got, err = Fold(ctx, "HeLLo ΣΑΣ")
	require.NoError(t, err)
	assert.Equal(t, "hello σασ", got)

	got, err = NormalizeNFC(ctx, "e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\u00e9", got)
}
