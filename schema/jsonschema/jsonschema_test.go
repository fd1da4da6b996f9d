package jsonschema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-labs/agentrt/schema"
)

func demoDoc() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string", "default": "anonymous"},
			"count": map[string]any{"type": "integer"},
		},
		"required": []any{"count"},
	}
}

func TestCompileExposesKnownKeysAndDefaults(t *testing.T) {
	t.Parallel()

	s, err := Compile("demo", demoDoc())
	require.NoError(t, err)

	v := New()
	assert.ElementsMatch(t, []string{"count", "name"}, v.KnownKeys(s))
	assert.Equal(t, map[string]any{"name": "anonymous"}, v.Defaults(s))
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	t.Parallel()

	s, err := Compile("demo", demoDoc())
	require.NoError(t, err)

	v := New()
	_, err = v.Validate(context.Background(), map[string]any{"name": "ada"}, s, schema.ValidateOpts{})
	assert.Error(t, err)
}

func TestValidateStrictDropsUnknownKeys(t *testing.T) {
	t.Parallel()

	s, err := Compile("demo", demoDoc())
	require.NoError(t, err)

	v := New()
	out, err := v.Validate(context.Background(), map[string]any{"count": 1, "extra": "drop-me"}, s, schema.ValidateOpts{Strict: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "extra")
	assert.Equal(t, 1, intOf(out["count"]))
}

func TestMergeWithExtensionsCombinesRequiredFields(t *testing.T) {
	t.Parallel()

	base, err := Compile("base", demoDoc())
	require.NoError(t, err)
	ext, err := Compile("ext", map[string]any{
		"type":       "object",
		"properties": map[string]any{"tag": map[string]any{"type": "string"}},
		"required":   []any{"tag"},
	})
	require.NoError(t, err)

	v := New()
	merged := v.MergeWithExtensions(base, ext)

	_, err = v.Validate(context.Background(), map[string]any{"count": 1}, merged, schema.ValidateOpts{})
	assert.Error(t, err, "merged schema should still require tag")

	out, err := v.Validate(context.Background(), map[string]any{"count": 1, "tag": "x"}, merged, schema.ValidateOpts{})
	require.NoError(t, err)
	assert.Equal(t, "x", out["tag"])
}

func TestZeroSchemaIsNoopAndHasNoDefaults(t *testing.T) {
	t.Parallel()

	v := New()
	var zero schema.Schema

	out, err := v.Validate(context.Background(), map[string]any{"anything": 1}, zero, schema.ValidateOpts{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"anything": 1}, out)
	assert.Nil(t, v.KnownKeys(zero))
	assert.Empty(t, v.Defaults(zero))
}

func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return -1
	}
}
