package instruction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNormalizesNilParamsAndContext(t *testing.T) {
	t.Parallel()

	i := New("demo.action", nil, nil, Opts{})
	assert.NotNil(t, i.Params)
	assert.NotNil(t, i.Context)
	assert.Empty(t, i.Params)
	assert.Empty(t, i.Context)
}

func TestWithParamsOverrideWins(t *testing.T) {
	t.Parallel()

	i := New("demo.action", map[string]any{"a": 1, "b": 2}, nil, Opts{})
	merged := i.WithParams(map[string]any{"b": 99, "c": 3})

	assert.Equal(t, 1, merged.Params["a"])
	assert.Equal(t, 99, merged.Params["b"])
	assert.Equal(t, 3, merged.Params["c"])
	// original instruction is untouched
	assert.Equal(t, 2, i.Params["b"])
}

func TestWithContextOverrideWins(t *testing.T) {
	t.Parallel()

	i := New("demo.action", nil, map[string]any{"user": "u1"}, Opts{})
	merged := i.WithContext(map[string]any{"user": "u2", "trace": "t1"})

	assert.Equal(t, "u2", merged.Context["user"])
	assert.Equal(t, "t1", merged.Context["trace"])
	assert.Equal(t, "u1", i.Context["user"])
}
