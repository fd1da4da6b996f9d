package statepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepMergeRecursesIntoNestedMaps(t *testing.T) {
	t.Parallel()

	dst := map[string]any{
		"user": map[string]any{"name": "ada", "age": 30},
		"tag":  "keep",
	}
	src := map[string]any{
		"user": map[string]any{"age": 31},
	}

	merged := DeepMerge(dst, src)
	user := merged["user"].(map[string]any)
	assert.Equal(t, "ada", user["name"])
	assert.Equal(t, 31, user["age"])
	assert.Equal(t, "keep", merged["tag"])

	// inputs untouched
	assert.Equal(t, 30, dst["user"].(map[string]any)["age"])
}

func TestDeepMergeScalarOverwritesMap(t *testing.T) {
	t.Parallel()

	dst := map[string]any{"a": map[string]any{"b": 1}}
	src := map[string]any{"a": "scalar"}

	merged := DeepMerge(dst, src)
	assert.Equal(t, "scalar", merged["a"])
}

func TestDeleteKeysRemovesTopLevelOnly(t *testing.T) {
	t.Parallel()

	state := map[string]any{"a": 1, "b": 2, "c": 3}
	out := DeleteKeys(state, []string{"a", "c"})

	assert.Equal(t, map[string]any{"b": 2}, out)
	assert.Len(t, state, 3) // original untouched
}

func TestSetPathCreatesIntermediateMaps(t *testing.T) {
	t.Parallel()

	out, err := SetPath(map[string]any{}, []string{"a", "b", "c"}, 42)
	require.NoError(t, err)

	v, ok := GetPath(out, []string{"a", "b", "c"})
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestSetPathRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := SetPath(map[string]any{}, nil, 1)
	assert.Error(t, err)
}

func TestDeletePathNoopOnAbsentSegment(t *testing.T) {
	t.Parallel()

	state := map[string]any{"a": map[string]any{"b": 1}}
	out := DeletePath(state, []string{"x", "y"})
	assert.Equal(t, state, out)
}

func TestDeletePathRemovesLeaf(t *testing.T) {
	t.Parallel()

	state := map[string]any{"a": map[string]any{"b": 1, "c": 2}}
	out := DeletePath(state, []string{"a", "b"})

	inner := out["a"].(map[string]any)
	assert.NotContains(t, inner, "b")
	assert.Equal(t, 2, inner["c"])
}

func TestGetPathMissingReturnsFalse(t *testing.T) {
	t.Parallel()

	_, ok := GetPath(map[string]any{"a": 1}, []string{"a", "b"})
	assert.False(t, ok)
}
