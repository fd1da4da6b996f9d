package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPartitionsEffectsDirectivesAndUnknown(t *testing.T) {
	t.Parallel()

	items := []any{
		SetState{Attrs: map[string]any{"a": 1}},
		Emit{},
		DeleteKeys{Keys: []string{"a"}},
		Stop{Reason: "done"},
		"not a directive",
	}

	effects, directives, unknown := Split(items)

	assert.Len(t, effects, 2)
	assert.IsType(t, SetState{}, effects[0])
	assert.IsType(t, DeleteKeys{}, effects[1])

	assert.Len(t, directives, 2)
	assert.IsType(t, Emit{}, directives[0])
	assert.IsType(t, Stop{}, directives[1])

	assert.Equal(t, []any{"not a directive"}, unknown)
}

func TestSplitPreservesOrderWithinEachFamily(t *testing.T) {
	t.Parallel()

	items := []any{
		SetPath{Path: []string{"a"}, Value: 1},
		ReplaceState{State: map[string]any{}},
		DeletePath{Path: []string{"b"}},
	}

	effects, _, _ := Split(items)
	assert.IsType(t, SetPath{}, effects[0])
	assert.IsType(t, ReplaceState{}, effects[1])
	assert.IsType(t, DeletePath{}, effects[2])
}

func TestSplitEmptyInputReturnsNilSlices(t *testing.T) {
	t.Parallel()

	effects, directives, unknown := Split(nil)
	assert.Nil(t, effects)
	assert.Nil(t, directives)
	assert.Nil(t, unknown)
}
