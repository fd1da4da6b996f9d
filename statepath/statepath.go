// Package statepath implements the small set of pure map operations the
// agent core and the directive executor share: deep-merge, top-level key
// deletion, and nested path set/get/delete. Every function returns a new
// map; inputs are never mutated, keeping Agent.State copy-on-write.
package statepath

import "github.com/basalt-labs/agentrt/agenterrors"

// DeepMerge merges src into dst, recursing into nested maps so that
// SetState{attrs} only overwrites the leaves named in attrs, leaving
// sibling keys of nested maps untouched. Neither input is mutated.
func DeepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := out[k].(map[string]any)
		if srcIsMap && dstIsMap {
			out[k] = DeepMerge(dstMap, srcMap)
		} else {
			out[k] = v
		}
	}
	return out
}

// DeleteKeys returns a copy of state with the named top-level keys removed.
func DeleteKeys(state map[string]any, keys []string) map[string]any {
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// SetPath sets value at the nested path within state, creating
// intermediate maps as needed. An empty path is rejected with an
// execution_error; replacing state wholesale is ReplaceState's job.
func SetPath(state map[string]any, path []string, value any) (map[string]any, error) {
	if len(path) == 0 {
		return nil, agenterrors.NewExecutionError("failed to modify state", "empty path")
	}
	return setPath(state, path, value), nil
}

func setPath(state map[string]any, path []string, value any) map[string]any {
	out := make(map[string]any, len(state)+1)
	for k, v := range state {
		out[k] = v
	}
	head, rest := path[0], path[1:]
	if len(rest) == 0 {
		out[head] = value
		return out
	}
	child, _ := out[head].(map[string]any)
	out[head] = setPath(child, rest, value)
	return out
}

// DeletePath removes the nested value at path, returning state unchanged
// if any intermediate segment is absent or not a map.
func DeletePath(state map[string]any, path []string) map[string]any {
	if len(path) == 0 {
		return state
	}
	head, rest := path[0], path[1:]
	if len(rest) == 0 {
		if _, ok := state[head]; !ok {
			return state
		}
		out := make(map[string]any, len(state))
		for k, v := range state {
			out[k] = v
		}
		delete(out, head)
		return out
	}
	child, ok := state[head].(map[string]any)
	if !ok {
		return state
	}
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	out[head] = DeletePath(child, rest)
	return out
}

// GetPath reads the nested value at path without mutating state.
func GetPath(state map[string]any, path []string) (any, bool) {
	if len(path) == 0 {
		return state, true
	}
	cur := any(state)
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
