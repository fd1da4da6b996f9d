// Package jsonschema backs schema.Validator with JSON Schema, compiled
// via github.com/santhosh-tekuri/jsonschema/v6. It is the concrete
// validator the agent core's interface (package schema) is designed to
// be swapped out for — the core never imports this package directly.
package jsonschema

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	jsch "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/schema"
)

// compiledJSONSchema adapts a *jsch.Schema plus its raw document (used to
// extract known keys and defaults, neither of which the jsonschema/v6 API
// exposes directly) to schema.CompiledSchema.
type compiledJSONSchema struct {
	sch  *jsch.Schema
	docs []map[string]any // one per merged document, base first
	keys []string
	defs map[string]any
}

func (c *compiledJSONSchema) KnownKeys() []string { return c.keys }

func (c *compiledJSONSchema) Defaults() map[string]any {
	out := make(map[string]any, len(c.defs))
	for k, v := range c.defs {
		out[k] = v
	}
	return out
}

func (c *compiledJSONSchema) Validate(ctx context.Context, value map[string]any, strict bool) (map[string]any, error) {
	working := value
	if strict {
		working = make(map[string]any, len(value))
		known := make(map[string]struct{}, len(c.keys))
		for _, k := range c.keys {
			known[k] = struct{}{}
		}
		for k, v := range value {
			if _, ok := known[k]; ok {
				working[k] = v
			}
		}
	}
	if err := c.sch.Validate(toJSONValue(working)); err != nil {
		return nil, agenterrors.NewValidationError("schema validation failed", err.Error())
	}
	return working, nil
}

// Extend implements schema.CompiledSchema by recompiling a combined
// schema over this schema's documents plus every jsonschema extension
// supplied. Non-jsonschema extensions cause Extend to report ok=false so
// the caller can fall back to a different merge strategy.
func (c *compiledJSONSchema) Extend(extensions ...schema.CompiledSchema) (schema.CompiledSchema, bool) {
	docs := append([]map[string]any{}, c.docs...)
	for _, ext := range extensions {
		other, ok := ext.(*compiledJSONSchema)
		if !ok {
			return nil, false
		}
		docs = append(docs, other.docs...)
	}
	merged, err := compileAll(docs)
	if err != nil {
		return nil, false
	}
	return merged, true
}

// toJSONValue round-trips through encoding/json to normalize Go map
// values (e.g. int vs float64) the way jsonschema/v6 expects them, since
// schemas are typically authored against JSON numeric semantics.
func toJSONValue(v map[string]any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// Compile compiles a single JSON Schema document (as a Go map, typically
// decoded from a JSON/YAML source) into a schema.Schema usable by
// Validator.
func Compile(name string, doc map[string]any) (schema.Schema, error) {
	c, err := compileAll([]map[string]any{doc})
	if err != nil {
		return schema.Schema{}, fmt.Errorf("compile schema %q: %w", name, err)
	}
	return schema.Wrap(c), nil
}

// compileAll compiles the union (allOf) of the given documents into one
// jsonschema.Schema and derives the combined known-keys/defaults.
func compileAll(docs []map[string]any) (*compiledJSONSchema, error) {
	var combined map[string]any
	if len(docs) == 1 {
		combined = docs[0]
	} else {
		allOf := make([]any, 0, len(docs))
		for _, d := range docs {
			allOf = append(allOf, d)
		}
		combined = map[string]any{"allOf": allOf}
	}

	c := jsch.NewCompiler()
	const resourceName = "schema.json"
	if err := c.AddResource(resourceName, combined); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	keySet := map[string]struct{}{}
	defaults := map[string]any{}
	for _, d := range docs {
		for _, k := range extractKnownKeys(d) {
			keySet[k] = struct{}{}
		}
		for k, v := range extractDefaults(d, extractKnownKeys(d)) {
			defaults[k] = v
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &compiledJSONSchema{sch: sch, docs: docs, keys: keys, defs: defaults}, nil
}

func extractKnownKeys(doc map[string]any) []string {
	props, _ := doc["properties"].(map[string]any)
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func extractDefaults(doc map[string]any, keys []string) map[string]any {
	props, _ := doc["properties"].(map[string]any)
	defaults := make(map[string]any)
	for _, k := range keys {
		propDoc, ok := props[k].(map[string]any)
		if !ok {
			continue
		}
		if def, ok := propDoc["default"]; ok {
			defaults[k] = def
		}
	}
	return defaults
}

// Validator implements schema.Validator using JSON Schema documents
// compiled with Compile.
type Validator struct{}

// New returns a ready-to-use jsonschema-backed Validator.
func New() *Validator { return &Validator{} }

// Validate implements schema.Validator.
func (v *Validator) Validate(ctx context.Context, value map[string]any, s schema.Schema, opts schema.ValidateOpts) (map[string]any, error) {
	if s.IsZero() {
		return value, nil
	}
	return s.Compiled.Validate(ctx, value, opts.Strict)
}

// KnownKeys implements schema.Validator.
func (v *Validator) KnownKeys(s schema.Schema) []string {
	if s.IsZero() {
		return nil
	}
	return s.Compiled.KnownKeys()
}

// Defaults implements schema.Validator.
func (v *Validator) Defaults(s schema.Schema) map[string]any {
	if s.IsZero() {
		return map[string]any{}
	}
	return s.Compiled.Defaults()
}

// MergeWithExtensions implements schema.Validator by recompiling a
// combined schema over the base schema and every extension.
func (v *Validator) MergeWithExtensions(s schema.Schema, extensions ...schema.Schema) schema.Schema {
	if s.IsZero() && len(extensions) == 0 {
		return s
	}
	base := s
	if base.IsZero() {
		if len(extensions) == 0 {
			return s
		}
		base = extensions[0]
		extensions = extensions[1:]
	}
	compiledExts := make([]schema.CompiledSchema, 0, len(extensions))
	for _, e := range extensions {
		if e.IsZero() {
			continue
		}
		compiledExts = append(compiledExts, e.Compiled)
	}
	if len(compiledExts) == 0 {
		return base
	}
	merged, ok := base.Compiled.Extend(compiledExts...)
	if !ok {
		return base
	}
	return schema.Wrap(merged)
}
