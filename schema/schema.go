// Package schema defines the black-box validator contract the agent
// core depends on. The core never imports a concrete schema engine
// directly — only this interface — so alternative validators can be
// substituted without touching agent.Agent.
package schema

import "context"

// CompiledSchema is satisfied by concrete validator backends (currently
// only the jsonschema package) so Schema can wrap any of them without
// this package depending on a specific engine. Backends export a
// constructor returning a Schema that wraps their own implementation of
// this interface.
type CompiledSchema interface {
	KnownKeys() []string
	Defaults() map[string]any
	Validate(ctx context.Context, value map[string]any, strict bool) (map[string]any, error)
	// Extend returns a new CompiledSchema representing this schema merged
	// with the given extension documents, or ok=false if this backend
	// cannot merge with one of the supplied extensions (e.g. different
	// engine).
	Extend(extensions ...CompiledSchema) (CompiledSchema, bool)
}

// Schema is an opaque compiled schema handle. The zero value represents
// "no schema" (validation is a no-op, everything passes, Defaults/KnownKeys
// return empty).
type Schema struct {
	Compiled CompiledSchema
}

// Wrap builds a Schema around a backend-specific CompiledSchema.
func Wrap(c CompiledSchema) Schema { return Schema{Compiled: c} }

// IsZero reports whether s carries no compiled schema.
func (s Schema) IsZero() bool { return s.Compiled == nil }

// ValidateOpts controls Validator.Validate behavior.
type ValidateOpts struct {
	// Strict drops unknown top-level keys instead of rejecting them.
	Strict bool
}

// Validator is the interface the core calls to validate agent state
// against a declared schema, resolve its known keys and defaults, and
// merge extension schemas (e.g. action-contributed param schemas) into a
// base schema.
type Validator interface {
	Validate(ctx context.Context, value map[string]any, s Schema, opts ValidateOpts) (map[string]any, error)
	KnownKeys(s Schema) []string
	Defaults(s Schema) map[string]any
	MergeWithExtensions(s Schema, extensions ...Schema) Schema
}
