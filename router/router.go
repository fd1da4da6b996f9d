// Package router compiles pattern -> instruction-template rules and maps
// an inbound signal's type to one or more instructions.
package router

import (
	"sort"
	"strings"

	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/instruction"
	"github.com/basalt-labs/agentrt/signal"
)

// Rule binds a dotted type pattern to one or more instruction templates.
// Pattern segments support "*" (matches exactly one dot-separated
// segment) and "**" (matches one or more trailing segments), evaluated
// against signal.Type.
type Rule struct {
	Pattern  string
	Target   []instruction.Instruction
	Priority int
}

// Router holds a compiled, priority-ordered list of rules.
type Router struct {
	rules []compiledRule
}

type compiledRule struct {
	segments []string
	target   []instruction.Instruction
	priority int
	order    int
}

// New compiles rules into a Router. Rules are evaluated in priority
// order (highest first), ties broken by declaration order.
func New(rules ...Rule) *Router {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		compiled[i] = compiledRule{
			segments: strings.Split(r.Pattern, "."),
			target:   r.Target,
			priority: r.Priority,
			order:    i,
		}
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		if compiled[i].priority != compiled[j].priority {
			return compiled[i].priority > compiled[j].priority
		}
		return compiled[i].order < compiled[j].order
	})
	return &Router{rules: compiled}
}

// Route maps s.Type to instructions via the first matching rule (in
// priority/declaration order), then merges s.Data into the first routed
// instruction's params (caller-provided params win on key conflicts). It
// returns a routing_error if no rule matches.
func (r *Router) Route(s signal.Signal) ([]instruction.Instruction, error) {
	typeSegments := strings.Split(s.Type, ".")
	for _, rule := range r.rules {
		if matches(rule.segments, typeSegments) {
			out := make([]instruction.Instruction, len(rule.target))
			copy(out, rule.target)
			if len(out) > 0 {
				if data, ok := s.Data.(map[string]any); ok {
					out[0].Params = mergeDataUnderParams(data, out[0].Params)
				}
			}
			return out, nil
		}
	}
	return nil, agenterrors.NewRoutingError("no route for "+s.Type, s.Type)
}

// mergeDataUnderParams merges signal data under the instruction's
// existing params, with the existing (caller-provided) params winning on
// conflicts — achieved by copying data first and then params over it.
func mergeDataUnderParams(data map[string]any, callerParams map[string]any) map[string]any {
	merged := make(map[string]any, len(data)+len(callerParams))
	for k, v := range data {
		merged[k] = v
	}
	for k, v := range callerParams {
		merged[k] = v
	}
	return merged
}

func matches(pattern, typ []string) bool {
	if len(pattern) == 0 {
		return len(typ) == 0
	}
	head := pattern[0]
	switch {
	case head == "**":
		if len(pattern) == 1 {
			return len(typ) > 0
		}
		for i := 0; i <= len(typ); i++ {
			if matches(pattern[1:], typ[i:]) {
				return true
			}
		}
		return false
	case head == "*":
		if len(typ) == 0 {
			return false
		}
		return matches(pattern[1:], typ[1:])
	default:
		if len(typ) == 0 || typ[0] != head {
			return false
		}
		return matches(pattern[1:], typ[1:])
	}
}
