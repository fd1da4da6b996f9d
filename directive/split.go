package directive

// Split partitions a mixed list of Effect/Directive values into their
// respective families, preserving relative order within each family, as
// required by strategy.Direct (internal effects applied in declared
// order, external directives appended to the output list in declared
// order). Values that are neither are returned as unknown so callers can
// reject them per the "tagged union" boundary-validation rule.
func Split(items []any) (effects []Effect, directives []Directive, unknown []any) {
	for _, item := range items {
		switch v := item.(type) {
		case Effect:
			effects = append(effects, v)
		case Directive:
			directives = append(directives, v)
		default:
			unknown = append(unknown, item)
		}
	}
	return effects, directives, unknown
}
