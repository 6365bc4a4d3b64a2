// Package predicate evaluates conditional-node predicates against a
// prospect's engagement metrics. Built-in condition types compile to Expr
// comparisons; custom conditions are CEL expressions.
package predicate

import "context"

// Engine evaluates expressions against an environment map.
// Two implementations: Expr (metric comparisons) and CEL (custom conditions).
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}
